// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-roadball/pkg/entity"
)

// Camera buttons
const (
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
	ButtonResetZoom = "resetZoom"
)

// InputSystem reads the keyboard each engo frame and reports the input
// state whenever it changes. Game buttons are named after their actions.
type InputSystem struct {
	down    func(button string) bool
	onInput func(entity.Input)
	latest  entity.Input
	sent    bool
}

// NewInputSystem creates an input system reading engo's button state.
// onInput may be nil.
func NewInputSystem(onInput func(entity.Input)) *InputSystem {
	return &InputSystem{
		down: func(button string) bool {
			return engo.Input.Button(button).Down()
		},
		onInput: onInput,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls the buttons.
func (is *InputSystem) Update(dt float32) {
	is.poll()
}

func (is *InputSystem) poll() {
	in := InputFromButtons(is.down)
	if is.sent && in == is.latest {
		return
	}
	is.latest = in
	is.sent = true
	if is.onInput != nil {
		is.onInput(in)
	}
}

// Latest returns the most recent input state.
func (is *InputSystem) Latest() entity.Input {
	return is.latest
}

// InputFromButtons builds an input state from a button query.
func InputFromButtons(down func(button string) bool) entity.Input {
	var in entity.Input
	for _, a := range entity.Actions() {
		in = in.With(a, down(string(a)))
	}
	return in
}

// KeyBindings maps each action to its keys.
func KeyBindings() map[entity.Action][]engo.Key {
	return map[entity.Action][]engo.Key{
		entity.ActionLeft:  {engo.KeyArrowLeft},
		entity.ActionRight: {engo.KeyArrowRight},
		entity.ActionUp:    {engo.KeyArrowUp},
		entity.ActionDown:  {engo.KeyArrowDown},
		entity.ActionA:     {engo.KeyA},
		entity.ActionS:     {engo.KeyS},
		entity.ActionD:     {engo.KeyD},
		entity.ActionNitro: {engo.KeySpace, engo.KeyLeftShift},
		entity.ActionStart: {engo.KeyEnter},
		entity.ActionReset: {engo.KeyR},
	}
}

// SetupInputBindings registers the game and camera buttons.
func SetupInputBindings() {
	for action, keys := range KeyBindings() {
		engo.Input.RegisterButton(string(action), keys...)
	}
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(ButtonResetZoom, engo.KeyZero)
}
