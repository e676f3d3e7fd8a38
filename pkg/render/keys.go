package render

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-roadball/pkg/entity"
)

// DefaultKeyHold is how long a key counts as held after its last press.
// Terminals report repeats but no releases.
const DefaultKeyHold = 150 * time.Millisecond

// ActionForKey maps a terminal key to a game action.
func ActionForKey(key tcell.Key, r rune) (entity.Action, bool) {
	switch key {
	case tcell.KeyLeft:
		return entity.ActionLeft, true
	case tcell.KeyRight:
		return entity.ActionRight, true
	case tcell.KeyUp:
		return entity.ActionUp, true
	case tcell.KeyDown:
		return entity.ActionDown, true
	case tcell.KeyEnter:
		return entity.ActionStart, true
	case tcell.KeyRune:
		switch r {
		case 'a', 'A':
			return entity.ActionA, true
		case 's', 'S':
			return entity.ActionS, true
		case 'd', 'D':
			return entity.ActionD, true
		case ' ':
			return entity.ActionNitro, true
		case 'r', 'R':
			return entity.ActionReset, true
		}
	}
	return "", false
}

// IsQuitKey reports whether the key ends the client.
func IsQuitKey(key tcell.Key, r rune) bool {
	return key == tcell.KeyEscape || key == tcell.KeyCtrlC ||
		(key == tcell.KeyRune && (r == 'q' || r == 'Q'))
}

// KeyState turns key presses into a held input state.
type KeyState struct {
	mu   sync.Mutex
	hold time.Duration
	last map[entity.Action]time.Time
}

// NewKeyState creates a key state. A non-positive hold uses DefaultKeyHold.
func NewKeyState(hold time.Duration) *KeyState {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &KeyState{hold: hold, last: make(map[entity.Action]time.Time)}
}

// Press records a for the moment at.
func (k *KeyState) Press(a entity.Action, at time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.last[a] = at
}

// HandleKey records the action of a key event, if any.
func (k *KeyState) HandleKey(ev *tcell.EventKey) bool {
	a, ok := ActionForKey(ev.Key(), ev.Rune())
	if ok {
		k.Press(a, ev.When())
	}
	return ok
}

// Input returns the actions pressed within the hold window before now.
func (k *KeyState) Input(now time.Time) entity.Input {
	k.mu.Lock()
	defer k.mu.Unlock()

	var in entity.Input
	for a, at := range k.last {
		switch d := now.Sub(at); {
		case d >= k.hold:
			delete(k.last, a)
		case d >= 0:
			in = in.Press(a)
		}
	}
	return in
}
