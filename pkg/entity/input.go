package entity

// Action names one input the game reacts to.
type Action string

const (
	ActionLeft  Action = "left"
	ActionRight Action = "right"
	ActionUp    Action = "up"
	ActionDown  Action = "down"
	ActionA     Action = "A"
	ActionS     Action = "S"
	ActionD     Action = "D"
	ActionNitro Action = "nitro"
	ActionStart Action = "start"
	ActionReset Action = "reset"
)

// Actions lists every action in a fixed order.
func Actions() []Action {
	return []Action{
		ActionLeft, ActionRight, ActionUp, ActionDown,
		ActionA, ActionS, ActionD, ActionNitro,
		ActionStart, ActionReset,
	}
}

// ParseAction validates an action name.
func ParseAction(name string) (Action, bool) {
	for _, a := range Actions() {
		if string(a) == name {
			return a, true
		}
	}
	return "", false
}

// Input is the pressed state of every action for one frame. The zero value
// has nothing pressed.
type Input struct {
	pressed uint16
}

func (a Action) bit() uint16 {
	for i, known := range Actions() {
		if known == a {
			return 1 << i
		}
	}
	return 0
}

// Pressed reports whether a is held.
func (in Input) Pressed(a Action) bool {
	return in.pressed&a.bit() != 0
}

// With returns a copy with a set to pressed.
func (in Input) With(a Action, pressed bool) Input {
	if pressed {
		in.pressed |= a.bit()
	} else {
		in.pressed &^= a.bit()
	}
	return in
}

// Press returns a copy with every action in actions held.
func (in Input) Press(actions ...Action) Input {
	for _, a := range actions {
		in = in.With(a, true)
	}
	return in
}

// Map returns the 0|1 mapping form used on the wire.
func (in Input) Map() map[string]int {
	m := make(map[string]int, len(Actions()))
	for _, a := range Actions() {
		v := 0
		if in.Pressed(a) {
			v = 1
		}
		m[string(a)] = v
	}
	return m
}

// Axis returns (right−left, down−up), each in {-1, 0, 1}.
func (in Input) Axis() (x, y float64) {
	if in.Pressed(ActionRight) {
		x++
	}
	if in.Pressed(ActionLeft) {
		x--
	}
	if in.Pressed(ActionDown) {
		y++
	}
	if in.Pressed(ActionUp) {
		y--
	}
	return x, y
}
