package build

// State is a step of the build pipeline.
type State int

const (
	StateIdle State = iota
	StateChangeCheck
	StateBumping
	StateSkipBump
	StateCompiling
	StateBundling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateChangeCheck:
		return "ChangeCheck"
	case StateBumping:
		return "Bumping"
	case StateSkipBump:
		return "SkipBump"
	case StateCompiling:
		return "Compiling"
	case StateBundling:
		return "Bundling"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Transition is one recorded state change.
type Transition struct {
	From   State  `json:"from"`
	To     State  `json:"to"`
	Reason string `json:"reason,omitempty"`
}

var allowed = map[State][]State{
	StateIdle:        {StateChangeCheck, StateSkipBump},
	StateChangeCheck: {StateBumping, StateSkipBump},
	StateBumping:     {StateCompiling},
	StateSkipBump:    {StateCompiling},
	StateCompiling:   {StateBundling},
	StateBundling:    {StateDone},
}

// CanTransition reports whether from → to is a legal step. Failed is
// reachable from every non-terminal state.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}
