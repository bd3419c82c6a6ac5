// Package interaction binds a page's UI controls to the view pipeline. A
// Controller reduces UI events into filter state, runs one computation at a
// time and publishes the chart spec and insight it produced.
package interaction

import "fmt"

// State of a page controller.
type State int

const (
	StateIdle State = iota
	StateComputing
	StateError
)

var stateNames = [...]string{"idle", "computing", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
