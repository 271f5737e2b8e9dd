package stream

import "fmt"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the connection state of a Session. Attempt is set while
// Connecting and on Failed; Err is set only on Failed.
type State struct {
	Phase   Phase
	Attempt int
	Err     error
}

func (s State) String() string {
	switch s.Phase {
	case PhaseConnecting:
		return fmt.Sprintf("connecting (attempt %d)", s.Attempt)
	case PhaseFailed:
		return fmt.Sprintf("failed: %v", s.Err)
	default:
		return s.Phase.String()
	}
}
