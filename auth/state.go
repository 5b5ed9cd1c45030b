package auth

// State is one step of the login state machine. The machine only moves
// forward; a transient failure resets the whole flow to StateNotStarted
// via the caller's retry wrapper rather than resuming mid-flow.
type State int

const (
	StateNotStarted State = iota
	StatePageLoaded
	StateIdentifierEntered
	StateCodeRequested
	StateCodeEntered
	StateVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StatePageLoaded:
		return "page_loaded"
	case StateIdentifierEntered:
		return "identifier_entered"
	case StateCodeRequested:
		return "code_requested"
	case StateCodeEntered:
		return "code_entered"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
