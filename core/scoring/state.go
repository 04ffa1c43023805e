package scoring

// State of one examiner's scoring workflow.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateSubmitting
	StateLockConflict
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateSubmitting:
		return "submitting"
	case StateLockConflict:
		return "lock-conflict"
	}
	return "unknown"
}
