package review

// Mode selects the review instructions.
type Mode string

const (
	// ModeAutomatic requests a comprehensive, prioritized review.
	ModeAutomatic Mode = "automatic"
	// ModeDirected makes the user's directive take priority.
	ModeDirected Mode = "directed"
)

// Request carries the gathered inputs for one review run. It is built once
// per trigger and not mutated afterwards.
type Request struct {
	Snapshot     string
	Diff         string
	Conversation string
	Mode         Mode
	Directive    string
}
