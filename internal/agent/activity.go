package agent

import "encoding/json"

// ActivityKind tags the variants of the agent activity stream.
type ActivityKind int

const (
	// KindUnknown covers record types this client does not understand.
	// They are carried through and skipped, never treated as progress.
	KindUnknown ActivityKind = iota
	// KindProgress is an incremental status update with a title and
	// free-text description.
	KindProgress
	// KindCompletion marks the end of the session's work.
	KindCompletion
)

// Activity is one record from a session's activity stream, normalized from
// the wire union into an explicit tagged variant.
type Activity struct {
	Name        string
	Kind        ActivityKind
	Title       string
	Description string
}

// wireActivity mirrors the API's loosely-typed event union. Exactly one of
// the member objects is set per record.
type wireActivity struct {
	Name             string               `json:"name"`
	ProgressUpdated  *wireProgressUpdated `json:"progressUpdated,omitempty"`
	AgentMessaged    *wireAgentMessaged   `json:"agentMessaged,omitempty"`
	SessionCompleted *struct{}            `json:"sessionCompleted,omitempty"`
}

type wireProgressUpdated struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type wireAgentMessaged struct {
	Message string `json:"message"`
}

// UnmarshalJSON decodes the wire union into the tagged form. Agent messages
// are folded into progress records: they carry review text the same way.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var w wireActivity
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.Name = w.Name
	switch {
	case w.SessionCompleted != nil:
		a.Kind = KindCompletion
	case w.ProgressUpdated != nil:
		a.Kind = KindProgress
		a.Title = w.ProgressUpdated.Title
		a.Description = w.ProgressUpdated.Description
	case w.AgentMessaged != nil:
		a.Kind = KindProgress
		a.Description = w.AgentMessaged.Message
	default:
		a.Kind = KindUnknown
	}
	return nil
}
