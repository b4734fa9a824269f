package review

import "unicode/utf8"

// SnapshotOmitted replaces the repository snapshot when the diff and
// conversation alone fill the context budget.
const SnapshotOmitted = "[repository snapshot omitted: diff and conversation fill the context budget]"

// TruncationMarker is appended to a snapshot cut to fit the budget.
const TruncationMarker = "\n[... repository snapshot truncated to fit context budget ...]"

// Budgeted is the context after the size ceiling has been applied.
type Budgeted struct {
	Snapshot     string
	Diff         string
	Conversation string
	Truncated    bool
}

// BudgetContext enforces maxChars across the three inputs. The diff and the
// conversation are ground truth for the review and are never cut; only the
// snapshot shrinks. The ceiling is advisory once diff+conversation alone
// exceed it. This never fails.
func BudgetContext(snapshot, diff, conversation string, maxChars int) Budgeted {
	if len(snapshot)+len(diff)+len(conversation) <= maxChars {
		return Budgeted{Snapshot: snapshot, Diff: diff, Conversation: conversation}
	}

	remaining := maxChars - len(diff) - len(conversation)
	if remaining <= 0 {
		return Budgeted{
			Snapshot:     SnapshotOmitted,
			Diff:         diff,
			Conversation: conversation,
			Truncated:    true,
		}
	}

	// Back up to a rune boundary so the cut never leaves a partial UTF-8
	// sequence in front of the marker.
	cut := remaining
	for cut > 0 && !utf8.RuneStart(snapshot[cut]) {
		cut--
	}

	return Budgeted{
		Snapshot:     snapshot[:cut] + TruncationMarker,
		Diff:         diff,
		Conversation: conversation,
		Truncated:    true,
	}
}
