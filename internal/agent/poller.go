package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PollingTimeoutError means the activity stream produced neither a review
// nor a completion marker within the attempt budget. The remote job may
// still be running; the caller stops waiting but does not cancel it.
type PollingTimeoutError struct {
	SessionID string
	Attempts  int
}

func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("session %s: no review after %d polling attempts", e.SessionID, e.Attempts)
}

// reviewKeywords is the heuristic for spotting the review payload in the
// activity stream. Matched case-insensitively against title and description.
var reviewKeywords = []string{
	"code review",
	"review complete",
	"critical issues",
	"## summary",
	"findings",
}

// SessionWatcher is the slice of the agent client the poller needs.
type SessionWatcher interface {
	ListActivities(ctx context.Context, sessionID string) ([]Activity, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
}

// SleepFunc waits for d or until the context is cancelled. Injectable so
// tests can simulate time.
type SleepFunc func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Poller watches a session's activity stream until it yields a review, the
// session completes, or the attempt budget runs out. interval * maxAttempts
// is the hard wall-clock ceiling for one run.
type Poller struct {
	client      SessionWatcher
	interval    time.Duration
	maxAttempts int
	sleep       SleepFunc
}

// NewPoller creates a Poller. interval and maxAttempts come from
// configuration; they are never hardcoded by callers.
func NewPoller(client SessionWatcher, interval time.Duration, maxAttempts int) *Poller {
	return &Poller{
		client:      client,
		interval:    interval,
		maxAttempts: maxAttempts,
		sleep:       realSleep,
	}
}

// Await polls the session until it produces review text.
//
// A review-matching activity wins immediately, even before the session
// completes: partial results found early beat waiting out the timeout. When
// the completion marker arrives without any match, the last non-empty
// progress description is returned as a best effort rather than silently
// returning nothing. A session in the failed state stops polling right away
// so a remote failure is not misreported as a timeout.
func (p *Poller) Await(ctx context.Context, sessionID string) (string, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		activities, err := p.client.ListActivities(ctx, sessionID)
		if err != nil {
			// A failed fetch consumes an attempt; the stream may
			// recover on the next interval.
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		} else {
			text, done, err := scanActivities(sessionID, activities)
			if done {
				return text, err
			}
			// No terminal activity yet; a state check catches sessions
			// that died without emitting a completion marker.
			if sess, err := p.client.GetSession(ctx, sessionID); err == nil && sess.State == StateFailed {
				return "", fmt.Errorf("session %s failed before producing a review", sessionID)
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
		}

		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, p.interval); err != nil {
				return "", err
			}
		}
	}
	return "", &PollingTimeoutError{SessionID: sessionID, Attempts: p.maxAttempts}
}

// scanActivities inspects the stream. done reports a terminal decision:
// either a review was extracted or the session completed.
func scanActivities(sessionID string, activities []Activity) (text string, done bool, err error) {
	var lastMatch string
	var lastProgress string
	completed := false

	for _, act := range activities {
		switch act.Kind {
		case KindProgress:
			if act.Description != "" {
				lastProgress = act.Description
			}
			if matchesReview(act) {
				// Last matching record wins.
				if act.Description != "" {
					lastMatch = act.Description
				} else {
					lastMatch = act.Title
				}
			}
		case KindCompletion:
			completed = true
		case KindUnknown:
			// Skipped: record types this client does not understand.
		}
	}

	if lastMatch != "" {
		return lastMatch, true, nil
	}
	if completed {
		if lastProgress != "" {
			return lastProgress, true, nil
		}
		return "", true, fmt.Errorf("session %s completed without producing review content", sessionID)
	}
	return "", false, nil
}

func matchesReview(act Activity) bool {
	haystack := strings.ToLower(act.Title + "\n" + act.Description)
	for _, kw := range reviewKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
