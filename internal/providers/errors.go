package providers

import "errors"

// Outcome classifies the result of one model attempt.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeQuota     Outcome = "quota_exceeded"
	OutcomeTransient Outcome = "transient_error"
	OutcomeFatal     Outcome = "fatal_error"
)

// quotaError means the model rejected the call for rate/quota reasons; the
// next model in the chain may still succeed.
type quotaError struct {
	message string
}

func (e *quotaError) Error() string { return "quota exceeded: " + e.message }

// transientError covers network failures and server-side errors; the next
// model in the chain may still succeed.
type transientError struct {
	message string
	cause   error
}

func (e *transientError) Error() string { return "transient error: " + e.message }
func (e *transientError) Unwrap() error { return e.cause }

// fatalError means the request itself is broken (auth, malformed payload);
// retrying with a different model cannot fix it.
type fatalError struct {
	message string
}

func (e *fatalError) Error() string { return "fatal error: " + e.message }

// ClassifyErr maps an error from a Generate call onto an Outcome.
func ClassifyErr(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var qe *quotaError
	if errors.As(err, &qe) {
		return OutcomeQuota
	}
	var fe *fatalError
	if errors.As(err, &fe) {
		return OutcomeFatal
	}
	return OutcomeTransient
}

// IsFatal reports whether err should abort a whole model chain.
func IsFatal(err error) bool {
	return ClassifyErr(err) == OutcomeFatal
}
