package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// scriptedGenerator returns a fixed result per call.
type scriptedGenerator struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *scriptedGenerator) Generate(_ context.Context, _ Request) (Response, error) {
	s.calls++
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Content: s.content}, nil
}

func (s *scriptedGenerator) Name() string { return s.name }

func scriptedFactory(gens map[string]*scriptedGenerator) Factory {
	return func(modelID string) (Generator, error) {
		g, ok := gens[modelID]
		if !ok {
			return nil, errors.New("unknown model")
		}
		return g, nil
	}
}

func TestInvokeFirstSuccess(t *testing.T) {
	gens := map[string]*scriptedGenerator{
		"m1": {name: "m1", content: "review text"},
		"m2": {name: "m2", content: "unused"},
	}
	inv := NewInvokerWithFactory(scriptedFactory(gens))

	text, model, attempts, err := inv.Invoke(context.Background(), "sys", "prompt", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "review text" || model != "m1" {
		t.Errorf("got text=%q model=%q", text, model)
	}
	if len(attempts) != 1 || attempts[0].Outcome != OutcomeSuccess {
		t.Errorf("attempts = %+v, want single success", attempts)
	}
	if gens["m2"].calls != 0 {
		t.Error("second model should not be called after a success")
	}
}

func TestInvokeFallbackThroughTransient(t *testing.T) {
	gens := map[string]*scriptedGenerator{
		"m1": {name: "m1", err: &transientError{message: "503"}},
		"m2": {name: "m2", err: &quotaError{message: "429"}},
		"m3": {name: "m3", content: "third time lucky"},
	}
	inv := NewInvokerWithFactory(scriptedFactory(gens))

	text, model, attempts, err := inv.Invoke(context.Background(), "sys", "prompt", []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "third time lucky" || model != "m3" {
		t.Errorf("got text=%q model=%q", text, model)
	}
	if len(attempts) != 3 {
		t.Fatalf("attempt log length = %d, want 3", len(attempts))
	}
	if attempts[0].Outcome != OutcomeTransient || attempts[1].Outcome != OutcomeQuota || attempts[2].Outcome != OutcomeSuccess {
		t.Errorf("outcomes = %v %v %v", attempts[0].Outcome, attempts[1].Outcome, attempts[2].Outcome)
	}
}

func TestInvokeFatalShortCircuits(t *testing.T) {
	gens := map[string]*scriptedGenerator{
		"m1": {name: "m1", err: &fatalError{message: "401 bad key"}},
		"m2": {name: "m2", content: "never reached"},
	}
	inv := NewInvokerWithFactory(scriptedFactory(gens))

	_, _, attempts, err := inv.Invoke(context.Background(), "sys", "prompt", []string{"m1", "m2"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(attempts) != 1 {
		t.Errorf("attempt log length = %d, want 1 (fatal aborts chain)", len(attempts))
	}
	if gens["m2"].calls != 0 {
		t.Error("fatal error must not try the next model")
	}
}

func TestInvokeChainExhausted(t *testing.T) {
	gens := map[string]*scriptedGenerator{
		"m1": {name: "m1", err: &quotaError{message: "429"}},
		"m2": {name: "m2", err: &transientError{message: "timeout"}},
	}
	inv := NewInvokerWithFactory(scriptedFactory(gens))

	_, _, attempts, err := inv.Invoke(context.Background(), "sys", "prompt", []string{"m1", "m2"})
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("err = %v, want ErrChainExhausted", err)
	}
	if len(attempts) != 2 {
		t.Errorf("attempt log length = %d, want 2", len(attempts))
	}
	if !strings.Contains(err.Error(), "m1=quota_exceeded") {
		t.Errorf("error should summarize attempts, got: %v", err)
	}
}

func TestInvokeEmptyChain(t *testing.T) {
	inv := NewInvokerWithFactory(scriptedFactory(nil))
	if _, _, _, err := inv.Invoke(context.Background(), "sys", "prompt", nil); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestInvokeUnknownModelIsFatal(t *testing.T) {
	inv := NewInvokerWithFactory(scriptedFactory(map[string]*scriptedGenerator{}))
	_, _, attempts, err := inv.Invoke(context.Background(), "sys", "prompt", []string{"mystery"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(attempts) != 1 || attempts[0].Outcome != OutcomeFatal {
		t.Errorf("attempts = %+v, want single fatal", attempts)
	}
}

func TestClassifyErr(t *testing.T) {
	if ClassifyErr(nil) != OutcomeSuccess {
		t.Error("nil should classify as success")
	}
	if ClassifyErr(&quotaError{}) != OutcomeQuota {
		t.Error("quotaError should classify as quota_exceeded")
	}
	if ClassifyErr(&fatalError{}) != OutcomeFatal {
		t.Error("fatalError should classify as fatal_error")
	}
	if ClassifyErr(errors.New("anything else")) != OutcomeTransient {
		t.Error("unknown errors should classify as transient_error")
	}
	if !IsFatal(&fatalError{}) || IsFatal(&quotaError{}) {
		t.Error("IsFatal mismatch")
	}
}
