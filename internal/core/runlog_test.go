package core

import (
	"errors"
	"testing"
)

func TestRunLog_AddStep(t *testing.T) {
	log := NewRunLog("r1", map[string]string{"topic": "oceans"})
	if log.Status != RunStatusSuccess {
		t.Fatalf("new run log should start as success, got %s", log.Status)
	}

	log.AddStep(Step{NodeID: "entry", Status: NodeStatusSuccess})
	if log.Failed() {
		t.Fatalf("run should not be failed after a successful step")
	}

	log.AddStep(Step{NodeID: "g1", Status: NodeStatusError, Output: "rate limited"})
	if !log.Failed() {
		t.Fatalf("run should be failed after an error step")
	}
	if len(log.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(log.Steps))
	}
}

func TestRunLog_InputsCopied(t *testing.T) {
	inputs := map[string]string{"topic": "oceans"}
	log := NewRunLog("r1", inputs)
	inputs["topic"] = "mutated"
	if log.Inputs["topic"] != "oceans" {
		t.Fatalf("run log must hold a copy of the initial inputs")
	}
}

func TestRunLog_Finish(t *testing.T) {
	log := NewRunLog("r1", nil)
	if log.Duration() != 0 {
		t.Fatalf("unfinished run should report zero duration")
	}
	log.Finish()
	if log.CompletedAt.IsZero() {
		t.Fatalf("Finish should stamp the completion time")
	}
}

func TestDomainError_Matching(t *testing.T) {
	err := ErrNotFound("prompt version", "v9")
	wrapped := ErrGeneration("backend exploded").WithCause(err)

	if !IsCategory(wrapped, ErrCatGeneration) {
		t.Fatalf("expected generation category, got %s", GetCategory(wrapped))
	}
	var domErr *DomainError
	if !errors.As(wrapped, &domErr) {
		t.Fatalf("expected DomainError via errors.As")
	}
	if !errors.Is(wrapped, &DomainError{Category: ErrCatGeneration, Code: CodeGenerationFailed}) {
		t.Fatalf("expected errors.Is match on category+code")
	}
}
