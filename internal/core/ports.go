package core

import "context"

// =============================================================================
// Lookup Ports
// =============================================================================

// VersionStore resolves reusable prompt versions by ID. Implementations are
// read-only collaborators; the engine never mutates them.
type VersionStore interface {
	// Version retrieves a prompt version by ID.
	Version(id string) (*PromptVersion, error)
}

// ModelStore resolves model configurations by ID.
type ModelStore interface {
	// Model retrieves a model configuration by ID.
	Model(id string) (*ModelConfig, error)

	// DefaultModel returns the fallback configuration used when a version's
	// declared model cannot be resolved.
	DefaultModel() (*ModelConfig, error)
}

// =============================================================================
// Generator Port
// =============================================================================

// GenerateRequest carries everything a generation backend needs.
type GenerateRequest struct {
	Model       *ModelConfig
	Prompt      string
	Messages    []Message // Multi-turn history; when set, Prompt is empty.
	System      string
	Params      GenerationParams
	Attachments []Attachment
}

// GenerateResult is the output of a generation call.
type GenerateResult struct {
	Text      string
	TokensIn  int
	TokensOut int
	Model     string
}

// Generator invokes an external generation backend. This is the engine's
// only suspension point: calls may be slow and may fail.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// =============================================================================
// Status Notifier Port
// =============================================================================

// StatusNotifier receives node status transitions synchronously, before and
// after each node executes. Callers use it for live progress only; it must
// tolerate being invoked mid-run.
type StatusNotifier interface {
	NodeStatus(runID RunID, nodeID NodeID, status NodeStatus, output string)
}

// NopStatusNotifier is a no-op StatusNotifier.
type NopStatusNotifier struct{}

func (NopStatusNotifier) NodeStatus(RunID, NodeID, NodeStatus, string) {}

// =============================================================================
// Run Store Port
// =============================================================================

// RunSummary is a lightweight listing of a persisted run.
type RunSummary struct {
	ID          RunID     `json:"id"`
	Status      RunStatus `json:"status"`
	Steps       int       `json:"steps"`
	CreatedAt   string    `json:"created_at"`
	CompletedAt string    `json:"completed_at"`
}

// RunStore persists completed run logs. Persisting is the caller's
// responsibility; the engine itself performs no I/O.
type RunStore interface {
	// SaveRun persists a completed run log.
	SaveRun(ctx context.Context, log *RunLog) error

	// LoadRun retrieves a run log by ID.
	LoadRun(ctx context.Context, id RunID) (*RunLog, error)

	// ListRuns returns summaries of persisted runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
