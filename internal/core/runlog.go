package core

import "time"

// RunID uniquely identifies a run.
type RunID string

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// OutputFinal is the key under which the exit node's rendered template is
// published in RunLog.Outputs.
const OutputFinal = "final"

// Step records the outcome of a single executed node.
type Step struct {
	NodeID   NodeID        `json:"node_id"`
	NodeName string        `json:"node_name"`
	Status   NodeStatus    `json:"status"`
	// Output holds the node's produced text, or the error message when
	// Status is error.
	Output  string        `json:"output"`
	Latency time.Duration `json:"latency"`
}

// RunLog is the artifact of a single execution: an ordered, append-only
// record of steps plus the final aggregated outputs. It is owned by one
// run and immutable once the run returns.
type RunLog struct {
	ID          RunID             `json:"id"`
	Status      RunStatus         `json:"status"`
	Inputs      map[string]string `json:"inputs"`
	Outputs     map[string]string `json:"outputs"`
	Steps       []Step            `json:"steps"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewRunLog creates an empty run log seeded with a copy of the initial
// inputs. The status starts as success and flips to error on the first
// failed step.
func NewRunLog(id RunID, inputs map[string]string) *RunLog {
	copied := make(map[string]string, len(inputs))
	for k, v := range inputs {
		copied[k] = v
	}
	return &RunLog{
		ID:        id,
		Status:    RunStatusSuccess,
		Inputs:    copied,
		Outputs:   make(map[string]string),
		Steps:     make([]Step, 0),
		CreatedAt: time.Now(),
	}
}

// AddStep appends a step record. An error step marks the whole run failed.
func (l *RunLog) AddStep(step Step) {
	l.Steps = append(l.Steps, step)
	if step.Status == NodeStatusError {
		l.Status = RunStatusError
	}
}

// SetOutput records a final named output.
func (l *RunLog) SetOutput(name, value string) {
	l.Outputs[name] = value
}

// Finish stamps the completion time.
func (l *RunLog) Finish() {
	l.CompletedAt = time.Now()
}

// Failed reports whether any step errored.
func (l *RunLog) Failed() bool {
	return l.Status == RunStatusError
}

// Duration returns the total run duration.
func (l *RunLog) Duration() time.Duration {
	if l.CompletedAt.IsZero() {
		return 0
	}
	return l.CompletedAt.Sub(l.CreatedAt)
}
