package events

import "time"

// Event type constants.
const (
	TypeRunStarted   = "run_started"
	TypeRunCompleted = "run_completed"
	TypeRunFailed    = "run_failed"
	TypeNodeStatus   = "node_status"
)

// RunStartedEvent is emitted when a run begins.
type RunStartedEvent struct {
	BaseEvent
	Nodes int `json:"nodes"`
}

// NewRunStartedEvent creates a new run started event.
func NewRunStartedEvent(runID string, nodes int) RunStartedEvent {
	return RunStartedEvent{
		BaseEvent: NewBaseEvent(TypeRunStarted, runID),
		Nodes:     nodes,
	}
}

// RunCompletedEvent is emitted when a run finishes successfully.
type RunCompletedEvent struct {
	BaseEvent
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// NewRunCompletedEvent creates a new run completed event.
func NewRunCompletedEvent(runID string, steps int, duration time.Duration) RunCompletedEvent {
	return RunCompletedEvent{
		BaseEvent: NewBaseEvent(TypeRunCompleted, runID),
		Steps:     steps,
		Duration:  duration,
	}
}

// RunFailedEvent is emitted when a run finishes with an errored node.
type RunFailedEvent struct {
	BaseEvent
	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

// NewRunFailedEvent creates a new run failed event.
func NewRunFailedEvent(runID, nodeID, errText string) RunFailedEvent {
	return RunFailedEvent{
		BaseEvent: NewBaseEvent(TypeRunFailed, runID),
		NodeID:    nodeID,
		Error:     errText,
	}
}

// NodeStatusEvent is emitted on every node status transition.
type NodeStatusEvent struct {
	BaseEvent
	NodeID string `json:"node_id"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
}

// NewNodeStatusEvent creates a new node status event.
func NewNodeStatusEvent(runID, nodeID, status, output string) NodeStatusEvent {
	return NodeStatusEvent{
		BaseEvent: NewBaseEvent(TypeNodeStatus, runID),
		NodeID:    nodeID,
		Status:    status,
		Output:    output,
	}
}
