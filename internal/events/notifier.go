package events

import "github.com/weft-dev/weft/internal/core"

// BusNotifier bridges the engine's status callback onto the event bus so
// SSE clients and other subscribers observe node transitions live.
type BusNotifier struct {
	bus *Bus
}

// NewBusNotifier creates a notifier publishing to the given bus.
func NewBusNotifier(bus *Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// NodeStatus implements core.StatusNotifier.
func (n *BusNotifier) NodeStatus(runID core.RunID, nodeID core.NodeID, status core.NodeStatus, output string) {
	n.bus.Publish(NewNodeStatusEvent(string(runID), string(nodeID), string(status), output))
}
