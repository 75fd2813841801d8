// Package flow implements the workflow execution engine: a readiness
// scheduler that drives entry, generate, and exit nodes against a shared
// variable namespace and accumulates an auditable run log.
package flow

import (
	"context"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/logging"
)

// minSchedulerIterations is the floor of the readiness-scan ceiling. The
// effective ceiling grows with the node count so large valid graphs never
// truncate; hitting it is treated like "no ready node found", not as an
// error.
const minSchedulerIterations = 100

// Runner executes graphs. It is safe for concurrent use: every run builds
// its own context and log, and the lookups are read-only collaborators.
type Runner struct {
	versions core.VersionStore
	models   core.ModelStore
	gen      core.Generator
	notifier core.StatusNotifier
	logger   *logging.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithNotifier registers a status callback fired synchronously before and
// after each node executes.
func WithNotifier(n core.StatusNotifier) Option {
	return func(r *Runner) {
		r.notifier = n
	}
}

// WithLogger sets the runner logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner with the given collaborators.
func New(versions core.VersionStore, models core.ModelStore, gen core.Generator, opts ...Option) *Runner {
	r := &Runner{
		versions: versions,
		models:   models,
		gen:      gen,
		notifier: core.NopStatusNotifier{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request describes a single execution.
type Request struct {
	RunID       core.RunID
	Graph       *core.Graph
	Inputs      map[string]string
	Attachments []core.Attachment
}

// Run executes the graph and returns the completed run log. Node failures
// never escape as errors: they are recorded as error steps and reflected in
// the log's status, so callers can always render a log.
func (r *Runner) Run(ctx context.Context, req Request) *core.RunLog {
	log := core.NewRunLog(req.RunID, req.Inputs)
	logger := r.logger.WithRun(string(req.RunID))

	ec := NewContext(req.Inputs)
	processed := make(map[core.NodeID]bool, len(req.Graph.Nodes))

	// The entry node executes before scheduling begins: its declared inputs
	// are already seeded, so it only publishes a snapshot step.
	pending := make([]*core.Node, 0, len(req.Graph.Nodes))
	for _, node := range req.Graph.Nodes {
		if node.Kind == core.NodeKindEntry {
			r.executeEntry(log, ec, node)
			processed[node.ID] = true
			continue
		}
		pending = append(pending, node)
	}

	// Every node needs one iteration, so the ceiling must cover the graph.
	maxIterations := minSchedulerIterations
	if n := len(req.Graph.Nodes); n > maxIterations {
		maxIterations = n
	}

	for iter := 0; iter < maxIterations && len(pending) > 0; iter++ {
		idx := r.nextReady(req.Graph, ec, processed, pending)
		if idx < 0 {
			// Nothing further is resolvable: remaining nodes are unreachable
			// (missing edge, cycle, or an upstream failure). The run keeps
			// whatever steps succeeded.
			logger.Debug("no ready node, stopping", "pending", len(pending))
			break
		}

		node := pending[idx]
		pending = append(pending[:idx], pending[idx+1:]...)

		ok := r.executeNode(ctx, req, log, ec, node)
		processed[node.ID] = true
		if !ok {
			// Stop on first failure: the log is complete up to this point.
			break
		}
	}

	log.Finish()
	logger.Info("run finished",
		"status", log.Status,
		"steps", len(log.Steps),
		"duration", log.Duration(),
	)
	return log
}

// nextReady scans pending in original order and returns the index of the
// first ready node, or -1. A node is ready when every variable it requires
// is either already present in the context or supplied by an edge whose
// source node has been processed. Variables with no value and no supplying
// edge do not block: they render verbatim. Readiness depends on value
// presence, not merely edge structure, so this is a work-list scan rather
// than a precomputed topological sort: a variable supplied by the initial
// inputs short-circuits its edge dependency entirely.
func (r *Runner) nextReady(g *core.Graph, ec *Context, processed map[core.NodeID]bool, pending []*core.Node) int {
	for i, node := range pending {
		if r.isReady(g, ec, processed, node) {
			return i
		}
	}
	return -1
}

func (r *Runner) isReady(g *core.Graph, ec *Context, processed map[core.NodeID]bool, node *core.Node) bool {
	for _, name := range r.requiredVars(node) {
		if ec.Has(name) {
			continue
		}
		if edge, ok := g.Supplier(node.ID, name); ok && !processed[edge.SourceID] {
			return false
		}
	}
	return true
}
