package flow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/template"
)

// executeEntry logs the entry node immediately with a serialized snapshot
// of its declared inputs and zero latency.
func (r *Runner) executeEntry(log *core.RunLog, ec *Context, node *core.Node) {
	snapshot := make(map[string]string, len(node.Entry.Inputs))
	for _, name := range node.Entry.Inputs {
		if v, ok := ec.Get(name); ok {
			snapshot[name] = v
		}
	}
	encoded, _ := json.Marshal(snapshot)

	r.notifier.NodeStatus(log.ID, node.ID, core.NodeStatusRunning, "")
	log.AddStep(core.Step{
		NodeID:   node.ID,
		NodeName: node.Label(),
		Status:   core.NodeStatusSuccess,
		Output:   string(encoded),
	})
	r.notifier.NodeStatus(log.ID, node.ID, core.NodeStatusSuccess, string(encoded))
}

// executeNode runs a single scheduled node and records its step. It returns
// false when the node failed, which stops scheduling.
func (r *Runner) executeNode(ctx context.Context, req Request, log *core.RunLog, ec *Context, node *core.Node) bool {
	r.notifier.NodeStatus(log.ID, node.ID, core.NodeStatusRunning, "")
	start := time.Now()

	var output string
	var err error
	switch node.Kind {
	case core.NodeKindGenerate:
		output, err = r.executeGenerate(ctx, req, ec, node)
	case core.NodeKindExit:
		output = r.executeExit(req.Graph, log, ec, node)
	default:
		err = core.ErrValidation("NODE_KIND_UNKNOWN", "node kind cannot be scheduled: "+string(node.Kind))
	}
	latency := time.Since(start)

	if err != nil {
		msg := errText(err)
		log.AddStep(core.Step{
			NodeID:   node.ID,
			NodeName: node.Label(),
			Status:   core.NodeStatusError,
			Output:   msg,
			Latency:  latency,
		})
		r.notifier.NodeStatus(log.ID, node.ID, core.NodeStatusError, msg)
		r.logger.WithRun(string(log.ID)).WithNode(string(node.ID)).Error("node failed", "error", err)
		return false
	}

	log.AddStep(core.Step{
		NodeID:   node.ID,
		NodeName: node.Label(),
		Status:   core.NodeStatusSuccess,
		Output:   output,
		Latency:  latency,
	})
	r.notifier.NodeStatus(log.ID, node.ID, core.NodeStatusSuccess, output)
	return true
}

// executeGenerate gathers the node's inputs, renders the effective prompt
// content, and invokes the generation backend.
func (r *Runner) executeGenerate(ctx context.Context, req Request, ec *Context, node *core.Node) (string, error) {
	cfg := node.Generate

	var version *core.PromptVersion
	if cfg.VersionID != "" {
		v, err := r.versions.Version(cfg.VersionID)
		if err != nil {
			return "", err
		}
		version = v
	}

	vars := resolveVars(req.Graph, ec, node, r.requiredVars(node))

	genReq := core.GenerateRequest{Attachments: req.Attachments}
	switch {
	case cfg.TemplateOverride != "":
		genReq.Prompt = template.Render(cfg.TemplateOverride, vars)
	case version == nil:
		return "", core.ErrValidation("NODE_VERSION_REQUIRED", "generate node "+string(node.ID)+" has no prompt content")
	case version.IsMultiTurn():
		genReq.Messages = make([]core.Message, len(version.Messages))
		for i, msg := range version.Messages {
			genReq.Messages[i] = core.Message{Role: msg.Role, Content: template.Render(msg.Content, vars)}
		}
	default:
		genReq.Prompt = template.Render(version.Text, vars)
	}

	if version != nil {
		genReq.Params = version.Params
		if cfg.IncludesSystem() {
			genReq.System = version.System
		}
	}

	model, err := r.resolveModel(version)
	if err != nil {
		return "", err
	}
	genReq.Model = model

	res, err := r.gen.Generate(ctx, genReq)
	if err != nil {
		if ctx.Err() != nil && !core.IsCategory(err, core.ErrCatCancelled) {
			return "", core.ErrCancelled("run cancelled").WithCause(err)
		}
		return "", err
	}

	if cfg.OutputVar != "" {
		ec.Set(cfg.OutputVar, res.Text)
	}
	ec.SetRaw(string(node.ID), res.Text)
	return res.Text, nil
}

// resolveModel returns the version's declared model, falling back to the
// store's default when the version has none or its reference is dangling.
// The soft fallback mirrors the editor's behavior; it is logged so silently
// substituted results stay diagnosable.
func (r *Runner) resolveModel(version *core.PromptVersion) (*core.ModelConfig, error) {
	if version != nil && version.ModelID != "" {
		model, err := r.models.Model(version.ModelID)
		if err == nil {
			return model, nil
		}
		r.logger.Warn("model reference unresolved, using default",
			"version", version.ID, "model", version.ModelID)
	}
	return r.models.DefaultModel()
}

// executeExit renders the output template from the context and publishes it
// as the run's aggregate final output. Unresolved placeholders stay
// verbatim. No external call is made.
func (r *Runner) executeExit(g *core.Graph, log *core.RunLog, ec *Context, node *core.Node) string {
	vars := resolveVars(g, ec, node, r.requiredVars(node))
	rendered := template.Render(node.Exit.Template, vars)
	log.SetOutput(core.OutputFinal, rendered)
	return rendered
}

// errText extracts the message recorded in an error step. Domain errors
// contribute their bare message so provider failures appear verbatim.
func errText(err error) string {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return domErr.Message
	}
	return err.Error()
}
