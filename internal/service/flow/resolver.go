package flow

import (
	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/template"
)

// requiredVars returns the variable names a node references, derived from
// its effective prompt content. For a generate node that is the inline
// override when present, otherwise the referenced version's text plus every
// message of a multi-turn history. A generate node whose version cannot be
// resolved reports no requirements: it becomes ready immediately and the
// executor surfaces the missing reference as the node's error.
func (r *Runner) requiredVars(node *core.Node) []string {
	switch node.Kind {
	case core.NodeKindGenerate:
		cfg := node.Generate
		if cfg.TemplateOverride != "" {
			return template.Placeholders(cfg.TemplateOverride)
		}
		version, err := r.versions.Version(cfg.VersionID)
		if err != nil {
			return nil
		}
		names := template.Placeholders(version.Text)
		for _, msg := range version.Messages {
			names = mergeNames(names, template.Placeholders(msg.Content))
		}
		return names
	case core.NodeKindExit:
		return template.Placeholders(node.Exit.Template)
	default:
		return nil
	}
}

// resolveVars satisfies each required name from the context, falling back
// to the raw output of the node bound by edge. Names with neither stay
// absent and render verbatim.
func resolveVars(g *core.Graph, ec *Context, node *core.Node, names []string) map[string]string {
	vars := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := ec.Get(name); ok {
			vars[name] = v
			continue
		}
		if edge, ok := g.Supplier(node.ID, name); ok {
			if v, ok := ec.GetRaw(string(edge.SourceID)); ok {
				vars[name] = v
			}
		}
	}
	return vars
}

func mergeNames(names, more []string) []string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range more {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}
