// Package flowfile parses the YAML flow documents exported by the visual
// graph editor into the engine's graph model.
package flowfile

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weft-dev/weft/internal/core"
)

// Flow is a parsed flow document: the graph plus its bundled inputs and
// attachments.
type Flow struct {
	Name        string
	Graph       *core.Graph
	Inputs      map[string]string
	Attachments []core.Attachment
}

type flowDoc struct {
	Name        string            `yaml:"name"`
	Nodes       []nodeDoc         `yaml:"nodes"`
	Edges       []edgeDoc         `yaml:"edges"`
	Inputs      map[string]string `yaml:"inputs"`
	Attachments []attachmentDoc   `yaml:"attachments"`
}

type attachmentDoc struct {
	Name      string `yaml:"name"`
	MediaType string `yaml:"media_type"`
	Data      string `yaml:"data"` // base64
}

type nodeDoc struct {
	ID            string   `yaml:"id"`
	Kind          string   `yaml:"kind"`
	Name          string   `yaml:"name"`
	Inputs        []string `yaml:"inputs"`         // entry
	Version       string   `yaml:"version"`        // generate
	Template      string   `yaml:"template"`       // generate override / exit template
	Output        string   `yaml:"output"`         // generate
	IncludeSystem *bool    `yaml:"include_system"` // generate
}

type edgeDoc struct {
	From       string `yaml:"from"`
	FromHandle string `yaml:"from_handle"`
	To         string `yaml:"to"`
	Handle     string `yaml:"handle"`
}

// Parse parses a flow document and validates its structure.
func Parse(data []byte) (*Flow, error) {
	var doc flowDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing flow: %w", err)
	}

	graph := &core.Graph{
		Nodes: make([]*core.Node, 0, len(doc.Nodes)),
		Edges: make([]core.Edge, 0, len(doc.Edges)),
	}

	for _, nd := range doc.Nodes {
		node, err := buildNode(nd)
		if err != nil {
			return nil, err
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	for _, ed := range doc.Edges {
		handle := ed.FromHandle
		if handle == "" {
			handle = "output"
		}
		graph.Edges = append(graph.Edges, core.Edge{
			SourceID:     core.NodeID(ed.From),
			SourceHandle: handle,
			TargetID:     core.NodeID(ed.To),
			TargetHandle: ed.Handle,
		})
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	inputs := doc.Inputs
	if inputs == nil {
		inputs = make(map[string]string)
	}

	var attachments []core.Attachment
	for _, ad := range doc.Attachments {
		data, err := base64.StdEncoding.DecodeString(ad.Data)
		if err != nil {
			return nil, core.ErrValidation("ATTACHMENT_DATA_INVALID",
				fmt.Sprintf("attachment %q carries invalid base64 data", ad.Name))
		}
		attachments = append(attachments, core.Attachment{
			Name:      ad.Name,
			MediaType: ad.MediaType,
			Data:      data,
		})
	}

	return &Flow{Name: doc.Name, Graph: graph, Inputs: inputs, Attachments: attachments}, nil
}

// ParseFile parses a flow document from disk.
func ParseFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow file: %w", err)
	}
	flow, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flow, nil
}

func buildNode(nd nodeDoc) (*core.Node, error) {
	id := core.NodeID(nd.ID)
	switch core.NodeKind(nd.Kind) {
	case core.NodeKindEntry:
		return core.NewEntryNode(id, nd.Name, nd.Inputs...), nil
	case core.NodeKindGenerate:
		node := core.NewGenerateNode(id, nd.Name, nd.Version, nd.Output)
		node.Generate.TemplateOverride = nd.Template
		node.Generate.IncludeSystem = nd.IncludeSystem
		return node, nil
	case core.NodeKindExit:
		return core.NewExitNode(id, nd.Name, nd.Template), nil
	default:
		return nil, core.ErrValidation("NODE_KIND_UNKNOWN",
			fmt.Sprintf("node %q has unknown kind %q", nd.ID, nd.Kind))
	}
}
