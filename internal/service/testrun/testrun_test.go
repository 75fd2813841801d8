package testrun

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/service/flow"
)

type stubVersions map[string]*core.PromptVersion

func (s stubVersions) Version(id string) (*core.PromptVersion, error) {
	if v, ok := s[id]; ok {
		return v, nil
	}
	return nil, core.ErrNotFound("prompt version", id)
}

type stubModels struct{}

func (stubModels) Model(id string) (*core.ModelConfig, error) {
	return &core.ModelConfig{ID: id, Model: "test-model"}, nil
}

func (stubModels) DefaultModel() (*core.ModelConfig, error) {
	return &core.ModelConfig{ID: "default", Model: "default-model"}, nil
}

type countingGen struct {
	mu       sync.Mutex
	inFlight int32
	peak     int32
	fn       func(req core.GenerateRequest) (*core.GenerateResult, error)
}

func (g *countingGen) Generate(_ context.Context, req core.GenerateRequest) (*core.GenerateResult, error) {
	current := atomic.AddInt32(&g.inFlight, 1)
	defer atomic.AddInt32(&g.inFlight, -1)

	g.mu.Lock()
	if current > g.peak {
		g.peak = current
	}
	g.mu.Unlock()

	if g.fn != nil {
		return g.fn(req)
	}
	return &core.GenerateResult{Text: "echo: " + req.Prompt}, nil
}

func testGraph() *core.Graph {
	return &core.Graph{
		Nodes: []*core.Node{
			core.NewEntryNode("entry", "Entry", "topic"),
			core.NewGenerateNode("g1", "Summarize", "v1", "summary"),
			core.NewExitNode("exit", "Exit", "{{summary}}"),
		},
		Edges: []core.Edge{
			{SourceID: "entry", SourceHandle: "output", TargetID: "g1", TargetHandle: "topic"},
			{SourceID: "g1", SourceHandle: "output", TargetID: "exit", TargetHandle: "summary"},
		},
	}
}

func testRunner(gen core.Generator) *flow.Runner {
	versions := stubVersions{"v1": {ID: "v1", Text: "Summarize: {{topic}}"}}
	return flow.New(versions, stubModels{}, gen)
}

func TestRun_AllCasesIndependent(t *testing.T) {
	gen := &countingGen{fn: func(req core.GenerateRequest) (*core.GenerateResult, error) {
		if req.Prompt == "Summarize: rivers" {
			return nil, core.ErrGeneration("rate limited")
		}
		return &core.GenerateResult{Text: "ok"}, nil
	}}
	runner := testRunner(gen)

	cases := []Case{
		{"topic": "oceans"},
		{"topic": "rivers"},
		{"topic": "lakes"},
	}
	report, err := Run(context.Background(), runner, testGraph(), cases, Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Passed != 2 || report.Failed != 1 {
		t.Fatalf("passed=%d failed=%d, want 2/1", report.Passed, report.Failed)
	}
	if !report.Results[1].Log.Failed() {
		t.Fatalf("rivers case should have failed")
	}
	if report.Results[0].Inputs["topic"] != "oceans" {
		t.Fatalf("results must keep dataset order")
	}

	ids := make(map[core.RunID]bool)
	for _, r := range report.Results {
		ids[r.Log.ID] = true
	}
	if len(ids) != 3 {
		t.Fatalf("every case needs its own run ID, got %d unique", len(ids))
	}
}

func TestRun_ConcurrencyBound(t *testing.T) {
	release := make(chan struct{})
	gen := &countingGen{fn: func(core.GenerateRequest) (*core.GenerateResult, error) {
		<-release
		return &core.GenerateResult{Text: "ok"}, nil
	}}
	runner := testRunner(gen)

	cases := make([]Case, 8)
	for i := range cases {
		cases[i] = Case{"topic": "t"}
	}

	done := make(chan *Report)
	go func() {
		report, _ := Run(context.Background(), runner, testGraph(), cases, Options{Concurrency: 2})
		done <- report
	}()

	close(release)
	report := <-done

	if report == nil || len(report.Results) != 8 {
		t.Fatalf("expected 8 results")
	}
	gen.mu.Lock()
	peak := gen.peak
	gen.mu.Unlock()
	if peak > 2 {
		t.Fatalf("peak concurrency %d exceeds limit 2", peak)
	}
}

func TestRun_BaseInputsMerged(t *testing.T) {
	gen := &countingGen{}
	versions := stubVersions{"v1": {ID: "v1", Text: "{{style}} {{topic}}"}}
	runner := flow.New(versions, stubModels{}, gen)

	g := &core.Graph{
		Nodes: []*core.Node{
			core.NewEntryNode("entry", "Entry", "topic", "style"),
			core.NewGenerateNode("g1", "Gen", "v1", "out"),
			core.NewExitNode("exit", "Exit", "{{out}}"),
		},
	}

	report, err := Run(context.Background(), runner, g,
		[]Case{{"topic": "oceans"}, {"topic": "rivers", "style": "formal"}},
		Options{BaseInputs: map[string]string{"style": "brief"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := report.Results[0].Inputs["style"]; got != "brief" {
		t.Fatalf("base input not merged: %q", got)
	}
	if got := report.Results[1].Inputs["style"]; got != "formal" {
		t.Fatalf("case value must win over base input: %q", got)
	}
}

func TestRun_EmptyDataset(t *testing.T) {
	runner := testRunner(&countingGen{})
	if _, err := Run(context.Background(), runner, testGraph(), nil, Options{}); err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}

func TestLoadDataset_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	content := "topic,style\noceans,brief\nrivers,formal\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0]["topic"] != "oceans" || cases[1]["style"] != "formal" {
		t.Fatalf("unexpected cases: %v", cases)
	}
}

func TestLoadDataset_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	content := "- topic: oceans\n- topic: rivers\n  style: formal\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 || cases[1]["style"] != "formal" {
		t.Fatalf("unexpected cases: %v", cases)
	}
}

func TestLoadDataset_UnknownExtension(t *testing.T) {
	if _, err := LoadDataset("cases.txt"); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}
