package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/weft-dev/weft/internal/core"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseInputFlags(t *testing.T) {
	inputs, err := parseInputFlags([]string{"topic=oceans", "style=brief"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inputs["topic"] != "oceans" || inputs["style"] != "brief" {
		t.Fatalf("unexpected inputs: %v", inputs)
	}

	if _, err := parseInputFlags([]string{"notapair"}); err == nil {
		t.Fatalf("expected error for malformed input flag")
	}
	if _, err := parseInputFlags([]string{"=value"}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-08-23")

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "weft 1.2.3 (commit abc123, built 2026-08-23)\n"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRunCommand(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "Oceans cover 70% of Earth."}}],
			"usage": {"prompt_tokens": 5, "completion_tokens": 7}
		}`))
	}))
	defer backend.Close()

	dir := t.TempDir()
	chdir(t, dir)

	writeFile(t, filepath.Join(dir, "library.yaml"), fmt.Sprintf(`
default_model: m1
models:
  - id: m1
    endpoint: %s
    model: test-model
versions:
  - id: v1
    text: "Summarize: {{topic}}"
    model: m1
`, backend.URL))

	writeFile(t, filepath.Join(dir, "flow.yaml"), `
name: summarize
nodes:
  - id: entry
    kind: entry
    inputs: [topic]
  - id: g1
    kind: generate
    version: v1
    output: summary
  - id: exit
    kind: exit
    template: "Result: {{summary}}"
edges:
  - from: entry
    to: g1
    handle: topic
  - from: g1
    to: exit
    handle: summary
`)

	writeFile(t, filepath.Join(dir, ".weft.yaml"), `
log:
  level: error
  format: json
library:
  path: library.yaml
state:
  path: runs.db
`)

	out, err := execute(t, "run", "flow.yaml", "--input", "topic=oceans", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v\noutput: %s", err, out)
	}

	var log core.RunLog
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatalf("output is not a run log: %v\noutput: %s", err, out)
	}
	if log.Status != core.RunStatusSuccess {
		t.Fatalf("status = %s", log.Status)
	}
	if got := log.Outputs[core.OutputFinal]; got != "Result: Oceans cover 70% of Earth." {
		t.Fatalf("final output = %q", got)
	}
	if len(log.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(log.Steps))
	}
}

func TestRunCommand_MissingFlow(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, ".weft.yaml"), "log:\n  level: error\n")

	if _, err := execute(t, "run", "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing flow file")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
