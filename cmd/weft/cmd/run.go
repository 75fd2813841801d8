package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weft-dev/weft/internal/adapters/state"
	"github.com/weft-dev/weft/internal/attachments"
	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/flowfile"
	"github.com/weft-dev/weft/internal/report"
	"github.com/weft-dev/weft/internal/service/flow"
)

var (
	runInputs     []string
	runAttach     []string
	runSave       bool
	runReportPath string
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run <flow.yaml>",
	Short: "Execute a flow file once",
	Long: `Execute a flow file against the configured library and print the run
log. Inputs bundled in the flow file can be overridden with --input.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVarP(&runInputs, "input", "i", nil,
		"input variable as name=value (repeatable, overrides flow file inputs)")
	runCmd.Flags().StringArrayVar(&runAttach, "attach", nil,
		"file to pass through to generation calls (repeatable)")
	runCmd.Flags().BoolVar(&runSave, "save", false,
		"persist the run log to the state database")
	runCmd.Flags().StringVar(&runReportPath, "report", "",
		"export the run log as a JSON report to this path")
	runCmd.Flags().BoolVar(&runJSON, "json", false,
		"print the full run log as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parsed, err := flowfile.ParseFile(args[0])
	if err != nil {
		return err
	}

	inputs := parsed.Inputs
	overrides, err := parseInputFlags(runInputs)
	if err != nil {
		return err
	}
	for k, v := range overrides {
		inputs[k] = v
	}

	loaded, err := attachments.LoadFiles(runAttach)
	if err != nil {
		return err
	}
	attached := append(parsed.Attachments, loaded...)

	logger := buildLogger().WithFlow(parsed.Name)
	lib, err := buildLibrary()
	if err != nil {
		return err
	}
	runner := buildRunner(lib, logger, nil)

	log := runner.Run(ctx, flow.Request{
		RunID:       core.RunID(uuid.NewString()),
		Graph:       parsed.Graph,
		Inputs:      inputs,
		Attachments: attached,
	})

	if runSave {
		store, err := state.Open(cfg.State.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.SaveRun(ctx, log); err != nil {
			return err
		}
	}

	if runReportPath != "" {
		if err := report.Write(runReportPath, log); err != nil {
			return err
		}
	}

	if runJSON {
		return printJSON(cmd, log)
	}
	printRunLog(cmd, log)

	if log.Failed() {
		return fmt.Errorf("run %s failed", log.ID)
	}
	return nil
}

// parseInputFlags turns repeated name=value flags into a map.
func parseInputFlags(raw []string) (map[string]string, error) {
	inputs := make(map[string]string, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --input %q (want name=value)", pair)
		}
		inputs[name] = value
	}
	return inputs, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func printRunLog(cmd *cobra.Command, log *core.RunLog) {
	cmd.Printf("run %s: %s (%d steps, %s)\n", log.ID, log.Status, len(log.Steps), log.Duration())
	for _, step := range log.Steps {
		name := step.NodeName
		if name == "" {
			name = string(step.NodeID)
		}
		if step.Status == core.NodeStatusError {
			cmd.Printf("  ✗ %s: %s\n", name, step.Output)
			continue
		}
		cmd.Printf("  ✓ %s (%s)\n", name, step.Latency)
	}
	if final, ok := log.Outputs[core.OutputFinal]; ok {
		cmd.Printf("\n%s\n", final)
	}
}
