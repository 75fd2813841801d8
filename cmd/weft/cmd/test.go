package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/flowfile"
	"github.com/weft-dev/weft/internal/service/testrun"
)

var (
	testDataset     string
	testConcurrency int
	testJSON        bool
)

var testCmd = &cobra.Command{
	Use:   "test <flow.yaml>",
	Short: "Run a flow against every row of a dataset",
	Long: `Execute a flow once per dataset row. Each row is an independent run
with its own run ID; rows that fail do not stop the rest. The dataset is
a CSV file whose header names the input variables, or a YAML list of
string maps.`,
	Args: cobra.ExactArgs(1),
	RunE: runTest,
}

func init() {
	testCmd.Flags().StringVarP(&testDataset, "dataset", "d", "",
		"dataset file (.csv, .yaml, or .yml)")
	testCmd.Flags().IntVar(&testConcurrency, "concurrency", 0,
		"max in-flight runs (default: test.concurrency from config)")
	testCmd.Flags().BoolVar(&testJSON, "json", false,
		"print the full report as JSON")
	_ = testCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parsed, err := flowfile.ParseFile(args[0])
	if err != nil {
		return err
	}
	cases, err := testrun.LoadDataset(testDataset)
	if err != nil {
		return err
	}

	concurrency := testConcurrency
	if concurrency < 1 {
		concurrency = cfg.Test.Concurrency
	}

	logger := buildLogger().WithFlow(parsed.Name)
	lib, err := buildLibrary()
	if err != nil {
		return err
	}
	runner := buildRunner(lib, logger, nil)

	rep, err := testrun.Run(ctx, runner, parsed.Graph, cases, testrun.Options{
		Concurrency: concurrency,
		BaseInputs:  parsed.Inputs,
	})
	if err != nil {
		return err
	}

	if testJSON {
		if err := printJSON(cmd, rep); err != nil {
			return err
		}
	} else {
		printReport(cmd, rep)
	}

	if rep.Failed > 0 {
		return fmt.Errorf("%d of %d cases failed", rep.Failed, len(rep.Results))
	}
	return nil
}

func printReport(cmd *cobra.Command, rep *testrun.Report) {
	for _, r := range rep.Results {
		if r.Log.Failed() {
			last := r.Log.Steps[len(r.Log.Steps)-1]
			cmd.Printf("  ✗ case %d: %s\n", r.Index+1, last.Output)
			continue
		}
		cmd.Printf("  ✓ case %d: %s\n", r.Index+1, r.Log.Outputs[core.OutputFinal])
	}
	cmd.Printf("\n%d passed, %d failed\n", rep.Passed, rep.Failed)
}
