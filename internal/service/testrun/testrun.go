package testrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/service/flow"
)

// Result pairs a dataset row with its completed run log.
type Result struct {
	Index  int               `json:"index"`
	Inputs map[string]string `json:"inputs"`
	Log    *core.RunLog      `json:"log"`
}

// Report aggregates a whole dataset execution.
type Report struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
	Failed  int      `json:"failed"`
}

// Options control a dataset execution.
type Options struct {
	// Concurrency bounds the number of in-flight runs. Values below 1 run
	// serially.
	Concurrency int

	// BaseInputs are merged under each case; case values win.
	BaseInputs map[string]string
}

// Run executes the graph once per case. Every case is an independent run
// with its own run ID and log; a failed case never stops the others. The
// returned results keep dataset order regardless of completion order.
func Run(ctx context.Context, runner *flow.Runner, graph *core.Graph, cases []Case, opts Options) (*Report, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("dataset has no cases")
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			inputs := make(map[string]string, len(opts.BaseInputs)+len(c))
			for k, v := range opts.BaseInputs {
				inputs[k] = v
			}
			for k, v := range c {
				inputs[k] = v
			}

			log := runner.Run(ctx, flow.Request{
				RunID:  core.RunID(uuid.NewString()),
				Graph:  graph,
				Inputs: inputs,
			})
			results[i] = Result{Index: i, Inputs: inputs, Log: log}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results}
	for _, r := range results {
		if r.Log.Failed() {
			report.Failed++
		} else {
			report.Passed++
		}
	}
	return report, nil
}
