// Package report exports completed run logs as JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/weft-dev/weft/internal/core"
)

// Document is the exported shape of a run report. It flattens the run log
// with a few derived fields so the file is useful without the tool.
type Document struct {
	ID          core.RunID        `json:"id"`
	Status      core.RunStatus    `json:"status"`
	Inputs      map[string]string `json:"inputs"`
	Outputs     map[string]string `json:"outputs"`
	Steps       []core.Step       `json:"steps"`
	StepCount   int               `json:"step_count"`
	Duration    string            `json:"duration"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Build derives a report document from a run log.
func Build(log *core.RunLog) *Document {
	return &Document{
		ID:          log.ID,
		Status:      log.Status,
		Inputs:      log.Inputs,
		Outputs:     log.Outputs,
		Steps:       log.Steps,
		StepCount:   len(log.Steps),
		Duration:    log.Duration().String(),
		CreatedAt:   log.CreatedAt,
		CompletedAt: log.CompletedAt,
	}
}

// Write exports a run log to path atomically. A crashed export never leaves
// a truncated report behind.
func Write(path string, log *core.RunLog) error {
	data, err := json.MarshalIndent(Build(log), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
