// Package testrun executes a flow once per dataset row, bounded by a
// concurrency limit, and aggregates the outcomes.
package testrun

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Case is one dataset row: the input variables for a single run.
type Case map[string]string

// LoadDataset reads test cases from a CSV or YAML file, chosen by
// extension. CSV files use the header row as variable names; YAML files
// hold a list of string maps.
func LoadDataset(path string) ([]Case, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .csv, .yaml, or .yml)", filepath.Ext(path))
	}
}

func loadCSV(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	var cases []Case
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row %d: %w", len(cases)+2, err)
		}
		c := make(Case, len(header))
		for i, name := range header {
			c[strings.TrimSpace(name)] = record[i]
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func loadYAML(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return cases, nil
}
