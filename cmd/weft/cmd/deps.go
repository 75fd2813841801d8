package cmd

import (
	"fmt"

	"github.com/weft-dev/weft/internal/adapters/genai"
	"github.com/weft-dev/weft/internal/core"
	"github.com/weft-dev/weft/internal/library"
	"github.com/weft-dev/weft/internal/logging"
	"github.com/weft-dev/weft/internal/service/flow"
)

func buildLogger() *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

func buildLibrary() (*library.Library, error) {
	lib, err := library.Load(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("loading library %s: %w", cfg.Library.Path, err)
	}
	return lib, nil
}

func buildRunner(lib *library.Library, logger *logging.Logger, notifier core.StatusNotifier) *flow.Runner {
	gen := genai.New(cfg.GenerationTimeout(), genai.WithLogger(logger))

	opts := []flow.Option{flow.WithLogger(logger)}
	if notifier != nil {
		opts = append(opts, flow.WithNotifier(notifier))
	}
	return flow.New(lib, lib, gen, opts...)
}
