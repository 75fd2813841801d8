package config

import (
	"fmt"
	"time"
)

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"auto": true, "text": true, "json": true}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q (debug|info|warn|error)", c.Log.Level)
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format %q (auto|text|json)", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path cannot be empty")
	}
	if c.Library.Path == "" {
		return fmt.Errorf("library.path cannot be empty")
	}
	if c.Generation.Timeout != "" {
		if _, err := time.ParseDuration(c.Generation.Timeout); err != nil {
			return fmt.Errorf("invalid generation.timeout %q: %w", c.Generation.Timeout, err)
		}
	}
	if c.Test.Concurrency < 1 {
		return fmt.Errorf("test.concurrency must be at least 1, got %d", c.Test.Concurrency)
	}
	return nil
}

// GenerationTimeout parses the generation timeout, falling back to two
// minutes on an empty value.
func (c *Config) GenerationTimeout() time.Duration {
	if c.Generation.Timeout == "" {
		return 2 * time.Minute
	}
	d, err := time.ParseDuration(c.Generation.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}
