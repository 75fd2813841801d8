package config

// Config holds all application configuration.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	State      StateConfig      `mapstructure:"state"`
	Library    LibraryConfig    `mapstructure:"library"`
	Generation GenerationConfig `mapstructure:"generation"`
	Test       TestConfig       `mapstructure:"test"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StateConfig configures run-log persistence.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// LibraryConfig configures the prompt/model library.
type LibraryConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// GenerationConfig configures generation backend calls.
type GenerationConfig struct {
	Timeout string `mapstructure:"timeout"`
}

// TestConfig configures dataset test runs.
type TestConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}
