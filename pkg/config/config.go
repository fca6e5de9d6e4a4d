package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DirName is the per-user configuration directory under $HOME
	DirName = ".diabetes-predictor"

	// FileName is the configuration file inside DirName
	FileName = "config.yaml"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// ScoringConfig selects the rule table and randomness
type ScoringConfig struct {
	// Seed makes probability and confidence reproducible. Nil draws from a random seed.
	Seed        *int64   `yaml:"seed,omitempty" json:"seed,omitempty" mapstructure:"seed"`
	RulesPaths  []string `yaml:"rules_paths" json:"rules_paths" mapstructure:"rules_paths"`
	UseBuiltin  bool     `yaml:"use_builtin" json:"use_builtin" mapstructure:"use_builtin"`
	Parallelism int      `yaml:"parallelism" json:"parallelism" mapstructure:"parallelism"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Format  string `yaml:"format" json:"format" mapstructure:"format"`
	File    string `yaml:"file" json:"file" mapstructure:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color" mapstructure:"no_color"`
	Verbose bool   `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Address         string        `yaml:"address" json:"address" mapstructure:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxBatchSize    int           `yaml:"max_batch_size" json:"max_batch_size" mapstructure:"max_batch_size"`
}

// PresentationConfig controls interactive output
type PresentationConfig struct {
	// SimulatedDelay is shown as "Analyzing..." before a single assessment is printed
	SimulatedDelay time.Duration `yaml:"simulated_delay" json:"simulated_delay" mapstructure:"simulated_delay"`
	ShowProgress   bool          `yaml:"show_progress" json:"show_progress" mapstructure:"show_progress"`
}

// PredictorConfig represents the complete configuration
type PredictorConfig struct {
	Logging      LoggingConfig      `yaml:"logging" json:"logging" mapstructure:"logging"`
	Scoring      ScoringConfig      `yaml:"scoring" json:"scoring" mapstructure:"scoring"`
	Output       OutputConfig       `yaml:"output" json:"output" mapstructure:"output"`
	Server       ServerConfig       `yaml:"server" json:"server" mapstructure:"server"`
	Presentation PresentationConfig `yaml:"presentation" json:"presentation" mapstructure:"presentation"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *PredictorConfig {
	return &PredictorConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Scoring: ScoringConfig{
			RulesPaths:  []string{},
			UseBuiltin:  true,
			Parallelism: 10,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
			MaxBatchSize:    1000,
		},
		Presentation: PresentationConfig{
			SimulatedDelay: 2 * time.Second,
			ShowProgress:   true,
		},
	}
}

// Validate reports the first invalid setting
func (c *PredictorConfig) Validate() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	switch c.Output.Format {
	case "table", "console", "json", "yaml", "yml":
	default:
		return fmt.Errorf("invalid output.format %q", c.Output.Format)
	}
	if !c.Scoring.UseBuiltin && len(c.Scoring.RulesPaths) == 0 {
		return fmt.Errorf("scoring.use_builtin is false but no scoring.rules_paths are set")
	}
	if c.Scoring.Parallelism < 0 {
		return fmt.Errorf("scoring.parallelism must not be negative")
	}
	if c.Presentation.SimulatedDelay < 0 {
		return fmt.Errorf("presentation.simulated_delay must not be negative")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server.max_batch_size must be positive")
	}
	return nil
}

// GetPredictorDir returns the configuration directory
func GetPredictorDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, DirName), nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() (string, error) {
	dir, err := GetPredictorDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// GetRulesDir returns the directory scanned for custom rules when it exists
func GetRulesDir() (string, error) {
	dir, err := GetPredictorDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rules"), nil
}

// EnsureDirectories creates the configuration directory if it doesn't exist
func EnsureDirectories() error {
	dir, err := GetPredictorDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
