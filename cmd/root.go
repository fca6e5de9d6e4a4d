package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
)

var (
	cfgFile   string
	verbose   bool
	logger    *slog.Logger
	appConfig *config.PredictorConfig
)

// exitError carries a process exit code through cobra's error return
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "diabetes-predictor",
	Short: "Diabetes risk screening from eight routine health measurements",
	Long: `diabetes-predictor scores eight routine health measurements (pregnancies,
glucose, blood pressure, skin thickness, insulin, BMI, diabetes pedigree and age)
against an additive weighted-threshold rule table and reports a low, moderate
or high diabetes risk with contributing factors and a recommendation.

The rule table is expressed as CEL rules and can be inspected, validated and
replaced with custom rules.

Examples:
  # Assess one person
  diabetes-predictor assess --glucose 150 --bmi 32 --age 50

  # Assess a CSV export of the Pima dataset
  diabetes-predictor assess --input diabetes.csv --output json

  # Inspect the rule table
  diabetes-predictor rules list

  # Serve the JSON API
  diabetes-predictor server --address :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initializeLogger()
		return loadAppConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Ensure logger is initialized before using it
		if logger == nil {
			initializeLogger()
		}

		var exitErr *exitError
		if errors.As(err, &exitErr) {
			logger.Warn(exitErr.msg)
			os.Exit(exitErr.code)
		}

		logger.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.diabetes-predictor/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", defaults.Logging.Level, "log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().String("log-format", defaults.Logging.Format, "log format (text, json)")
	rootCmd.PersistentFlags().StringP("output", "o", defaults.Output.Format, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().String("output-file", "", "output file path")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringSlice("rules-path", []string{}, "paths to custom rule files or directories")
	rootCmd.PersistentFlags().Bool("builtin", defaults.Scoring.UseBuiltin, "include the builtin rule table")

	// Bind flags to viper keys that mirror the config file layout
	bindFlags := []struct {
		key  string
		flag string
	}{
		{"output.verbose", "verbose"},
		{"logging.level", "log-level"},
		{"logging.format", "log-format"},
		{"output.format", "output"},
		{"output.file", "output-file"},
		{"output.no_color", "no-color"},
		{"scoring.rules_paths", "rules-path"},
		{"scoring.use_builtin", "builtin"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, rootCmd.PersistentFlags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", bf.flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults(config.DefaultConfig())

	// Environment variables: PREDICTOR_OUTPUT_FORMAT, PREDICTOR_SCORING_SEED, ...
	viper.SetEnvPrefix("PREDICTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("scoring.seed")

	path := cfgFile
	if path == "" {
		defaultPath, err := config.GetConfigPath()
		if err != nil {
			return
		}
		if _, err := os.Stat(defaultPath); err != nil {
			return
		}
		path = defaultPath
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
		return
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
}

// setConfigDefaults registers every config key so env overrides and Unmarshal see them
func setConfigDefaults(cfg *config.PredictorConfig) {
	defaults := map[string]interface{}{
		"logging.level":                cfg.Logging.Level,
		"logging.format":               cfg.Logging.Format,
		"scoring.rules_paths":          cfg.Scoring.RulesPaths,
		"scoring.use_builtin":          cfg.Scoring.UseBuiltin,
		"scoring.parallelism":          cfg.Scoring.Parallelism,
		"output.format":                cfg.Output.Format,
		"output.file":                  cfg.Output.File,
		"output.no_color":              cfg.Output.NoColor,
		"output.verbose":               cfg.Output.Verbose,
		"server.address":               cfg.Server.Address,
		"server.read_timeout":          cfg.Server.ReadTimeout,
		"server.write_timeout":         cfg.Server.WriteTimeout,
		"server.shutdown_timeout":      cfg.Server.ShutdownTimeout,
		"server.max_body_bytes":        cfg.Server.MaxBodyBytes,
		"server.max_batch_size":        cfg.Server.MaxBatchSize,
		"presentation.simulated_delay": cfg.Presentation.SimulatedDelay,
		"presentation.show_progress":   cfg.Presentation.ShowProgress,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// loadAppConfig merges defaults, the config file, env vars and flags
func loadAppConfig() error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	appConfig = cfg
	return nil
}

// getConfig returns the effective configuration
func getConfig() *config.PredictorConfig {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// initializeLogger sets up the logger based on configuration
func initializeLogger() {
	// Parse log level
	levelStr := viper.GetString("logging.level")
	var level slog.Level
	switch levelStr {
	case "trace", "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error", "fatal", "panic":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	// Create handler based on format
	var handler slog.Handler
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	if viper.GetString("logging.format") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// GetLogger returns the configured logger instance
func GetLogger() *slog.Logger {
	if logger == nil {
		initializeLogger()
	}
	return logger
}
