package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgconfig "github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Configuration management commands.

Settings are merged from defaults, the config file
(~/.diabetes-predictor/config.yaml or --config), PREDICTOR_* environment
variables (PREDICTOR_OUTPUT_FORMAT, PREDICTOR_SCORING_SEED, ...) and flags,
later sources winning.

Examples:
  # Write the default configuration file
  diabetes-predictor config init

  # Overwrite an existing file
  diabetes-predictor config init --force

  # Show the effective configuration
  diabetes-predictor config show`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := pkgconfig.InitializeConfig(cfgFile, force)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.Output.Format == "json" {
			return outputJSON(cmd.OutOrStdout(), cfg)
		}
		return outputYAML(cmd.OutOrStdout(), cfg)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			var err error
			path, err = pkgconfig.GetConfigPath()
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration file")
}
