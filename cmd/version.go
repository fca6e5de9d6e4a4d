package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/version"
)

var versionShort bool

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long: `Display detailed version information including:
- Semantic version
- Git commit hash
- Build date
- Go version used for compilation
- Target platform`,
	Example: `  # Display version information
  diabetes-predictor version

  # Display short version
  diabetes-predictor version --short

  # Output as JSON
  diabetes-predictor version --output json`,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false,
		"Display short version information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	versionInfo := version.Get()

	if versionShort {
		fmt.Fprintln(out, versionInfo.Short())
		return nil
	}

	switch getConfig().Output.Format {
	case "json":
		return outputJSON(out, versionInfo)
	case "yaml", "yml":
		return outputYAML(out, versionInfo)
	default:
		fmt.Fprintln(out, versionInfo.String())

		// Add development build warning
		if version.IsDevBuild() {
			fmt.Fprintln(out, "\n⚠️  This is a development build. Use official releases for production.")
		}
		return nil
	}
}
