package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
)

// fieldsCmd represents the fields command
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the health measurements and their typical ranges",
	Example: `  diabetes-predictor fields
  diabetes-predictor fields --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fields := input.Fields()

		switch getConfig().Output.Format {
		case "json":
			return outputJSON(out, fields)
		case "yaml", "yml":
			return outputYAML(out, fields)
		}

		showDescription := getConfig().Output.Verbose
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		header := "FLAG\tKEY\tLABEL\tTYPICAL\tDEFAULT"
		if showDescription {
			header += "\tDESCRIPTION"
		}
		fmt.Fprintln(w, header)
		for _, f := range fields {
			line := fmt.Sprintf("--%s\t%s\t%s\t%s\t%g", flagName(f.Key), f.Key, f.Label, f.Placeholder, f.Default)
			if showDescription {
				line += "\t" + f.Description
			}
			fmt.Fprintln(w, line)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
