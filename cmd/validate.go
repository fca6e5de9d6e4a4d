package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/utils"
)

// errInvalidInput is returned when any record file fails to parse
var errInvalidInput = errors.New("input validation failed")

// validateInputCmd represents the validate command for health record files
var validateInputCmd = &cobra.Command{
	Use:   "validate [file|directory|-]",
	Short: "Validate health record files before assessment",
	Long: `Parse JSON, YAML or CSV health record files and report values outside
their typical ranges. Range findings are advisory and never change a score;
only files that cannot be parsed make the command fail.

To validate scoring rules use 'diabetes-predictor rules validate'.`,
	Example: `  # Validate a CSV export
  diabetes-predictor validate patients.csv

  # Validate every record file in a directory as JSON
  diabetes-predictor validate ./records --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runInputValidation,
}

func init() {
	rootCmd.AddCommand(validateInputCmd)
}

// InputValidationReport describes one record file
type InputValidationReport struct {
	Path     string          `json:"path" yaml:"path"`
	Valid    bool            `json:"valid" yaml:"valid"`
	Records  int             `json:"records" yaml:"records"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
	Warnings []RecordWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// RecordWarning is a range finding for one record
type RecordWarning struct {
	Record  int    `json:"record" yaml:"record"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

func runInputValidation(cmd *cobra.Command, args []string) error {
	path := args[0]

	var files []string
	if path == utils.StdinPath {
		files = []string{path}
	} else {
		collected, err := utils.CollectFiles(path, utils.FileCollectionOptions{
			Recursive:   true,
			Extensions:  utils.RecordExtensions,
			ExcludeTest: true,
		})
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if len(collected) == 0 {
			return fmt.Errorf("no record files (%s) found in %s", strings.Join(utils.RecordExtensions, ", "), path)
		}
		files = collected
	}

	reports := make([]InputValidationReport, 0, len(files))
	for _, file := range files {
		reports = append(reports, validateRecordFile(cmd, file))
	}

	out := cmd.OutOrStdout()
	var err error
	switch getConfig().Output.Format {
	case "json":
		err = outputJSON(out, reports)
	case "yaml", "yml":
		err = outputYAML(out, reports)
	default:
		err = outputInputValidationText(out, reports)
	}
	if err != nil {
		return err
	}

	for _, r := range reports {
		if !r.Valid {
			return errInvalidInput
		}
	}
	return nil
}

func validateRecordFile(cmd *cobra.Command, file string) InputValidationReport {
	report := InputValidationReport{Path: file, Valid: true}

	rc, err := utils.OpenInput(file, cmd.InOrStdin())
	if err != nil {
		report.Valid = false
		report.Error = err.Error()
		return report
	}
	defer rc.Close()

	records, err := loadRecordFile(rc, file)
	if err != nil {
		report.Valid = false
		report.Error = err.Error()
		return report
	}

	report.Records = len(records)
	for i, rec := range records {
		for _, w := range input.CheckRanges(rec) {
			report.Warnings = append(report.Warnings, RecordWarning{Record: i + 1, Field: w.Field, Message: w.Message})
		}
	}
	return report
}

func outputInputValidationText(out io.Writer, reports []InputValidationReport) error {
	invalid := 0
	for _, r := range reports {
		status := "✓"
		if !r.Valid {
			status = "✗"
			invalid++
		}
		fmt.Fprintf(out, "%s %s\n", status, r.Path)
		if r.Error != "" {
			fmt.Fprintf(out, "  Error: %s\n", r.Error)
			continue
		}
		fmt.Fprintf(out, "  Records: %d\n", r.Records)
		if len(r.Warnings) > 0 {
			fmt.Fprintf(out, "  Range warnings: %d\n", len(r.Warnings))
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "    - record %d, %s: %s\n", w.Record, w.Field, w.Message)
			}
		}
	}

	fmt.Fprintf(out, "\n%d file(s) checked, %d invalid\n", len(reports), invalid)
	return nil
}
