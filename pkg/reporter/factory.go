package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReporterType represents the type of reporter
type ReporterType string

const (
	ReporterTypeTable ReporterType = "table"
	ReporterTypeJSON  ReporterType = "json"
	ReporterTypeYAML  ReporterType = "yaml"
)

// Factory implements the ReporterFactory interface
type Factory struct{}

// NewFactory creates a new reporter factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateReporter creates a reporter based on the specified type
func (f *Factory) CreateReporter(format string) (Reporter, error) {
	return f.CreateReporterWithOptions(&ReportOptions{Format: format})
}

// CreateReporterWithOptions creates a reporter with specific options
func (f *Factory) CreateReporterWithOptions(options *ReportOptions) (Reporter, error) {
	if err := ValidateReportOptions(options); err != nil {
		return nil, err
	}

	reporterType, err := ParseReporterType(options.Format)
	if err != nil {
		return nil, err
	}

	switch reporterType {
	case ReporterTypeTable:
		table := NewTableReporter(options.NoColor, options.Verbose)
		table.SetQuiet(options.Quiet)
		table.SetSummaryOnly(options.SummaryOnly)
		return table, nil
	case ReporterTypeJSON:
		return NewJSONReporter(), nil
	case ReporterTypeYAML:
		return NewYAMLReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported reporter type: %s", reporterType)
	}
}

// GetSupportedFormats returns a list of supported reporter formats
func (f *Factory) GetSupportedFormats() []string {
	return []string{
		string(ReporterTypeTable),
		string(ReporterTypeJSON),
		string(ReporterTypeYAML),
	}
}

// ParseReporterType parses a string into a ReporterType. An empty string means table.
func ParseReporterType(s string) (ReporterType, error) {
	switch strings.ToLower(s) {
	case "", "table", "console":
		return ReporterTypeTable, nil
	case "json":
		return ReporterTypeJSON, nil
	case "yaml", "yml":
		return ReporterTypeYAML, nil
	default:
		return "", fmt.Errorf("unsupported reporter type: %s", s)
	}
}

// ValidateReportOptions validates the report options
func ValidateReportOptions(options *ReportOptions) error {
	if options == nil {
		return fmt.Errorf("report options cannot be nil")
	}

	if options.OutputFile != "" {
		dir := filepath.Dir(options.OutputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

// GetRecommendedFileExtension returns the recommended file extension for a reporter type
func GetRecommendedFileExtension(reporterType ReporterType) string {
	switch reporterType {
	case ReporterTypeJSON:
		return ".json"
	case ReporterTypeYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// SuggestOutputFileName suggests an output filename based on the reporter type and input name
func SuggestOutputFileName(reporterType ReporterType, source string) string {
	base := "diabetes-risk-report"
	if source != "" && source != "-" {
		name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		name = strings.NewReplacer(":", "-", " ", "-").Replace(name)
		base = fmt.Sprintf("diabetes-risk-%s", name)
	}

	return base + GetRecommendedFileExtension(reporterType)
}
