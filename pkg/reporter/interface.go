package reporter

import (
	"context"
	"io"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// Reporter defines the interface for rendering assessment reports
type Reporter interface {
	// GenerateReport renders a report
	GenerateReport(ctx context.Context, report *models.AssessmentReport) ([]byte, error)

	// WriteReport writes a rendered report to the specified writer
	WriteReport(ctx context.Context, report *models.AssessmentReport, writer io.Writer) error

	// GetFormat returns the format name of this reporter
	GetFormat() string

	// GetFileExtension returns the recommended file extension
	GetFileExtension() string
}

// ReporterFactory creates reporters for different output formats
type ReporterFactory interface {
	// CreateReporter creates a reporter for the specified format
	CreateReporter(format string) (Reporter, error)

	// GetSupportedFormats returns a list of supported output formats
	GetSupportedFormats() []string
}

// ReportOptions defines options for report generation
type ReportOptions struct {
	// Format specifies the output format (table, json, yaml)
	Format string

	// OutputFile specifies the output file path
	OutputFile string

	// NoColor disables colored output for table format
	NoColor bool

	// Verbose includes the submitted values in table output
	Verbose bool

	// Quiet prints one line per record in table output
	Quiet bool

	// SummaryOnly prints only the batch summary in table output
	SummaryOnly bool
}
