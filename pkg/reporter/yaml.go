package reporter

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// YAMLReporter implements the Reporter interface for YAML output
type YAMLReporter struct{}

// NewYAMLReporter creates a new YAML reporter
func NewYAMLReporter() Reporter {
	return &YAMLReporter{}
}

// GetFormat returns the format name
func (r *YAMLReporter) GetFormat() string {
	return "yaml"
}

// GetFileExtension returns the file extension
func (r *YAMLReporter) GetFileExtension() string {
	return ".yaml"
}

// GenerateReport generates a YAML report
func (r *YAMLReporter) GenerateReport(ctx context.Context, report *models.AssessmentReport) ([]byte, error) {
	data, err := yaml.Marshal(buildDocumentReport(report))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}

	return data, nil
}

// WriteReport writes the YAML report to the writer
func (r *YAMLReporter) WriteReport(ctx context.Context, report *models.AssessmentReport, writer io.Writer) error {
	data, err := r.GenerateReport(ctx, report)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write YAML report: %w", err)
	}

	return nil
}
