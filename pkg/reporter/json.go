package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/version"
)

// DocumentReport is the structure shared by the JSON and YAML outputs
type DocumentReport struct {
	Metadata   DocumentMetadata     `json:"metadata" yaml:"metadata"`
	Summary    *models.BatchSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Results    []DocumentResult     `json:"results" yaml:"results"`
	Disclaimer string               `json:"disclaimer" yaml:"disclaimer"`
}

// DocumentMetadata describes the run that produced the report
type DocumentMetadata struct {
	ID        string    `json:"id" yaml:"id"`
	Tool      string    `json:"tool" yaml:"tool"`
	Version   string    `json:"version" yaml:"version"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Duration  string    `json:"duration" yaml:"duration"`
}

// DocumentResult is one assessed record
type DocumentResult struct {
	Index          int                `json:"index" yaml:"index"`
	Input          models.HealthInput `json:"input" yaml:"input"`
	Risk           models.RiskLevel   `json:"risk" yaml:"risk"`
	Probability    int                `json:"probability" yaml:"probability"`
	Confidence     int                `json:"confidence" yaml:"confidence"`
	Score          int                `json:"score" yaml:"score"`
	Factors        []string           `json:"factors" yaml:"factors"`
	Recommendation string             `json:"recommendation" yaml:"recommendation"`
}

func buildDocumentReport(report *models.AssessmentReport) DocumentReport {
	doc := DocumentReport{
		Metadata: DocumentMetadata{
			ID:        report.ID,
			Tool:      version.Name,
			Version:   version.GetVersion(),
			Timestamp: report.Timestamp,
			Duration:  report.Duration.String(),
		},
		Summary:    report.Summary,
		Results:    make([]DocumentResult, 0, len(report.Records)),
		Disclaimer: report.Disclaimer,
	}

	for _, rec := range report.Records {
		a := rec.Assessment
		doc.Results = append(doc.Results, DocumentResult{
			Index:          rec.Index,
			Input:          rec.Input,
			Risk:           a.Risk,
			Probability:    a.Probability,
			Confidence:     a.Confidence,
			Score:          a.Score,
			Factors:        a.Factors,
			Recommendation: a.Recommendation,
		})
	}

	return doc
}

// JSONReporter implements the Reporter interface for JSON output
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() Reporter {
	return &JSONReporter{}
}

// GenerateReport generates a JSON report
func (r *JSONReporter) GenerateReport(ctx context.Context, report *models.AssessmentReport) ([]byte, error) {
	data, err := json.MarshalIndent(buildDocumentReport(report), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}

	return append(data, '\n'), nil
}

// WriteReport writes the JSON report to the writer
func (r *JSONReporter) WriteReport(ctx context.Context, report *models.AssessmentReport, writer io.Writer) error {
	data, err := r.GenerateReport(ctx, report)
	if err != nil {
		return err
	}

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	return nil
}

// GetFormat returns the format name
func (r *JSONReporter) GetFormat() string {
	return "json"
}

// GetFileExtension returns the file extension
func (r *JSONReporter) GetFileExtension() string {
	return ".json"
}
