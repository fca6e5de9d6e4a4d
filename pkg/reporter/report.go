package reporter

import (
	"time"

	"github.com/google/uuid"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
)

// NewAssessmentReport wraps assessed records for rendering. A summary is
// attached when there is more than one record.
func NewAssessmentReport(records []models.AssessedRecord, duration time.Duration) *models.AssessmentReport {
	report := &models.AssessmentReport{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Duration:   duration,
		Records:    records,
		Disclaimer: scorer.Disclaimer,
	}
	if len(records) > 1 {
		report.Summary = scorer.Summarize(records)
	}
	return report
}

// SingleReport wraps one assessment
func SingleReport(input models.HealthInput, assessment models.RiskAssessment, duration time.Duration) *models.AssessmentReport {
	return NewAssessmentReport([]models.AssessedRecord{{Input: input, Assessment: assessment}}, duration)
}
