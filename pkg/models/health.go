package models

import (
	"time"
)

// HealthInput is one submission of the eight health measurements.
// Values are scored as-is; nothing here is validated or clamped.
type HealthInput struct {
	Pregnancies      int     `yaml:"pregnancies" json:"pregnancies"`
	Glucose          float64 `yaml:"glucose" json:"glucose"`
	BloodPressure    float64 `yaml:"bloodPressure" json:"bloodPressure"`
	SkinThickness    float64 `yaml:"skinThickness" json:"skinThickness"`
	Insulin          float64 `yaml:"insulin" json:"insulin"`
	BMI              float64 `yaml:"bmi" json:"bmi"`
	DiabetesPedigree float64 `yaml:"diabetesPedigree" json:"diabetesPedigree"`
	Age              float64 `yaml:"age" json:"age"`
}

// HealthFieldKeys lists the json keys of HealthInput in form order
var HealthFieldKeys = []string{
	"pregnancies",
	"glucose",
	"bloodPressure",
	"skinThickness",
	"insulin",
	"bmi",
	"diabetesPedigree",
	"age",
}

// IsHealthField reports whether key names a HealthInput field
func IsHealthField(key string) bool {
	for _, k := range HealthFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Value returns the numeric value of the field named by its json key
func (h HealthInput) Value(key string) (float64, bool) {
	switch key {
	case "pregnancies":
		return float64(h.Pregnancies), true
	case "glucose":
		return h.Glucose, true
	case "bloodPressure":
		return h.BloodPressure, true
	case "skinThickness":
		return h.SkinThickness, true
	case "insulin":
		return h.Insulin, true
	case "bmi":
		return h.BMI, true
	case "diabetesPedigree":
		return h.DiabetesPedigree, true
	case "age":
		return h.Age, true
	default:
		return 0, false
	}
}

// Activation returns the input as the map exposed to rule expressions under the
// name "input". Keys match the JSON field names.
func (h HealthInput) Activation() map[string]interface{} {
	return map[string]interface{}{
		"pregnancies":      int64(h.Pregnancies),
		"glucose":          h.Glucose,
		"bloodPressure":    h.BloodPressure,
		"skinThickness":    h.SkinThickness,
		"insulin":          h.Insulin,
		"bmi":              h.BMI,
		"diabetesPedigree": h.DiabetesPedigree,
		"age":              h.Age,
	}
}

// RiskLevel is the discrete risk tier of an assessment
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid checks if the risk level is one of the three tiers
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	default:
		return false
	}
}

// Rank orders tiers for threshold comparisons (low < moderate < high).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// ParseRiskLevel parses a tier name, case-sensitively lower-case
func ParseRiskLevel(s string) (RiskLevel, bool) {
	level := RiskLevel(s)
	return level, level.IsValid()
}

// RiskAssessment is the scorer output. It is never mutated after it is returned.
type RiskAssessment struct {
	Risk           RiskLevel `yaml:"risk" json:"risk"`
	Probability    int       `yaml:"probability" json:"probability"`
	Confidence     int       `yaml:"confidence" json:"confidence"`
	Factors        []string  `yaml:"factors" json:"factors"`
	Recommendation string    `yaml:"recommendation" json:"recommendation"`
	Score          int       `yaml:"score" json:"score"`
}

// RuleEvaluation records how one rule fared against an input. Tier is the
// zero-based index of the matching tier and -1 when nothing matched. Errors
// holds tier expressions that failed to evaluate; such tiers count as not matched.
type RuleEvaluation struct {
	RuleID  string   `yaml:"ruleId" json:"ruleId"`
	Matched bool     `yaml:"matched" json:"matched"`
	Tier    int      `yaml:"tier" json:"tier"`
	Points  int      `yaml:"points" json:"points"`
	Factor  string   `yaml:"factor,omitempty" json:"factor,omitempty"`
	Errors  []string `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// AssessedRecord pairs an input with the assessment produced for it
type AssessedRecord struct {
	Index      int            `yaml:"index" json:"index"`
	Input      HealthInput    `yaml:"input" json:"input"`
	Assessment RiskAssessment `yaml:"assessment" json:"assessment"`
}

// BatchSummary aggregates a batch of assessments
type BatchSummary struct {
	Total           int               `yaml:"total" json:"total"`
	RiskBreakdown   map[RiskLevel]int `yaml:"riskBreakdown" json:"riskBreakdown"`
	FactorFrequency map[string]int    `yaml:"factorFrequency" json:"factorFrequency"`
	MeanScore       float64           `yaml:"meanScore" json:"meanScore"`
	HighestRisk     RiskLevel         `yaml:"highestRisk" json:"highestRisk"`
}

// AssessmentReport is what the reporters and the HTTP batch endpoint render
type AssessmentReport struct {
	ID         string           `yaml:"id" json:"id"`
	Timestamp  time.Time        `yaml:"timestamp" json:"timestamp"`
	Duration   time.Duration    `yaml:"duration" json:"duration"`
	Records    []AssessedRecord `yaml:"records" json:"records"`
	Summary    *BatchSummary    `yaml:"summary,omitempty" json:"summary,omitempty"`
	Disclaimer string           `yaml:"disclaimer" json:"disclaimer"`
}
