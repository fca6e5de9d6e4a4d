package validation

import (
	"strings"
	"testing"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

func validRule() *models.PredictorRule {
	return &models.PredictorRule{
		APIVersion: "rules.predictor.dev/v1alpha1",
		Kind:       "PredictorRule",
		Metadata: models.RuleMetadata{
			Name: "predictor-glucose-001",
			Labels: map[string]string{
				"rules.predictor.dev/category": "metabolic",
			},
			Annotations: map[string]string{
				"rules.predictor.dev/title":   "Plasma glucose",
				"rules.predictor.dev/version": "1.0.0",
			},
		},
		Spec: models.RuleSpec{
			Order: 1,
			Field: "glucose",
			Tiers: []models.RuleTier{
				{CEL: "input.glucose >= 140.0", Points: 30, Factor: "Elevated glucose levels (≥140 mg/dL)"},
				{CEL: "input.glucose >= 110.0", Points: 15, Factor: "Moderately high glucose levels"},
			},
		},
	}
}

func TestValidatePredictorRule(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *models.PredictorRule)
		wantValid  bool
		wantErrors []string
	}{
		{
			name:      "valid rule",
			mutate:    func(r *models.PredictorRule) {},
			wantValid: true,
		},
		{
			name:       "invalid apiVersion",
			mutate:     func(r *models.PredictorRule) { r.APIVersion = "v1" },
			wantValid:  false,
			wantErrors: []string{"apiVersion: must be 'rules.predictor.dev/v1alpha1'"},
		},
		{
			name:       "invalid kind",
			mutate:     func(r *models.PredictorRule) { r.Kind = "Rule" },
			wantValid:  false,
			wantErrors: []string{"kind: must be 'PredictorRule'"},
		},
		{
			name:       "missing name",
			mutate:     func(r *models.PredictorRule) { r.Metadata.Name = "" },
			wantValid:  false,
			wantErrors: []string{"metadata.name: name is required"},
		},
		{
			name:       "invalid name format",
			mutate:     func(r *models.PredictorRule) { r.Metadata.Name = "glucose" },
			wantValid:  false,
			wantErrors: []string{"metadata.name: name must match pattern"},
		},
		{
			name:       "missing annotations",
			mutate:     func(r *models.PredictorRule) { r.Metadata.Annotations = nil },
			wantValid:  false,
			wantErrors: []string{"metadata.annotations: annotations are required"},
		},
		{
			name: "missing title and version",
			mutate: func(r *models.PredictorRule) {
				r.Metadata.Annotations = map[string]string{"rules.predictor.dev/description": "x"}
			},
			wantValid: false,
			wantErrors: []string{
				"title annotation is required",
				"version annotation is required",
			},
		},
		{
			name:       "zero order",
			mutate:     func(r *models.PredictorRule) { r.Spec.Order = 0 },
			wantValid:  false,
			wantErrors: []string{"spec.order: order must be a positive integer"},
		},
		{
			name:       "unknown field",
			mutate:     func(r *models.PredictorRule) { r.Spec.Field = "cholesterol" },
			wantValid:  false,
			wantErrors: []string{"spec.field: field must be one of"},
		},
		{
			name:       "no tiers",
			mutate:     func(r *models.PredictorRule) { r.Spec.Tiers = nil },
			wantValid:  false,
			wantErrors: []string{"spec.tiers: at least one tier must be specified"},
		},
		{
			name:       "syntax error in tier",
			mutate:     func(r *models.PredictorRule) { r.Spec.Tiers[1].CEL = "input.glucose >=" },
			wantValid:  false,
			wantErrors: []string{"spec.tiers[1].cel: invalid CEL expression"},
		},
		{
			name:       "non-boolean tier",
			mutate:     func(r *models.PredictorRule) { r.Spec.Tiers[0].CEL = "1 + 2" },
			wantValid:  false,
			wantErrors: []string{"spec.tiers[0].cel: invalid CEL expression"},
		},
		{
			name: "negative points and empty factor",
			mutate: func(r *models.PredictorRule) {
				r.Spec.Tiers[0].Points = -1
				r.Spec.Tiers[0].Factor = " "
			},
			wantValid: false,
			wantErrors: []string{
				"spec.tiers[0].points: points must not be negative",
				"spec.tiers[0].factor: factor text is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(rule)

			result := ValidatePredictorRule(rule)
			if result.Valid != tt.wantValid {
				t.Errorf("ValidatePredictorRule() valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}

			if len(result.Errors) != len(tt.wantErrors) {
				t.Fatalf("ValidatePredictorRule() errors count = %d, want %d: %v", len(result.Errors), len(tt.wantErrors), result.Errors)
			}
			for i, wantError := range tt.wantErrors {
				if got := result.Errors[i].Error(); !strings.Contains(got, wantError) {
					t.Errorf("ValidatePredictorRule() error[%d] = %v, want to contain %v", i, got, wantError)
				}
			}
		})
	}
}

func TestValidateRuleSet(t *testing.T) {
	a := validRule()
	b := validRule()
	b.Metadata.Name = "predictor-bmi-002"
	b.Spec.Order = 2

	if result := ValidateRuleSet([]*models.PredictorRule{a, b}); !result.Valid {
		t.Fatalf("ValidateRuleSet() unexpected errors: %v", result.Errors)
	}

	dup := validRule()
	result := ValidateRuleSet([]*models.PredictorRule{a, b, dup})
	if result.Valid {
		t.Fatal("ValidateRuleSet() expected duplicate name and order to be rejected")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("ValidateRuleSet() errors count = %d, want 2: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "duplicate rule name") {
		t.Errorf("unexpected first error: %v", result.Errors[0])
	}
	if !strings.Contains(result.Errors[1].Message, "order 1 is already used") {
		t.Errorf("unexpected second error: %v", result.Errors[1])
	}
}

func TestValidateCELExpression(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{name: "threshold", expression: "input.glucose >= 140.0", wantErr: false},
		{name: "int field against int literal", expression: "input.pregnancies >= 4", wantErr: false},
		{name: "disjunction", expression: "input.insulin >= 200.0 || input.insulin <= 30.0", wantErr: false},
		{name: "math extension", expression: "math.least(1, 2) == 1", wantErr: false},
		{name: "empty", expression: "", wantErr: true},
		{name: "syntax error", expression: "input.glucose >=", wantErr: true},
		{name: "non-boolean", expression: "'high'", wantErr: true},
		{name: "undeclared variable", expression: "object.glucose > 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCELExpression(tt.expression)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateCELExpression(%q) error = %v, wantErr %v", tt.expression, err, tt.wantErr)
			}
		})
	}
}

func TestIsValidRuleName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"predictor-glucose-001", true},
		{"predictor-blood-pressure-004", true},
		{"predictor-glucose-1", false},
		{"risk-glucose-001", false},
		{"predictor-Glucose-001", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidRuleName(tt.name); got != tt.want {
				t.Errorf("isValidRuleName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
