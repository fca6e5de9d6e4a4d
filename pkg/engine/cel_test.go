package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

func glucoseRule() *models.PredictorRule {
	return &models.PredictorRule{
		APIVersion: models.RuleAPIVersion,
		Kind:       models.RuleKind,
		Metadata:   models.RuleMetadata{Name: "predictor-glucose-001"},
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

func TestEvaluateRuleTiers(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	tests := []struct {
		name    string
		glucose float64
		matched bool
		tier    int
		points  int
	}{
		{"below every tier", 95, false, -1, 0},
		{"lower tier boundary", 110, true, 1, 15},
		{"just under upper tier", 139.9, true, 1, 15},
		{"upper tier boundary wins", 140, true, 0, 30},
		{"far above", 400, true, 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.EvaluateRule(context.Background(), glucoseRule(), models.HealthInput{Glucose: tt.glucose})
			require.NoError(t, err)
			assert.Equal(t, "predictor-glucose-001", result.RuleID)
			assert.Equal(t, tt.matched, result.Matched)
			assert.Equal(t, tt.tier, result.Tier)
			assert.Equal(t, tt.points, result.Points)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestEvaluateRuleIntegerField(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	rule := &models.PredictorRule{
		Metadata: models.RuleMetadata{Name: "predictor-pregnancies-006"},
		Spec: models.RuleSpec{
			Field: "pregnancies",
			Tiers: []models.RuleTier{{CEL: "input.pregnancies >= 4", Points: 8, Factor: "Multiple pregnancies (≥4)"}},
		},
	}

	result, err := eng.EvaluateRule(context.Background(), rule, models.HealthInput{Pregnancies: 4})
	require.NoError(t, err)
	assert.True(t, result.Matched)

	result, err = eng.EvaluateRule(context.Background(), rule, models.HealthInput{Pregnancies: 3})
	require.NoError(t, err)
	assert.False(t, result.Matched)
}

func TestEvaluateRuleRuntimeErrorSkipsTier(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	rule := &models.PredictorRule{
		Metadata: models.RuleMetadata{Name: "predictor-custom-001"},
		Spec: models.RuleSpec{
			Field: "glucose",
			Tiers: []models.RuleTier{
				{CEL: "input.missing > 1.0", Points: 50, Factor: "never"},
				{CEL: "input.glucose >= 1.0", Points: 5, Factor: "fallback tier"},
			},
		},
	}

	result, err := eng.EvaluateRule(context.Background(), rule, models.HealthInput{Glucose: 10})
	require.NoError(t, err)
	assert.True(t, result.Matched)
	assert.Equal(t, 1, result.Tier)
	assert.Equal(t, 5, result.Points)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "tier 0")
}

func TestCompileRuleRejectsInvalidExpression(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	rule := glucoseRule()
	rule.Spec.Tiers[1].CEL = "input.glucose >="

	err = eng.CompileRule(context.Background(), rule)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tier 1")

	_, err = eng.EvaluateRule(context.Background(), rule, models.HealthInput{})
	assert.Error(t, err)
}

func TestEvaluateRulesPreservesOrder(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	bmi := &models.PredictorRule{
		Metadata: models.RuleMetadata{Name: "predictor-bmi-002"},
		Spec: models.RuleSpec{
			Field: "bmi",
			Tiers: []models.RuleTier{{CEL: "input.bmi >= 30.0", Points: 20, Factor: "Obesity (BMI ≥30)"}},
		},
	}

	results, err := eng.EvaluateRules(context.Background(), []*models.PredictorRule{bmi, glucoseRule()}, models.HealthInput{Glucose: 150, BMI: 31})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "predictor-bmi-002", results[0].RuleID)
	assert.Equal(t, "predictor-glucose-001", results[1].RuleID)
}

func TestEvaluateRulesHonoursCancellation(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = eng.EvaluateRules(ctx, []*models.PredictorRule{glucoseRule()}, models.HealthInput{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRuleCompilerCache(t *testing.T) {
	eng, err := NewCELEngine()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, eng.CompileRule(ctx, glucoseRule()))
	assert.Equal(t, 1, eng.compiler.GetCacheStats(ctx)["size"])

	eng.compiler.ClearCache(ctx)
	assert.Equal(t, 0, eng.compiler.GetCacheStats(ctx)["size"])
}
