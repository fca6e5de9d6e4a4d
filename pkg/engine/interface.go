package engine

import (
	"context"

	"github.com/google/cel-go/cel"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// EvaluationEngine defines the interface for evaluating scoring rules
type EvaluationEngine interface {
	// EvaluateRule evaluates a single rule against a health input
	EvaluateRule(ctx context.Context, rule *models.PredictorRule, input models.HealthInput) (*models.RuleEvaluation, error)

	// EvaluateRules evaluates rules in slice order against a health input
	EvaluateRules(ctx context.Context, rules []*models.PredictorRule, input models.HealthInput) ([]models.RuleEvaluation, error)

	// CompileRule pre-compiles every tier expression of a rule
	CompileRule(ctx context.Context, rule *models.PredictorRule) error

	// ValidateCELExpression validates a CEL expression without executing it
	ValidateCELExpression(ctx context.Context, expression string) error
}

// RuleCompiler defines the interface for caching compiled tier programs
type RuleCompiler interface {
	// Compile stores the compiled tier programs of a rule
	Compile(ctx context.Context, ruleID string, programs []cel.Program) error

	// GetCompiled retrieves the compiled tier programs of a rule
	GetCompiled(ctx context.Context, ruleID string) ([]cel.Program, bool)

	// ClearCache clears the compilation cache
	ClearCache(ctx context.Context)

	// GetCacheStats returns cache statistics
	GetCacheStats(ctx context.Context) map[string]interface{}
}

var (
	_ EvaluationEngine = (*CELEngine)(nil)
	_ RuleCompiler     = (*ruleCompiler)(nil)
)
