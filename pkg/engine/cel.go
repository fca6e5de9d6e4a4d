package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// InputVariable is the name under which rule expressions see the health input
const InputVariable = "input"

// CELEngine implements EvaluationEngine using Google's CEL (Common Expression Language)
type CELEngine struct {
	env      *cel.Env
	compiler RuleCompiler
}

// NewEnv creates the CEL environment shared by the engine, the rule validator
// and the rule test runner.
func NewEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		// The eight measurements keyed by their json names
		cel.Variable(InputVariable, cel.MapType(cel.StringType, cel.DynType)),

		ext.Strings(),
		ext.Math(),

		// Allows "input.pregnancies >= 4.0" as well as "input.glucose >= 140"
		cel.CrossTypeNumericComparisons(true),

		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.DefaultUTCTimeZone(true),
		cel.OptionalTypes(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewCELEngine creates a new CEL evaluation engine
func NewCELEngine() (*CELEngine, error) {
	env, err := NewEnv()
	if err != nil {
		return nil, err
	}

	return &CELEngine{
		env:      env,
		compiler: NewRuleCompiler(),
	}, nil
}

// EvaluateRule evaluates the tiers of a rule in order and stops at the first
// tier whose expression is true.
func (e *CELEngine) EvaluateRule(ctx context.Context, rule *models.PredictorRule, input models.HealthInput) (*models.RuleEvaluation, error) {
	result := &models.RuleEvaluation{
		RuleID: rule.GetID(),
		Tier:   -1,
	}

	programs, exists := e.compiler.GetCompiled(ctx, rule.GetID())
	if !exists {
		if err := e.CompileRule(ctx, rule); err != nil {
			return nil, fmt.Errorf("failed to compile rule: %w", err)
		}
		programs, exists = e.compiler.GetCompiled(ctx, rule.GetID())
		if !exists {
			return nil, fmt.Errorf("failed to retrieve compiled programs for rule %s after compilation", rule.GetID())
		}
	}
	if len(programs) != len(rule.Spec.Tiers) {
		return nil, fmt.Errorf("compiled programs for rule %s do not match its %d tiers", rule.GetID(), len(rule.Spec.Tiers))
	}

	vars := map[string]interface{}{
		InputVariable: input.Activation(),
	}

	for i, program := range programs {
		eval, _, err := program.Eval(vars)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("tier %d: CEL evaluation error: %v", i, err))
			continue
		}

		matched, ok := eval.Value().(bool)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("tier %d: CEL expression must return a boolean value, got %T", i, eval.Value()))
			continue
		}
		if !matched {
			continue
		}

		tier := rule.Spec.Tiers[i]
		result.Matched = true
		result.Tier = i
		result.Points = tier.Points
		result.Factor = tier.Factor
		break
	}

	return result, nil
}

// EvaluateRules evaluates rules in the order given
func (e *CELEngine) EvaluateRules(ctx context.Context, rules []*models.PredictorRule, input models.HealthInput) ([]models.RuleEvaluation, error) {
	results := make([]models.RuleEvaluation, 0, len(rules))

	for _, rule := range rules {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := e.EvaluateRule(ctx, rule, input)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate rule %s: %w", rule.GetID(), err)
		}
		results = append(results, *result)
	}

	return results, nil
}

// CompileRule pre-compiles every tier of a rule. Programs are cached by rule ID.
func (e *CELEngine) CompileRule(ctx context.Context, rule *models.PredictorRule) error {
	if _, exists := e.compiler.GetCompiled(ctx, rule.GetID()); exists {
		return nil
	}
	if len(rule.Spec.Tiers) == 0 {
		return fmt.Errorf("rule %s has no tiers", rule.GetID())
	}

	programs := make([]cel.Program, 0, len(rule.Spec.Tiers))
	for i, tier := range rule.Spec.Tiers {
		program, err := e.compileExpression(tier.CEL)
		if err != nil {
			return fmt.Errorf("tier %d: %w", i, err)
		}
		programs = append(programs, program)
	}

	return e.compiler.Compile(ctx, rule.GetID(), programs)
}

func (e *CELEngine) compileExpression(expression string) (cel.Program, error) {
	ast, issues := e.env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to parse CEL expression: %w", issues.Err())
	}

	checked, issues := e.env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to check CEL expression: %w", issues.Err())
	}

	program, err := e.env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("failed to compile CEL expression: %w", err)
	}

	return program, nil
}

// ValidateCELExpression validates a CEL expression without caching it
func (e *CELEngine) ValidateCELExpression(ctx context.Context, expression string) error {
	return ValidateExpression(e.env, expression)
}

// ValidateExpression parses, type-checks and plans an expression in env.
// Tier conditions must evaluate to bool.
func ValidateExpression(env *cel.Env, expression string) error {
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("CEL expression cannot be empty")
	}

	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("syntax error in CEL expression: %w", issues.Err())
	}

	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("type checking failed for CEL expression: %w", issues.Err())
	}

	// dyn is accepted because map lookups on "input" are dynamically typed
	out := checked.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return fmt.Errorf("CEL expression must return boolean type, got %s", out)
	}

	if _, err := env.Program(checked); err != nil {
		return fmt.Errorf("compilation failed for CEL expression: %w", err)
	}

	return nil
}

// RuleCompiler implementation
type ruleCompiler struct {
	cache map[string][]cel.Program
	mu    sync.RWMutex
}

// NewRuleCompiler creates a new rule compiler
func NewRuleCompiler() RuleCompiler {
	return &ruleCompiler{
		cache: make(map[string][]cel.Program),
	}
}

// Compile caches the compiled tier programs of a rule
func (c *ruleCompiler) Compile(ctx context.Context, ruleID string, programs []cel.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[ruleID] = programs
	return nil
}

// GetCompiled retrieves the compiled tier programs of a rule
func (c *ruleCompiler) GetCompiled(ctx context.Context, ruleID string) ([]cel.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	programs, exists := c.cache[ruleID]
	return programs, exists
}

// ClearCache clears the compilation cache
func (c *ruleCompiler) ClearCache(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]cel.Program)
}

// GetCacheStats returns cache statistics
func (c *ruleCompiler) GetCacheStats(ctx context.Context) map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]interface{}{
		"size": len(c.cache),
	}
}
