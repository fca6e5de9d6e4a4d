package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/engine"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var ruleNamePattern = regexp.MustCompile(`^predictor-[a-z]+(-[a-z]+)*-\d{3}$`)

var (
	envOnce sync.Once
	celEnv  *cel.Env
	envErr  error
)

// ValidatePredictorRule validates a PredictorRule struct
func ValidatePredictorRule(rule *models.PredictorRule) ValidationResult {
	var errors []ValidationError

	if rule.APIVersion != models.RuleAPIVersion {
		errors = append(errors, ValidationError{
			Field:   "apiVersion",
			Message: fmt.Sprintf("must be '%s'", models.RuleAPIVersion),
		})
	}

	if rule.Kind != models.RuleKind {
		errors = append(errors, ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("must be '%s'", models.RuleKind),
		})
	}

	if rule.Metadata.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "metadata.name",
			Message: "name is required",
		})
	} else if !isValidRuleName(rule.Metadata.Name) {
		errors = append(errors, ValidationError{
			Field:   "metadata.name",
			Message: "name must match pattern: predictor-[field]-[number] (e.g., predictor-glucose-001)",
		})
	}

	if rule.Metadata.Annotations == nil {
		errors = append(errors, ValidationError{
			Field:   "metadata.annotations",
			Message: "annotations are required",
		})
	} else {
		if rule.GetTitle() == "" {
			errors = append(errors, ValidationError{
				Field:   "metadata.annotations['rules.predictor.dev/title']",
				Message: "title annotation is required",
			})
		}
		if rule.GetVersion() == "" {
			errors = append(errors, ValidationError{
				Field:   "metadata.annotations['rules.predictor.dev/version']",
				Message: "version annotation is required",
			})
		}
	}

	if rule.Spec.Order < 1 {
		errors = append(errors, ValidationError{
			Field:   "spec.order",
			Message: "order must be a positive integer",
		})
	}

	if rule.Spec.Field == "" {
		errors = append(errors, ValidationError{
			Field:   "spec.field",
			Message: "field is required",
		})
	} else if !models.IsHealthField(rule.Spec.Field) {
		errors = append(errors, ValidationError{
			Field:   "spec.field",
			Message: fmt.Sprintf("field must be one of: %s", strings.Join(models.HealthFieldKeys, ", ")),
		})
	}

	if len(rule.Spec.Tiers) == 0 {
		errors = append(errors, ValidationError{
			Field:   "spec.tiers",
			Message: "at least one tier must be specified",
		})
	}

	for i, tier := range rule.Spec.Tiers {
		prefix := fmt.Sprintf("spec.tiers[%d]", i)

		if tier.CEL == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".cel",
				Message: "CEL expression is required",
			})
		} else if err := validateCELExpression(tier.CEL); err != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + ".cel",
				Message: fmt.Sprintf("invalid CEL expression: %v", err),
			})
		}

		if tier.Points < 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".points",
				Message: "points must not be negative",
			})
		}

		if strings.TrimSpace(tier.Factor) == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + ".factor",
				Message: "factor text is required",
			})
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ValidateRuleSet checks properties that only hold across a whole table:
// unique names and unique evaluation order.
func ValidateRuleSet(rules []*models.PredictorRule) ValidationResult {
	var errors []ValidationError

	names := make(map[string]int)
	orders := make(map[int]string)
	for i, rule := range rules {
		if prev, ok := names[rule.GetID()]; ok {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("rules[%d].metadata.name", i),
				Message: fmt.Sprintf("duplicate rule name '%s' (first seen at rules[%d])", rule.GetID(), prev),
			})
		} else {
			names[rule.GetID()] = i
		}

		if other, ok := orders[rule.Spec.Order]; ok {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("rules[%d].spec.order", i),
				Message: fmt.Sprintf("order %d is already used by '%s'", rule.Spec.Order, other),
			})
		} else {
			orders[rule.Spec.Order] = rule.GetID()
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// isValidRuleName validates rule name format: predictor-[field]-[number]
func isValidRuleName(name string) bool {
	return ruleNamePattern.MatchString(name)
}

// validateCELExpression validates a tier condition in the scoring environment
func validateCELExpression(expression string) error {
	envOnce.Do(func() {
		celEnv, envErr = engine.NewEnv()
	})
	if envErr != nil {
		return envErr
	}
	return engine.ValidateExpression(celEnv, expression)
}
