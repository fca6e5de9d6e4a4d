package testing

import (
	"context"
	"fmt"
	"strings"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/engine"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/validation"
)

// TestResult represents the result of running a single test case
type TestResult struct {
	TestCase     models.RuleTestCase `json:"testCase"`
	Passed       bool                `json:"passed"`
	ActualPoints int                 `json:"actualPoints"`
	ActualFactor string              `json:"actualFactor,omitempty"`
	Error        string              `json:"error,omitempty"`
	Description  string              `json:"description,omitempty"`
}

// TestSuiteResult represents the result of running a complete test suite
type TestSuiteResult struct {
	RuleID      string       `json:"ruleId"`
	RuleName    string       `json:"ruleName"`
	TotalTests  int          `json:"totalTests"`
	PassedTests int          `json:"passedTests"`
	FailedTests int          `json:"failedTests"`
	Results     []TestResult `json:"results"`
	Success     bool         `json:"success"`
}

// RuleTestRunner runs the expectation suites that accompany scoring rules
type RuleTestRunner struct {
	engine *engine.CELEngine
}

// NewRuleTestRunner creates a new test runner backed by the CEL engine
func NewRuleTestRunner() (*RuleTestRunner, error) {
	eng, err := engine.NewCELEngine()
	if err != nil {
		return nil, err
	}

	return &RuleTestRunner{engine: eng}, nil
}

// RunTestSuite runs all test cases for a given rule
func (r *RuleTestRunner) RunTestSuite(ctx context.Context, rule *models.PredictorRule, testSuite models.RuleTestSuite) (*TestSuiteResult, error) {
	result := &TestSuiteResult{
		RuleID:     rule.GetID(),
		RuleName:   rule.GetTitle(),
		TotalTests: len(testSuite),
		Results:    make([]TestResult, 0, len(testSuite)),
		Success:    true,
	}

	if err := r.engine.CompileRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", rule.GetID(), err)
	}

	for _, testCase := range testSuite {
		testResult := r.runSingleTest(ctx, rule, testCase)
		result.Results = append(result.Results, testResult)

		if testResult.Passed {
			result.PassedTests++
		} else {
			result.FailedTests++
			result.Success = false
		}
	}

	return result, nil
}

// runSingleTest scores the case input through one rule and compares the contribution
func (r *RuleTestRunner) runSingleTest(ctx context.Context, rule *models.PredictorRule, testCase models.RuleTestCase) TestResult {
	result := TestResult{
		TestCase: testCase,
	}

	eval, err := r.engine.EvaluateRule(ctx, rule, testCase.Input)
	if err != nil {
		result.Error = fmt.Sprintf("evaluation error: %v", err)
		return result
	}
	if len(eval.Errors) > 0 {
		result.Error = strings.Join(eval.Errors, "; ")
		return result
	}

	result.ActualPoints = eval.Points
	result.ActualFactor = eval.Factor

	result.Passed = eval.Points == testCase.Points && eval.Factor == testCase.Factor

	if !result.Passed {
		result.Description = fmt.Sprintf("expected %d points (%q), got %d points (%q)",
			testCase.Points, testCase.Factor, eval.Points, eval.Factor)
	}

	return result
}

// ValidateRuleWithTests validates a rule and runs its test suite
func (r *RuleTestRunner) ValidateRuleWithTests(ctx context.Context, rule *models.PredictorRule, testSuite models.RuleTestSuite) (*TestSuiteResult, error) {
	validationResult := validation.ValidatePredictorRule(rule)
	if !validationResult.Valid {
		errorMsgs := make([]string, len(validationResult.Errors))
		for i, err := range validationResult.Errors {
			errorMsgs[i] = err.Error()
		}
		return nil, fmt.Errorf("rule validation failed: %s", strings.Join(errorMsgs, "; "))
	}

	return r.RunTestSuite(ctx, rule, testSuite)
}
