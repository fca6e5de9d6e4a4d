package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/parser"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/testing"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/utils"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/validation"
)

// ErrValidationFailed is returned when at least one rule is invalid or a test fails
var ErrValidationFailed = errors.New("rule validation failed")

// ValidationReport represents the result of validating a rule file or directory
type ValidationReport struct {
	Path             string                       `json:"path"`
	Valid            bool                         `json:"valid"`
	RulesCount       int                          `json:"rulesCount"`
	ValidationErrors []validation.ValidationError `json:"validationErrors,omitempty"`
	LoadErrors       []string                     `json:"loadErrors,omitempty"`
	TestResults      []testing.TestSuiteResult    `json:"testResults,omitempty"`
	TestsRun         bool                         `json:"testsRun"`
}

// Options controls a validation run
type Options struct {
	RunTests bool
	Format   string
	Out      io.Writer
	Logger   *slog.Logger
}

func (o *Options) defaults() {
	if o.Format == "" {
		o.Format = "text"
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// RunValidation validates a file or directory, writes the report and returns
// ErrValidationFailed when anything did not pass.
func RunValidation(ctx context.Context, target string, opts Options) error {
	opts.defaults()

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to access path %s: %w", target, err)
	}

	var reports []ValidationReport
	if info.IsDir() {
		report, err := ValidateDirectory(ctx, target, opts)
		if err != nil {
			return err
		}
		reports = append(reports, *report)
	} else {
		report, err := ValidateFile(ctx, target, opts)
		if err != nil {
			return err
		}
		reports = append(reports, *report)
	}

	return OutputResults(opts.Out, reports, opts.Format)
}

// RunFSValidation validates the rule tree rooted at dir inside fsys, such as
// the embedded builtin table.
func RunFSValidation(ctx context.Context, fsys fs.FS, dir string, opts Options) error {
	opts.defaults()

	report, err := ValidateFS(ctx, fsys, dir, opts)
	if err != nil {
		return err
	}

	return OutputResults(opts.Out, []ValidationReport{*report}, opts.Format)
}

// ValidateDirectory validates all rule files in a directory as one report
func ValidateDirectory(ctx context.Context, dirPath string, opts Options) (*ValidationReport, error) {
	opts.defaults()

	loadResult, err := parser.LoadFromDirectory(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load from directory: %w", err)
	}

	report := newReport(dirPath, loadResult, opts.RunTests)

	if opts.RunTests && len(loadResult.Rules) > 0 {
		ruleFiles, err := utils.CollectFiles(dirPath, utils.FileCollectionOptions{
			Recursive:   true,
			Extensions:  []string{".yaml", ".yml"},
			ExcludeTest: true,
		})
		if err != nil {
			opts.Logger.Warn("Failed to collect rule files for testing", "path", dirPath, "error", err)
			return report, nil
		}

		testRunner, err := testing.NewRuleTestRunner()
		if err != nil {
			return nil, err
		}

		for _, ruleFile := range ruleFiles {
			testFilePath := parser.GetRuleTestFile(ruleFile)
			if _, err := os.Stat(testFilePath); err != nil {
				opts.Logger.Debug("No test file found", "rule", ruleFile, "expected", testFilePath)
				continue
			}

			testSuite, err := parser.LoadTestCases(testFilePath)
			if err != nil {
				report.LoadErrors = append(report.LoadErrors, err.Error())
				report.Valid = false
				continue
			}

			fileLoadResult, err := parser.LoadFromFile(ruleFile)
			if err != nil {
				opts.Logger.Warn("Failed to load rules for testing", "path", ruleFile, "error", err)
				continue
			}

			runSuites(ctx, testRunner, report, fileLoadResult.Rules, testSuite, opts.Logger)
		}
	}

	return report, nil
}

// ValidateFile validates a single rule file and, when requested, its -test suite
func ValidateFile(ctx context.Context, filePath string, opts Options) (*ValidationReport, error) {
	opts.defaults()

	result, err := parser.LoadFromFile(filePath)
	if err != nil {
		return &ValidationReport{
			Path:       filePath,
			LoadErrors: []string{err.Error()},
		}, nil
	}

	report := newReport(filePath, result, opts.RunTests)

	if opts.RunTests && len(result.Rules) > 0 {
		testFilePath := parser.GetRuleTestFile(filePath)
		if _, err := os.Stat(testFilePath); err != nil {
			opts.Logger.Info("No test file found", "rule", filePath, "expected", testFilePath)
			return report, nil
		}

		testSuite, err := parser.LoadTestCases(testFilePath)
		if err != nil {
			report.LoadErrors = append(report.LoadErrors, err.Error())
			report.Valid = false
			return report, nil
		}

		testRunner, err := testing.NewRuleTestRunner()
		if err != nil {
			return nil, err
		}
		runSuites(ctx, testRunner, report, result.Rules, testSuite, opts.Logger)
	}

	return report, nil
}

// ValidateFS validates every rule below dir in fsys. Test suites are looked up
// next to each rule file.
func ValidateFS(ctx context.Context, fsys fs.FS, dir string, opts Options) (*ValidationReport, error) {
	opts.defaults()

	report := &ValidationReport{
		Path:     dir,
		Valid:    true,
		TestsRun: opts.RunTests,
	}

	var testRunner *testing.RuleTestRunner
	if opts.RunTests {
		var err error
		if testRunner, err = testing.NewRuleTestRunner(); err != nil {
			return nil, err
		}
	}

	var all []*models.PredictorRule
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := path.Ext(p)
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") || strings.HasSuffix(strings.TrimSuffix(p, ext), "-test") {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		loaded, err := parser.LoadFromBytes(data)
		if err != nil {
			return err
		}
		for _, e := range loaded.Errors {
			report.LoadErrors = append(report.LoadErrors, fmt.Sprintf("file %s: %v", p, e))
			report.Valid = false
		}
		all = append(all, loaded.Rules...)

		if testRunner == nil {
			return nil
		}
		testPath := strings.TrimSuffix(p, ext) + "-test" + ext
		if _, err := fs.Stat(fsys, testPath); err != nil {
			return nil
		}
		suite, err := parser.LoadTestCasesFromFS(fsys, testPath)
		if err != nil {
			report.LoadErrors = append(report.LoadErrors, err.Error())
			report.Valid = false
			return nil
		}
		runSuites(ctx, testRunner, report, loaded.Rules, suite, opts.Logger)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	report.RulesCount = len(all)
	validateRules(report, all)

	return report, nil
}

func newReport(p string, loaded *parser.LoadResult, runTests bool) *ValidationReport {
	report := &ValidationReport{
		Path:       p,
		Valid:      true,
		RulesCount: len(loaded.Rules),
		TestsRun:   runTests,
	}

	for _, loadErr := range loaded.Errors {
		report.LoadErrors = append(report.LoadErrors, loadErr.Error())
		report.Valid = false
	}

	validateRules(report, loaded.Rules)
	return report
}

func validateRules(report *ValidationReport, rules []*models.PredictorRule) {
	for _, rule := range rules {
		result := validation.ValidatePredictorRule(rule)
		if !result.Valid {
			report.Valid = false
			for _, e := range result.Errors {
				e.Field = rule.GetID() + ": " + e.Field
				report.ValidationErrors = append(report.ValidationErrors, e)
			}
		}
	}

	if set := validation.ValidateRuleSet(rules); !set.Valid {
		report.Valid = false
		report.ValidationErrors = append(report.ValidationErrors, set.Errors...)
	}
}

func runSuites(ctx context.Context, runner *testing.RuleTestRunner, report *ValidationReport, rules []*models.PredictorRule, suite models.RuleTestSuite, logger *slog.Logger) {
	for _, rule := range rules {
		testResult, err := runner.RunTestSuite(ctx, rule, suite)
		if err != nil {
			logger.Warn("Failed to run tests for rule", "rule", rule.GetID(), "error", err)
			report.Valid = false
			continue
		}

		report.TestResults = append(report.TestResults, *testResult)
		if !testResult.Success {
			report.Valid = false
		}
	}
}

// OutputResults writes validation results in the specified format
func OutputResults(w io.Writer, reports []ValidationReport, format string) error {
	var err error
	switch format {
	case "json":
		err = OutputJSON(w, reports)
	case "text", "table":
		err = OutputText(w, reports)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return err
	}

	for _, report := range reports {
		if !report.Valid {
			return ErrValidationFailed
		}
	}
	return nil
}

// OutputJSON writes results in JSON format
func OutputJSON(w io.Writer, reports []ValidationReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// OutputText writes results in human-readable text format
func OutputText(w io.Writer, reports []ValidationReport) error {
	totalFiles := len(reports)
	validFiles := 0
	totalRules := 0
	totalTests := 0
	passedTests := 0

	for _, report := range reports {
		if report.Valid {
			validFiles++
		}
		totalRules += report.RulesCount

		status := "✓ VALID"
		if !report.Valid {
			status = "✗ INVALID"
		}
		fmt.Fprintf(w, "%s %s\n", status, report.Path)

		if report.RulesCount > 0 {
			fmt.Fprintf(w, "  Rules: %d\n", report.RulesCount)
		}

		if len(report.ValidationErrors) > 0 {
			fmt.Fprintf(w, "  Validation Errors:\n")
			for _, err := range report.ValidationErrors {
				fmt.Fprintf(w, "    - %s\n", err.Error())
			}
		}

		if len(report.LoadErrors) > 0 {
			fmt.Fprintf(w, "  Load Errors:\n")
			for _, err := range report.LoadErrors {
				fmt.Fprintf(w, "    - %s\n", err)
			}
		}

		if report.TestsRun && len(report.TestResults) > 0 {
			fmt.Fprintf(w, "  Test Results:\n")
			for _, testResult := range report.TestResults {
				totalTests += testResult.TotalTests
				passedTests += testResult.PassedTests

				testStatus := "✓ PASSED"
				if !testResult.Success {
					testStatus = "✗ FAILED"
				}
				fmt.Fprintf(w, "    %s %s (%d/%d tests passed)\n",
					testStatus, testResult.RuleID, testResult.PassedTests, testResult.TotalTests)

				for _, result := range testResult.Results {
					if !result.Passed {
						fmt.Fprintf(w, "      - %s: %s\n", result.TestCase.Name, result.Description)
						if result.Error != "" {
							fmt.Fprintf(w, "        Error: %s\n", result.Error)
						}
					}
				}
			}
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files: %d/%d valid\n", validFiles, totalFiles)
	fmt.Fprintf(w, "  Rules: %d\n", totalRules)
	if totalTests > 0 {
		fmt.Fprintf(w, "  Tests: %d/%d passed\n", passedTests, totalTests)
	}

	return nil
}
