package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/validation"
)

// LoadResult represents the result of loading rule documents. Documents that
// fail to parse are collected in Errors instead of aborting the load.
type LoadResult struct {
	Rules  []*models.PredictorRule `json:"rules"`
	Errors []error                 `json:"errors"`
}

// LoadFromFile loads PredictorRule documents from a YAML file
func LoadFromFile(filePath string) (*LoadResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return LoadFromBytes(data)
}

// LoadFromReader loads PredictorRule documents from an io.Reader
func LoadFromReader(reader io.Reader) (*LoadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads PredictorRule documents from YAML bytes
func LoadFromBytes(data []byte) (*LoadResult, error) {
	result := &LoadResult{
		Rules:  []*models.PredictorRule{},
		Errors: []error{},
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for i := 0; ; i++ {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// The decoder cannot resynchronise after a syntax error
			result.Errors = append(result.Errors, fmt.Errorf("document %d: %w", i, err))
			break
		}

		var header struct {
			Kind string `yaml:"kind"`
		}
		if err := node.Decode(&header); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("document %d: failed to parse metadata: %w", i, err))
			continue
		}

		switch header.Kind {
		case models.RuleKind:
			var rule models.PredictorRule
			if err := node.Decode(&rule); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("document %d: failed to parse %s: %w", i, models.RuleKind, err))
				continue
			}
			result.Rules = append(result.Rules, &rule)
		case "":
			if isEmptyDocument(&node) {
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("document %d: missing kind", i))
		default:
			result.Errors = append(result.Errors, fmt.Errorf("document %d: unsupported kind '%s'", i, header.Kind))
		}
	}

	return result, nil
}

// LoadFromDirectory recursively loads all rule files from a directory
func LoadFromDirectory(dirPath string) (*LoadResult, error) {
	result := &LoadResult{
		Rules:  []*models.PredictorRule{},
		Errors: []error{},
	}

	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isRuleFile(path) {
			return nil
		}

		fileResult, err := LoadFromFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("file %s: %w", path, err))
			return nil
		}

		result.Rules = append(result.Rules, fileResult.Rules...)
		for _, e := range fileResult.Errors {
			result.Errors = append(result.Errors, fmt.Errorf("file %s: %w", path, e))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return result, nil
}

// LoadFromPaths loads rules from a mix of files and directories
func LoadFromPaths(paths []string) (*LoadResult, error) {
	result := &LoadResult{
		Rules:  []*models.PredictorRule{},
		Errors: []error{},
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access rules path %s: %w", p, err)
		}

		var partial *LoadResult
		if info.IsDir() {
			partial, err = LoadFromDirectory(p)
		} else {
			partial, err = LoadFromFile(p)
		}
		if err != nil {
			return nil, err
		}

		result.Rules = append(result.Rules, partial.Rules...)
		result.Errors = append(result.Errors, partial.Errors...)
	}

	return result, nil
}

// ValidateAndLoad loads and validates rules from a file
func ValidateAndLoad(filePath string) (*LoadResult, []validation.ValidationResult, error) {
	result, err := LoadFromFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	validationResults := make([]validation.ValidationResult, 0, len(result.Rules))
	for _, rule := range result.Rules {
		validationResults = append(validationResults, validation.ValidatePredictorRule(rule))
	}

	return result, validationResults, nil
}

// SortRules orders rules by spec.order, then by name for ties
func SortRules(rules []*models.PredictorRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Spec.Order != rules[j].Spec.Order {
			return rules[i].Spec.Order < rules[j].Spec.Order
		}
		return rules[i].GetID() < rules[j].GetID()
	})
}

// LoadTestCases loads test cases for a rule from a test file
func LoadTestCases(testFilePath string) (models.RuleTestSuite, error) {
	data, err := os.ReadFile(testFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file %s: %w", testFilePath, err)
	}

	return parseTestCases(data)
}

// LoadTestCasesFromFS loads a test suite stored in fsys
func LoadTestCasesFromFS(fsys fs.FS, testFilePath string) (models.RuleTestSuite, error) {
	data, err := fs.ReadFile(fsys, testFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read test file %s: %w", testFilePath, err)
	}

	return parseTestCases(data)
}

func parseTestCases(data []byte) (models.RuleTestSuite, error) {
	var testCases models.RuleTestSuite
	if err := yaml.Unmarshal(data, &testCases); err != nil {
		return nil, fmt.Errorf("failed to parse test cases: %w", err)
	}
	return testCases, nil
}

// GetRuleTestFile returns the expected test file path for a given rule file
func GetRuleTestFile(ruleFilePath string) string {
	dir := filepath.Dir(ruleFilePath)
	base := filepath.Base(ruleFilePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+"-test"+ext)
}

func isEmptyDocument(node *yaml.Node) bool {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return true
		}
		node = node.Content[0]
	}
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
