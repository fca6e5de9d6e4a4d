package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/validation"
	"gopkg.in/yaml.v3"
)

var logger = slog.Default()

// YAMLParser implements RuleParser for YAML files
type YAMLParser struct {
	validateSchema bool
}

// NewYAMLParser creates a new YAML parser
func NewYAMLParser(validateSchema bool) *YAMLParser {
	return &YAMLParser{
		validateSchema: validateSchema,
	}
}

// ParseRule parses a single scoring rule from a reader
func (p *YAMLParser) ParseRule(ctx context.Context, reader io.Reader) (*models.PredictorRule, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule data: %w", err)
	}

	var rule models.PredictorRule
	if err := yaml.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if p.validateSchema {
		if err := p.ValidateRule(ctx, &rule); err != nil {
			return nil, fmt.Errorf("rule validation failed: %w", err)
		}
	}

	return &rule, nil
}

// ParseRules parses multiple scoring rules from a reader (YAML documents separated by ---)
func (p *YAMLParser) ParseRules(ctx context.Context, reader io.Reader) ([]*models.PredictorRule, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules data: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var rules []*models.PredictorRule

	for i := 1; ; i++ {
		var rule models.PredictorRule
		if err := decoder.Decode(&rule); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to unmarshal YAML document %d: %w", i, err)
		}

		// "---" followed by nothing decodes as an empty document
		if rule.Kind == "" && rule.Metadata.Name == "" && len(rule.Spec.Tiers) == 0 {
			continue
		}

		if p.validateSchema {
			if err := p.ValidateRule(ctx, &rule); err != nil {
				return nil, fmt.Errorf("rule validation failed for document %d: %w", i, err)
			}
		}

		rules = append(rules, &rule)
	}

	return rules, nil
}

// ParseRuleFromFile parses a scoring rule from a file path
func (p *YAMLParser) ParseRuleFromFile(ctx context.Context, filePath string) (*models.PredictorRule, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Failed to close file", "path", filePath, "error", err)
		}
	}()

	rule, err := p.ParseRule(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule from file %s: %w", filePath, err)
	}

	return rule, nil
}

// ParseRulesFromDirectory parses all scoring rules from a directory, skipping
// the -test.yaml suites that sit next to them.
func (p *YAMLParser) ParseRulesFromDirectory(ctx context.Context, dirPath string) ([]*models.PredictorRule, error) {
	var rules []*models.PredictorRule

	err := filepath.WalkDir(dirPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isRuleFile(filePath) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		file, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("failed to open file %s: %w", filePath, err)
		}
		parsed, err := p.ParseRules(ctx, file)
		if cerr := file.Close(); cerr != nil {
			logger.Error("Failed to close file", "path", filePath, "error", cerr)
		}
		if err != nil {
			return fmt.Errorf("failed to parse rule from %s: %w", filePath, err)
		}

		rules = append(rules, parsed...)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return rules, nil
}

// ParseRulesFromFS parses all scoring rules from an embedded filesystem
func (p *YAMLParser) ParseRulesFromFS(ctx context.Context, fsys fs.FS, dirPath string) ([]*models.PredictorRule, error) {
	var rules []*models.PredictorRule

	err := fs.WalkDir(fsys, dirPath, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isRuleFile(filePath) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", filePath, err)
		}

		parsed, err := p.ParseRules(ctx, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to parse rule from embedded file %s: %w", filePath, err)
		}

		rules = append(rules, parsed...)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk embedded directory %s: %w", dirPath, err)
	}

	return rules, nil
}

// ValidateRule validates a scoring rule against the schema
func (p *YAMLParser) ValidateRule(ctx context.Context, rule *models.PredictorRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}

	result := validation.ValidatePredictorRule(rule)
	if result.Valid {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		msgs = append(msgs, e.Error())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// isRuleFile reports whether name is a YAML rule document rather than a test suite
func isRuleFile(name string) bool {
	ext := path.Ext(name)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	return !isTestFile(name)
}

func isTestFile(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	return strings.HasSuffix(base, "-test.yaml") || strings.HasSuffix(base, "-test.yml")
}
