package parser

import (
	"context"
	"io"
	"io/fs"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// RuleParser defines the interface for parsing scoring rules
type RuleParser interface {
	// ParseRule parses a single scoring rule from a reader
	ParseRule(ctx context.Context, reader io.Reader) (*models.PredictorRule, error)

	// ParseRules parses multiple scoring rules from a reader
	ParseRules(ctx context.Context, reader io.Reader) ([]*models.PredictorRule, error)

	// ParseRuleFromFile parses a scoring rule from a file path
	ParseRuleFromFile(ctx context.Context, filePath string) (*models.PredictorRule, error)

	// ParseRulesFromDirectory parses all scoring rules from a directory
	ParseRulesFromDirectory(ctx context.Context, dirPath string) ([]*models.PredictorRule, error)

	// ParseRulesFromFS parses all scoring rules below dirPath of fsys
	ParseRulesFromFS(ctx context.Context, fsys fs.FS, dirPath string) ([]*models.PredictorRule, error)

	// ValidateRule validates a scoring rule against the schema
	ValidateRule(ctx context.Context, rule *models.PredictorRule) error
}

var _ RuleParser = (*YAMLParser)(nil)
