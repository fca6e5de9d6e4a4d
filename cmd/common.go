package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/parser"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/reporter"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/validation"
)

// loadRules returns the configured rule table: the builtin rules, any custom
// rules, or both. Custom rules must validate individually and as a set.
func loadRules(ctx context.Context, cfg *config.PredictorConfig) ([]*models.PredictorRule, error) {
	var rules []*models.PredictorRule

	if cfg.Scoring.UseBuiltin {
		builtin, err := scorer.LoadBuiltinRules(ctx)
		if err != nil {
			return nil, err
		}
		rules = append(rules, builtin...)
	}

	if len(cfg.Scoring.RulesPaths) > 0 {
		loaded, err := parser.LoadFromPaths(cfg.Scoring.RulesPaths)
		if err != nil {
			return nil, fmt.Errorf("failed to load custom rules: %w", err)
		}
		if len(loaded.Errors) > 0 {
			return nil, fmt.Errorf("failed to load custom rules: %w", errors.Join(loaded.Errors...))
		}
		for _, rule := range loaded.Rules {
			if result := validation.ValidatePredictorRule(rule); !result.Valid {
				return nil, fmt.Errorf("invalid custom rule %s: %s", rule.GetID(), result.Errors[0].Error())
			}
		}
		GetLogger().Debug("Loaded custom rules", "count", len(loaded.Rules), "paths", cfg.Scoring.RulesPaths)
		rules = append(rules, loaded.Rules...)
	}

	if len(rules) == 0 {
		return nil, errors.New("no rules to evaluate: enable the builtin table or pass --rules-path")
	}

	if result := validation.ValidateRuleSet(rules); !result.Valid {
		return nil, fmt.Errorf("invalid rule set: %s", result.Errors[0].Error())
	}

	parser.SortRules(rules)
	return rules, nil
}

// buildScorer creates a scorer from the effective configuration. A non-nil
// seed overrides the configured one.
func buildScorer(ctx context.Context, cfg *config.PredictorConfig, seed *int64, extra ...scorer.Option) (*scorer.RiskScorer, error) {
	rules, err := loadRules(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []scorer.Option{
		scorer.WithRules(rules),
		scorer.WithLogger(GetLogger()),
	}
	if seed == nil {
		seed = cfg.Scoring.Seed
	}
	if seed != nil {
		opts = append(opts, scorer.WithSeed(*seed))
	}
	opts = append(opts, extra...)

	return scorer.New(opts...)
}

// colorEnabled reports whether table output should be colored
func colorEnabled(cfg *config.PredictorConfig, w io.Writer) bool {
	if cfg.Output.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeReport renders report in the configured format to the output file or cmd's stdout
func writeReport(cmd *cobra.Command, cfg *config.PredictorConfig, report *models.AssessmentReport, options reporter.ReportOptions) error {
	var out io.Writer = cmd.OutOrStdout()
	options.Format = cfg.Output.Format
	options.OutputFile = cfg.Output.File
	options.Verbose = options.Verbose || cfg.Output.Verbose

	if cfg.Output.File != "" {
		f, err := os.Create(cfg.Output.File)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	options.NoColor = !colorEnabled(cfg, out)

	rep, err := reporter.NewFactory().CreateReporterWithOptions(&options)
	if err != nil {
		return err
	}

	if err := rep.WriteReport(cmd.Context(), report, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Output.File != "" {
		GetLogger().Info("Report written", "file", cfg.Output.File, "format", rep.GetFormat())
	}
	return nil
}
