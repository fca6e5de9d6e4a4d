// Package scorer implements the additive weighted-threshold diabetes risk
// heuristic. It is not a statistical model: points from the rule table are
// summed, the total picks a tier, and the tier bounds a randomized
// probability and confidence.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vishnusankar2203/Diabetes-Predictor/internal"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/engine"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/parser"
)

const (
	// HighRiskThreshold is the lowest score classified as high risk
	HighRiskThreshold = 50

	// ModerateRiskThreshold is the lowest score classified as moderate risk
	ModerateRiskThreshold = 25

	// FallbackFactor is reported when no rule contributed
	FallbackFactor = "Overall health parameters within normal ranges"

	// Disclaimer accompanies every rendered assessment
	Disclaimer = "This tool is for educational and preliminary risk assessment purposes only. It is not a substitute for professional medical advice, diagnosis, or treatment. Always consult with qualified healthcare professionals for medical concerns."
)

var recommendations = map[models.RiskLevel]string{
	models.RiskLow:      "Your current health parameters suggest a low risk for diabetes. Continue maintaining a healthy lifestyle with regular exercise, balanced nutrition, and routine health check-ups. Keep monitoring your health parameters annually.",
	models.RiskModerate: "Your assessment indicates a moderate risk for diabetes. Consider lifestyle modifications including regular physical activity, weight management, and dietary improvements. Schedule a consultation with your healthcare provider for comprehensive evaluation and personalized prevention strategies.",
	models.RiskHigh:     "Your health parameters suggest a high risk for diabetes. Immediate consultation with a healthcare professional is strongly recommended. Consider comprehensive medical evaluation, potential glucose tolerance testing, and development of a personalized health management plan.",
}

// tierBand describes how a tier turns draws into percentages:
// value = base + U(0, spread), then clamped to [min, max].
type tierBand struct {
	probBase, probSpread, probMin, probMax float64
	confBase, confSpread                  float64
}

var bands = map[models.RiskLevel]tierBand{
	models.RiskHigh:     {probBase: 85, probSpread: 10, probMin: 0, probMax: 95, confBase: 88, confSpread: 7},
	models.RiskModerate: {probBase: 40, probSpread: 35, probMin: 0, probMax: 100, confBase: 82, confSpread: 8},
	models.RiskLow:      {probBase: 5, probSpread: 20, probMin: 5, probMax: 100, confBase: 85, confSpread: 10},
}

// Observer is notified after every assessment
type Observer interface {
	ObserveAssessment(assessment models.RiskAssessment, elapsed time.Duration)
}

// RiskScorer evaluates the rule table. A scorer is immutable after New apart
// from its random source, which is safe for concurrent use.
type RiskScorer struct {
	rules    []*models.PredictorRule
	engine   *engine.CELEngine
	random   RandomSource
	logger   *slog.Logger
	observer Observer
}

// Option configures a RiskScorer
type Option func(*RiskScorer)

// WithRules replaces the builtin rule table. Rules are evaluated by their order field.
func WithRules(rules []*models.PredictorRule) Option {
	return func(s *RiskScorer) {
		s.rules = rules
	}
}

// WithRandomSource injects the source used for probability and confidence draws
func WithRandomSource(src RandomSource) Option {
	return func(s *RiskScorer) {
		if src != nil {
			s.random = src
		}
	}
}

// WithSeed makes the randomized outputs reproducible
func WithSeed(seed int64) Option {
	return func(s *RiskScorer) {
		s.random = newSeededSource(uint64(seed))
	}
}

// WithLogger sets the logger used for rule evaluation problems
func WithLogger(logger *slog.Logger) Option {
	return func(s *RiskScorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer such as a metrics recorder
func WithObserver(o Observer) Option {
	return func(s *RiskScorer) {
		s.observer = o
	}
}

// New builds a scorer. Without WithRules it loads the embedded builtin table.
// Every tier expression is compiled here, so this is the only step that can fail.
func New(opts ...Option) (*RiskScorer, error) {
	s := &RiskScorer{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = newRandomSource()
	}

	ctx := context.Background()
	if s.rules == nil {
		rules, err := LoadBuiltinRules(ctx)
		if err != nil {
			return nil, err
		}
		s.rules = rules
	} else {
		rules := make([]*models.PredictorRule, len(s.rules))
		copy(rules, s.rules)
		parser.SortRules(rules)
		s.rules = rules
	}

	eng, err := engine.NewCELEngine()
	if err != nil {
		return nil, err
	}
	for _, rule := range s.rules {
		if err := eng.CompileRule(ctx, rule); err != nil {
			return nil, fmt.Errorf("failed to compile rule %s: %w", rule.GetID(), err)
		}
	}
	s.engine = eng

	return s, nil
}

// LoadBuiltinRules parses the embedded rule table in evaluation order
func LoadBuiltinRules(ctx context.Context) ([]*models.PredictorRule, error) {
	p := parser.NewYAMLParser(true)
	rules, err := p.ParseRulesFromFS(ctx, internal.GetBuiltinRulesFS(), internal.BuiltinRulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin rules: %w", err)
	}
	parser.SortRules(rules)
	return rules, nil
}

// Rules returns the rule table in evaluation order
func (s *RiskScorer) Rules() []*models.PredictorRule {
	out := make([]*models.PredictorRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Explain evaluates every rule and reports each one's contribution, in table order
func (s *RiskScorer) Explain(input models.HealthInput) []models.RuleEvaluation {
	ctx := context.Background()
	evaluations := make([]models.RuleEvaluation, 0, len(s.rules))

	for _, rule := range s.rules {
		eval, err := s.engine.EvaluateRule(ctx, rule, input)
		if err != nil {
			// Rules are compiled in New; reaching this means the table changed underneath us
			s.logger.Error("Rule evaluation failed", "rule", rule.GetID(), "error", err)
			evaluations = append(evaluations, models.RuleEvaluation{RuleID: rule.GetID(), Tier: -1, Errors: []string{err.Error()}})
			continue
		}
		for _, msg := range eval.Errors {
			s.logger.Warn("Rule tier evaluation error", "rule", rule.GetID(), "error", msg)
		}
		evaluations = append(evaluations, *eval)
	}

	return evaluations
}

// Score assesses one input. It never fails and never blocks.
func (s *RiskScorer) Score(input models.HealthInput) models.RiskAssessment {
	start := time.Now()

	evaluations := s.Explain(input)

	score := 0
	factors := make([]string, 0, len(evaluations))
	for _, eval := range evaluations {
		if !eval.Matched {
			continue
		}
		score += eval.Points
		if eval.Factor != "" {
			factors = append(factors, eval.Factor)
		}
	}
	if len(factors) == 0 {
		factors = append(factors, FallbackFactor)
	}

	risk := Classify(score)
	probability, confidence := s.percentages(risk)

	assessment := models.RiskAssessment{
		Risk:           risk,
		Probability:    probability,
		Confidence:     confidence,
		Factors:        factors,
		Recommendation: Recommendation(risk),
		Score:          score,
	}

	if s.observer != nil {
		s.observer.ObserveAssessment(assessment, time.Since(start))
	}

	return assessment
}

// percentages draws probability then confidence for the tier
func (s *RiskScorer) percentages(risk models.RiskLevel) (int, int) {
	band := bands[risk]

	probability := band.probBase + draw(s.random)*band.probSpread
	probability = math.Min(math.Max(probability, band.probMin), band.probMax)

	confidence := band.confBase + draw(s.random)*band.confSpread

	return roundPercent(probability), roundPercent(confidence)
}

// Classify maps a cumulative score to its tier
func Classify(score int) models.RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return models.RiskHigh
	case score >= ModerateRiskThreshold:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

// Recommendation returns the fixed advice text for a tier
func Recommendation(risk models.RiskLevel) string {
	if text, ok := recommendations[risk]; ok {
		return text
	}
	return recommendations[models.RiskLow]
}

// Recommendations returns the advice text of every tier
func Recommendations() map[models.RiskLevel]string {
	out := make(map[models.RiskLevel]string, len(recommendations))
	for k, v := range recommendations {
		out[k] = v
	}
	return out
}

// roundPercent rounds to one decimal and then to an integer, halves rounding up
func roundPercent(v float64) int {
	oneDecimal := math.Floor(v*10+0.5) / 10
	return int(math.Floor(oneDecimal + 0.5))
}
