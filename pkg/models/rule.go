package models

const (
	// RuleAPIVersion is the only apiVersion accepted for rule documents
	RuleAPIVersion = "rules.predictor.dev/v1alpha1"

	// RuleKind is the kind of a scoring rule document
	RuleKind = "PredictorRule"

	annotationTitle       = "rules.predictor.dev/title"
	annotationVersion     = "rules.predictor.dev/version"
	annotationDescription = "rules.predictor.dev/description"
	labelCategory         = "rules.predictor.dev/category"
)

// PredictorRule is one row of the scoring table. A rule inspects one input field
// and contributes the points of the first tier whose condition holds.
type PredictorRule struct {
	APIVersion string       `yaml:"apiVersion" json:"apiVersion"`
	Kind       string       `yaml:"kind" json:"kind"`
	Metadata   RuleMetadata `yaml:"metadata" json:"metadata"`
	Spec       RuleSpec     `yaml:"spec" json:"spec"`
}

// RuleMetadata contains metadata for the scoring rule
type RuleMetadata struct {
	Name        string            `yaml:"name" json:"name"`
	Labels      map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// RuleSpec contains the specification of the scoring rule
type RuleSpec struct {
	// Order fixes the position of the rule in the evaluation sequence
	Order int `yaml:"order" json:"order"`

	// Field is the HealthInput json key the rule is about
	Field string `yaml:"field" json:"field"`

	// Tiers are checked top to bottom; at most one contributes
	Tiers []RuleTier `yaml:"tiers" json:"tiers"`

	References []Reference `yaml:"references,omitempty" json:"references,omitempty"`
}

// RuleTier is a single threshold branch of a rule
type RuleTier struct {
	CEL    string `yaml:"cel" json:"cel"`
	Points int    `yaml:"points" json:"points"`
	Factor string `yaml:"factor" json:"factor"`
}

// Reference represents an external reference
type Reference struct {
	Title       string `yaml:"title" json:"title"`
	URL         string `yaml:"url" json:"url"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// GetID returns the rule ID from metadata name
func (r *PredictorRule) GetID() string {
	return r.Metadata.Name
}

// GetTitle returns the rule title from annotations
func (r *PredictorRule) GetTitle() string {
	if r.Metadata.Annotations != nil {
		return r.Metadata.Annotations[annotationTitle]
	}
	return ""
}

// GetVersion returns the rule version from annotations
func (r *PredictorRule) GetVersion() string {
	if r.Metadata.Annotations != nil {
		return r.Metadata.Annotations[annotationVersion]
	}
	return ""
}

// GetDescription returns the rule description from annotations
func (r *PredictorRule) GetDescription() string {
	if r.Metadata.Annotations != nil {
		return r.Metadata.Annotations[annotationDescription]
	}
	return ""
}

// GetCategory returns the category from labels
func (r *PredictorRule) GetCategory() string {
	if r.Metadata.Labels != nil {
		return r.Metadata.Labels[labelCategory]
	}
	return ""
}

// MaxPoints returns the largest contribution any tier of the rule can make
func (r *PredictorRule) MaxPoints() int {
	max := 0
	for _, tier := range r.Spec.Tiers {
		if tier.Points > max {
			max = tier.Points
		}
	}
	return max
}

// RuleTestCase is a single expectation for a rule: scoring Input through the
// rule must yield Points and Factor (zero and empty when no tier matches).
type RuleTestCase struct {
	Name   string      `yaml:"name" json:"name"`
	Input  HealthInput `yaml:"input" json:"input"`
	Points int         `yaml:"points" json:"points"`
	Factor string      `yaml:"factor,omitempty" json:"factor,omitempty"`
}

// RuleTestSuite represents a collection of test cases for a rule
type RuleTestSuite []RuleTestCase
