package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vishnusankar2203/Diabetes-Predictor/internal"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/runner"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate scoring rules",
	Long: `Inspect and validate the CEL rules that make up the scoring table.

Each rule looks at one measurement and contributes the points of its first
matching tier. The builtin table is embedded in the binary; --rules-path adds
custom rules and --builtin=false replaces the builtin table entirely.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rules in evaluation order",
	Example: `  diabetes-predictor rules list
  diabetes-predictor rules list --output json
  diabetes-predictor rules list --rules-path ./my-rules --builtin=false`,
	RunE: runListRules,
}

var rulesInfoCmd = &cobra.Command{
	Use:   "info <rule-id>",
	Short: "Show details of one rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleInfo,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [file|directory]",
	Short: "Validate rule files and run their test suites",
	Long: `Validate PredictorRule YAML files for correct schema and CEL expressions,
and optionally run the test suite stored next to each rule (<rule>-test.yaml).

Without a path the embedded builtin rules are validated.`,
	Example: `  # Validate the builtin rules and run their tests
  diabetes-predictor rules validate --test

  # Validate a directory of custom rules
  diabetes-predictor rules validate ./rules/ --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesValidation,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesInfoCmd)
	rulesCmd.AddCommand(rulesValidateCmd)

	rulesListCmd.Flags().Bool("show-description", false, "show rule descriptions in output")
	rulesInfoCmd.Flags().Bool("show-cel", true, "show CEL expressions in output")
	rulesValidateCmd.Flags().BoolP("test", "t", false, "run rule test suites if test files are found")
}

func runListRules(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	cfg := getConfig()

	logger.Debug("Loading rules for listing")
	rules, err := loadRules(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "json":
		return outputJSON(out, rules)
	case "yaml", "yml":
		return outputYAML(out, rules)
	default:
		showDescription, _ := cmd.Flags().GetBool("show-description")
		return outputRulesTable(out, rules, showDescription)
	}
}

func runRuleInfo(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	cfg := getConfig()
	ruleID := args[0]

	logger.Debug("Looking up rule information", "rule_id", ruleID)

	rules, err := loadRules(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	var target *models.PredictorRule
	for _, rule := range rules {
		if rule.GetID() == ruleID {
			target = rule
			break
		}
	}
	if target == nil {
		return fmt.Errorf("rule '%s' not found. Use 'diabetes-predictor rules list' to see available rules", ruleID)
	}

	out := cmd.OutOrStdout()
	switch cfg.Output.Format {
	case "json":
		return outputJSON(out, target)
	case "yaml", "yml":
		return outputYAML(out, target)
	default:
		showCEL, _ := cmd.Flags().GetBool("show-cel")
		return outputRuleInfoTable(out, target, showCEL)
	}
}

func runRulesValidation(cmd *cobra.Command, args []string) error {
	runTests, _ := cmd.Flags().GetBool("test")
	format := getConfig().Output.Format
	if format == "table" || format == "yaml" || format == "yml" {
		format = "text"
	}

	opts := runner.Options{
		RunTests: runTests,
		Format:   format,
		Out:      cmd.OutOrStdout(),
		Logger:   GetLogger(),
	}

	if len(args) == 0 {
		return runner.RunFSValidation(cmd.Context(), internal.GetBuiltinRulesFS(), internal.BuiltinRulesDir, opts)
	}
	return runner.RunValidation(cmd.Context(), args[0], opts)
}

func outputRulesTable(out io.Writer, rules []*models.PredictorRule, showDescription bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := "ORDER\tID\tFIELD\tMAX POINTS\tCATEGORY\tTITLE"
	if showDescription {
		header += "\tDESCRIPTION"
	}
	fmt.Fprintln(w, header)

	total := 0
	for _, rule := range rules {
		line := fmt.Sprintf("%d\t%s\t%s\t%d\t%s\t%s",
			rule.Spec.Order, rule.GetID(), rule.Spec.Field, rule.MaxPoints(), rule.GetCategory(), rule.GetTitle())
		if showDescription {
			line += "\t" + rule.GetDescription()
		}
		fmt.Fprintln(w, line)
		total += rule.MaxPoints()
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%d rules, maximum score %d\n", len(rules), total)
	return nil
}

func outputRuleInfoTable(out io.Writer, rule *models.PredictorRule, showCEL bool) error {
	title := cases.Title(language.English)

	fmt.Fprintf(out, "Rule: %s\n", rule.GetID())
	fmt.Fprintf(out, "Title: %s\n", rule.GetTitle())
	fmt.Fprintf(out, "Version: %s\n", rule.GetVersion())
	fmt.Fprintf(out, "Category: %s\n", title.String(rule.GetCategory()))
	fmt.Fprintf(out, "Field: %s\n", rule.Spec.Field)
	fmt.Fprintf(out, "Order: %d\n", rule.Spec.Order)
	fmt.Fprintf(out, "Maximum Points: %d\n", rule.MaxPoints())
	if desc := rule.GetDescription(); desc != "" {
		fmt.Fprintf(out, "Description: %s\n", desc)
	}

	fmt.Fprintln(out, "\nTiers (first match wins):")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if showCEL {
		fmt.Fprintln(w, "  #\tPOINTS\tFACTOR\tCEL")
	} else {
		fmt.Fprintln(w, "  #\tPOINTS\tFACTOR")
	}
	for i, tier := range rule.Spec.Tiers {
		if showCEL {
			fmt.Fprintf(w, "  %d\t%d\t%s\t%s\n", i+1, tier.Points, tier.Factor, tier.CEL)
		} else {
			fmt.Fprintf(w, "  %d\t%d\t%s\n", i+1, tier.Points, tier.Factor)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(rule.Spec.References) > 0 {
		fmt.Fprintln(out, "\nReferences:")
		for _, ref := range rule.Spec.References {
			fmt.Fprintf(out, "  - %s: %s\n", ref.Title, ref.URL)
		}
	}

	return nil
}

func outputJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func outputYAML(out io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}
