package reporter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

const (
	lineWidth = 80
	barWidth  = 30
)

// TableReporter renders assessments for console output
type TableReporter struct {
	noColor     bool
	verbose     bool
	quiet       bool
	summaryOnly bool
	title       cases.Caser
}

// NewTableReporter creates a new table reporter
func NewTableReporter(noColor, verbose bool) *TableReporter {
	return &TableReporter{
		noColor: noColor,
		verbose: verbose,
		title:   cases.Title(language.English),
	}
}

// SetQuiet prints one line per record
func (r *TableReporter) SetQuiet(quiet bool) {
	r.quiet = quiet
}

// SetSummaryOnly prints only the batch summary
func (r *TableReporter) SetSummaryOnly(summaryOnly bool) {
	r.summaryOnly = summaryOnly
}

// GenerateReport generates a table format report
func (r *TableReporter) GenerateReport(ctx context.Context, report *models.AssessmentReport) ([]byte, error) {
	var output strings.Builder

	if r.quiet {
		for _, rec := range report.Records {
			output.WriteString(r.formatQuietLine(rec))
		}
		return []byte(output.String()), nil
	}

	if !r.summaryOnly {
		for i, rec := range report.Records {
			if len(report.Records) > 1 {
				output.WriteString(r.formatHeader(fmt.Sprintf("Diabetes Risk Assessment #%d", rec.Index+1)))
			} else {
				output.WriteString(r.formatHeader("Diabetes Risk Assessment"))
			}
			output.WriteString(r.formatAssessment(rec))
			if i < len(report.Records)-1 {
				output.WriteString("\n")
			}
		}
	}

	if report.Summary != nil {
		if !r.summaryOnly {
			output.WriteString("\n")
		}
		output.WriteString(r.formatSummary(report.Summary))
	}

	output.WriteString("\n")
	output.WriteString(r.formatDisclaimer(report.Disclaimer))

	return []byte(output.String()), nil
}

// WriteReport writes the report to the specified writer
func (r *TableReporter) WriteReport(ctx context.Context, report *models.AssessmentReport, writer io.Writer) error {
	data, err := r.GenerateReport(ctx, report)
	if err != nil {
		return err
	}

	_, err = writer.Write(data)
	return err
}

// GetFormat returns the format name
func (r *TableReporter) GetFormat() string {
	return "table"
}

// GetFileExtension returns the file extension
func (r *TableReporter) GetFileExtension() string {
	return ".txt"
}

// RiskLabel returns the title-cased label of a tier, e.g. "Moderate Risk"
func (r *TableReporter) RiskLabel(risk models.RiskLevel) string {
	return r.title.String(string(risk) + " risk")
}

func (r *TableReporter) formatHeader(title string) string {
	line := strings.Repeat("=", len(title)+4)
	return fmt.Sprintf("%s\n  %s  \n%s\n", line, title, line)
}

func (r *TableReporter) formatQuietLine(rec models.AssessedRecord) string {
	a := rec.Assessment
	return fmt.Sprintf("#%d %s (score %d, probability %d%%, confidence %d%%)\n",
		rec.Index+1, r.colorize(strings.ToUpper(string(a.Risk))+" RISK", riskColor(a.Risk)),
		a.Score, a.Probability, a.Confidence)
}

func (r *TableReporter) formatAssessment(rec models.AssessedRecord) string {
	var out strings.Builder
	a := rec.Assessment
	color := riskColor(a.Risk)

	out.WriteString(fmt.Sprintf("%s %s\n\n", riskIcon(a.Risk), r.colorize(strings.ToUpper(string(a.Risk))+" RISK", color)))
	out.WriteString(fmt.Sprintf("  %-18s %s %3d%%\n", "Risk Probability", r.colorize(bar(a.Probability), color), a.Probability))
	out.WriteString(fmt.Sprintf("  %-18s %s %3d%%\n", "Model Confidence", r.colorize(bar(a.Confidence), "cyan"), a.Confidence))
	out.WriteString(fmt.Sprintf("  %-18s %d\n", "Score", a.Score))

	if r.verbose {
		out.WriteString("\n")
		out.WriteString(r.colorize("Submitted Values\n", "cyan"))
		out.WriteString(strings.Repeat("-", lineWidth) + "\n")
		out.WriteString(r.formatInput(rec.Input))
	}

	out.WriteString("\n")
	out.WriteString(r.colorize("Key Contributing Factors\n", "cyan"))
	out.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for _, factor := range a.Factors {
		out.WriteString(fmt.Sprintf("  • %s\n", factor))
	}

	out.WriteString("\n")
	out.WriteString(r.colorize("Medical Recommendation\n", "cyan"))
	out.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for _, line := range wrap(a.Recommendation, lineWidth-2) {
		out.WriteString("  " + line + "\n")
	}

	return out.String()
}

func (r *TableReporter) formatInput(h models.HealthInput) string {
	var out strings.Builder
	for _, field := range input.Fields() {
		v, _ := h.Value(field.Key)
		value := fmt.Sprintf("%g", v)
		if field.Unit != "" {
			value += " " + field.Unit
		}
		out.WriteString(fmt.Sprintf("  %-32s %s\n", field.Label, value))
	}
	return out.String()
}

func (r *TableReporter) formatSummary(summary *models.BatchSummary) string {
	var out strings.Builder

	out.WriteString(r.colorize("Batch Summary", "cyan"))
	out.WriteString("\n")
	out.WriteString(strings.Repeat("=", lineWidth) + "\n")
	out.WriteString(fmt.Sprintf("  %-18s %d\n", "Records", summary.Total))
	out.WriteString(fmt.Sprintf("  %-18s %.1f\n", "Mean Score", summary.MeanScore))
	if summary.HighestRisk.IsValid() {
		out.WriteString(fmt.Sprintf("  %-18s %s\n", "Highest Risk",
			r.colorize(r.RiskLabel(summary.HighestRisk), riskColor(summary.HighestRisk))))
	}

	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("  %s %s %s\n",
		r.padToWidth(r.colorize("Risk Level", "bold"), 20),
		r.padToWidth(r.colorize("Records", "bold"), 10),
		r.colorize("Share", "bold")))
	out.WriteString("  " + strings.Repeat("-", 40) + "\n")
	for _, level := range []models.RiskLevel{models.RiskHigh, models.RiskModerate, models.RiskLow} {
		count := summary.RiskBreakdown[level]
		share := 0.0
		if summary.Total > 0 {
			share = float64(count) / float64(summary.Total) * 100
		}
		out.WriteString(fmt.Sprintf("  %s %s %.1f%%\n",
			r.padToWidth(r.colorize(r.RiskLabel(level), riskColor(level)), 20),
			r.padToWidth(fmt.Sprintf("%d", count), 10),
			share))
	}

	if len(summary.FactorFrequency) > 0 {
		out.WriteString("\n")
		out.WriteString(r.colorize("Most Frequent Factors\n", "cyan"))
		out.WriteString(strings.Repeat("-", lineWidth) + "\n")
		for _, fc := range sortedFactors(summary.FactorFrequency) {
			out.WriteString(fmt.Sprintf("  %4d  %s\n", fc.count, fc.factor))
		}
	}

	return out.String()
}

func (r *TableReporter) formatDisclaimer(disclaimer string) string {
	if disclaimer == "" {
		return ""
	}
	var out strings.Builder
	out.WriteString(r.colorize("⚠ Important Disclaimer\n", "yellow"))
	for _, line := range wrap(disclaimer, lineWidth-2) {
		out.WriteString("  " + line + "\n")
	}
	return out.String()
}

type factorCount struct {
	factor string
	count  int
}

// sortedFactors orders factors by frequency, then alphabetically
func sortedFactors(freq map[string]int) []factorCount {
	out := make([]factorCount, 0, len(freq))
	for f, c := range freq {
		out = append(out, factorCount{factor: f, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].factor < out[j].factor
	})
	return out
}

func bar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := barWidth * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// wrap breaks text into lines of at most width runes, on spaces
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len([]rune(line))+1+len([]rune(word)) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}

func riskColor(risk models.RiskLevel) string {
	switch risk {
	case models.RiskHigh:
		return "red"
	case models.RiskModerate:
		return "yellow"
	case models.RiskLow:
		return "green"
	default:
		return "white"
	}
}

func riskIcon(risk models.RiskLevel) string {
	switch risk {
	case models.RiskHigh:
		return "⚠"
	case models.RiskModerate:
		return "ℹ"
	default:
		return "✓"
	}
}

// padToWidth pads text to a visible width, ignoring ANSI escape sequences
func (r *TableReporter) padToWidth(text string, width int) string {
	visible := len([]rune(stripANSI(text)))
	if visible >= width {
		return text
	}
	return text + strings.Repeat(" ", width-visible)
}

func stripANSI(s string) string {
	var out strings.Builder
	inEscape := false
	for _, c := range s {
		switch {
		case c == '\033':
			inEscape = true
		case inEscape:
			if c == 'm' {
				inEscape = false
			}
		default:
			out.WriteRune(c)
		}
	}
	return out.String()
}

func (r *TableReporter) colorize(text, color string) string {
	if r.noColor {
		return text
	}

	colorCodes := map[string]string{
		"red":    "\033[31m",
		"green":  "\033[32m",
		"yellow": "\033[33m",
		"cyan":   "\033[36m",
		"white":  "\033[37m",
		"bold":   "\033[1m",
		"reset":  "\033[0m",
	}

	if code, exists := colorCodes[color]; exists {
		return fmt.Sprintf("%s%s%s", code, text, colorCodes["reset"])
	}

	return text
}
