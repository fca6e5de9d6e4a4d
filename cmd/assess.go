package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/config"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/input"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/progress"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/reporter"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/session"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/utils"
)

// batchChunkSize is how many records are scored between progress updates
const batchChunkSize = 100

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess diabetes risk for one person or a file of records",
	Long: `Assess diabetes risk from the eight health measurements.

Single assessments take one flag per measurement. Values are parsed
permissively: "12abc" reads as 12 and anything unreadable reads as 0.
Missing measurements are 0 unless --defaults starts from the form defaults.

Batch assessments read JSON, YAML or CSV records from a file, a directory
or stdin ("-"). CSV files need a header row; the Pima dataset columns
(Glucose, BloodPressure, DiabetesPedigreeFunction, ...) are recognised.`,
	Example: `  # Assess one person
  diabetes-predictor assess --glucose 150 --bmi 32 --age 50 --blood-pressure 85

  # Start from the form defaults and change one value
  diabetes-predictor assess --defaults --glucose 165

  # Assess a CSV file and fail when anyone reaches high risk
  diabetes-predictor assess --input patients.csv --fail-on high

  # Reproducible output
  diabetes-predictor assess --glucose 150 --seed 42 --output json`,
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	for _, field := range input.Fields() {
		assessCmd.Flags().String(flagName(field.Key), "", fmt.Sprintf("%s (typical %s)", field.Label, field.Placeholder))
	}
	assessCmd.Flags().StringP("input", "i", "", "file, directory or - (stdin) holding records to assess")
	assessCmd.Flags().Bool("defaults", false, "start from the form defaults instead of zeros")
	assessCmd.Flags().Int64("seed", 0, "seed for reproducible probability and confidence")
	assessCmd.Flags().Duration("delay", config.DefaultConfig().Presentation.SimulatedDelay, "simulated analysis delay for single assessments (0 disables)")
	assessCmd.Flags().Int("parallelism", 0, "workers for batch assessment (default from config)")
	assessCmd.Flags().Bool("warn-ranges", false, "log values outside their typical range")
	assessCmd.Flags().String("fail-on", "", "exit with code 2 when any record reaches this risk (moderate, high)")
}

// flagName converts a field key to its flag name, e.g. bloodPressure -> blood-pressure
func flagName(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func runAssess(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	cfg := getConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failOn, err := parseFailOn(cmd)
	if err != nil {
		return err
	}

	var seed *int64
	if cmd.Flags().Changed("seed") {
		s, _ := cmd.Flags().GetInt64("seed")
		seed = &s
	}

	sc, err := buildScorer(ctx, cfg, seed)
	if err != nil {
		return fmt.Errorf("failed to initialize scorer: %w", err)
	}

	start := time.Now()
	var records []models.AssessedRecord

	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath != "" {
		inputs, err := readRecords(cmd, inputPath)
		if err != nil {
			return err
		}
		logger.Debug("Loaded records", "count", len(inputs), "source", inputPath)

		parallelism := cfg.Scoring.Parallelism
		if cmd.Flags().Changed("parallelism") {
			parallelism, _ = cmd.Flags().GetInt("parallelism")
		}

		records, err = assessBatch(ctx, sc, inputs, parallelism, cfg.Presentation.ShowProgress && len(inputs) > batchChunkSize, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	} else {
		record, err := assessSingle(ctx, cmd, cfg, sc)
		if err != nil {
			return err
		}
		records = []models.AssessedRecord{record}
	}

	if warn, _ := cmd.Flags().GetBool("warn-ranges"); warn {
		for _, rec := range records {
			for _, w := range input.CheckRanges(rec.Input) {
				logger.Warn("Value outside typical range", "record", rec.Index+1, "field", w.Field, "message", w.Message)
			}
		}
	}

	report := reporter.NewAssessmentReport(records, time.Since(start))
	if err := writeReport(cmd, cfg, report, reporter.ReportOptions{}); err != nil {
		return err
	}

	if failOn != "" {
		for _, rec := range records {
			if rec.Assessment.Risk.Rank() >= failOn.Rank() {
				return &exitError{code: 2, msg: fmt.Sprintf("record %d reached %s risk", rec.Index+1, rec.Assessment.Risk)}
			}
		}
	}

	return nil
}

func parseFailOn(cmd *cobra.Command) (models.RiskLevel, error) {
	value, _ := cmd.Flags().GetString("fail-on")
	if value == "" {
		return "", nil
	}
	level, ok := models.ParseRiskLevel(strings.ToLower(value))
	if !ok || level == models.RiskLow {
		return "", fmt.Errorf("invalid --fail-on %q: use moderate or high", value)
	}
	return level, nil
}

// assessSingle builds one input from flags and scores it through a session,
// showing the simulated analysis delay
func assessSingle(ctx context.Context, cmd *cobra.Command, cfg *config.PredictorConfig, sc *scorer.RiskScorer) (models.AssessedRecord, error) {
	values := make(map[string]string)
	for _, field := range input.Fields() {
		if f := cmd.Flags().Lookup(flagName(field.Key)); f != nil && f.Changed {
			values[field.Key] = f.Value.String()
		}
	}

	base := models.HealthInput{}
	if useDefaults, _ := cmd.Flags().GetBool("defaults"); useDefaults {
		base = input.Defaults()
	}
	in := input.FromValues(values, base)

	delay := cfg.Presentation.SimulatedDelay
	if cmd.Flags().Changed("delay") {
		delay, _ = cmd.Flags().GetDuration("delay")
	}

	var delayFn session.DelayFunc = session.NoDelay
	if delay > 0 {
		delayFn = progress.NewSpinner(cmd.ErrOrStderr(), "Analyzing...").Wrap(session.Sleep(delay))
	}

	sess := session.New(sc, delayFn)
	assessment, err := sess.Submit(ctx, in)
	if err != nil {
		return models.AssessedRecord{}, fmt.Errorf("assessment cancelled: %w", err)
	}

	return models.AssessedRecord{Input: in, Assessment: assessment}, nil
}

// readRecords loads every record from a file, a directory or stdin
func readRecords(cmd *cobra.Command, path string) ([]models.HealthInput, error) {
	if path == utils.StdinPath {
		return loadRecordFile(cmd.InOrStdin(), path)
	}

	files, err := utils.CollectFiles(path, utils.FileCollectionOptions{
		Recursive:   true,
		Extensions:  utils.RecordExtensions,
		ExcludeTest: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect input files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no record files (%s) found in %s", strings.Join(utils.RecordExtensions, ", "), path)
	}

	var inputs []models.HealthInput
	for _, file := range files {
		rc, err := utils.OpenInput(file, nil)
		if err != nil {
			return nil, err
		}
		loaded, err := loadRecordFile(rc, file)
		rc.Close()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, loaded...)
	}

	return inputs, nil
}

func loadRecordFile(r io.Reader, name string) ([]models.HealthInput, error) {
	var (
		inputs []models.HealthInput
		err    error
	)
	if utils.IsCSV(name) {
		inputs, err = input.LoadCSV(r)
	} else {
		inputs, err = input.LoadRecords(r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records from %s: %w", name, err)
	}
	return inputs, nil
}

// assessBatch scores inputs in chunks so progress can be reported between them
func assessBatch(ctx context.Context, sc *scorer.RiskScorer, inputs []models.HealthInput, parallelism int, showProgress bool, progressOut io.Writer) ([]models.AssessedRecord, error) {
	var bar *progress.ProgressBar
	if showProgress {
		bar = progress.NewProgressBarWriter(progressOut, len(inputs), "Assessing")
		defer bar.Finish()
	}

	records := make([]models.AssessedRecord, 0, len(inputs))
	for offset := 0; offset < len(inputs); offset += batchChunkSize {
		end := offset + batchChunkSize
		if end > len(inputs) {
			end = len(inputs)
		}

		chunk, err := sc.AssessBatch(ctx, inputs[offset:end], parallelism)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, fmt.Errorf("batch assessment cancelled after %d records: %w", offset, err)
			}
			return nil, err
		}
		for i := range chunk {
			chunk[i].Index += offset
		}
		records = append(records, chunk...)

		if bar != nil {
			bar.Add(len(chunk))
		}
	}

	return records, nil
}
