package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/metrics"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/server"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the assessment JSON API",
	Long: `Serve the assessment API over HTTP.

Endpoints:
  POST /v1/assess         one record, returns the assessment
  POST /v1/assess/batch   an array of records, returns a report with a summary
  GET  /v1/fields         the measurement catalog
  GET  /v1/rules          the rule table
  GET  /healthz           liveness
  GET  /readyz            readiness
  GET  /metrics           Prometheus metrics

Measurements may be sent as JSON numbers or numeric strings.`,
	Example: `  # Serve on the default address
  diabetes-predictor server

  # Serve with reproducible outputs on another port
  diabetes-predictor server --address :9090 --seed 7`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("address", "", "listen address (default from config, :8080)")
	serverCmd.Flags().Int64("seed", 0, "seed for reproducible probability and confidence")

	if err := viper.BindPFlag("server.address", serverCmd.Flags().Lookup("address")); err != nil {
		panic(fmt.Sprintf("failed to bind server.address flag: %v", err))
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	cfg := getConfig()

	var seed *int64
	if cmd.Flags().Changed("seed") {
		s, _ := cmd.Flags().GetInt64("seed")
		seed = &s
	}

	recorder := metrics.NewRecorder(true)
	sc, err := buildScorer(cmd.Context(), cfg, seed, scorer.WithObserver(recorder))
	if err != nil {
		return fmt.Errorf("failed to initialize scorer: %w", err)
	}

	logger.Info("Starting assessment server",
		"address", cfg.Server.Address,
		"rules", len(sc.Rules()),
		"max_batch_size", cfg.Server.MaxBatchSize)

	srv, err := server.New(server.Options{
		Scorer:      sc,
		Recorder:    recorder,
		Logger:      logger,
		Config:      cfg.Server,
		Parallelism: cfg.Scoring.Parallelism,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
