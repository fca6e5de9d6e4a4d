package scorer

import (
	"context"
	"sync"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// DefaultParallelism is used when AssessBatch is given a non-positive worker count
const DefaultParallelism = 10

// AssessBatch scores inputs with a pool of workers. Output order matches input
// order. Cancelling ctx stops the batch and returns ctx.Err().
func (s *RiskScorer) AssessBatch(ctx context.Context, inputs []models.HealthInput, parallelism int) ([]models.AssessedRecord, error) {
	records := make([]models.AssessedRecord, len(inputs))
	if len(inputs) == 0 {
		return records, nil
	}

	numWorkers := parallelism
	if numWorkers <= 0 {
		numWorkers = DefaultParallelism
	}
	if numWorkers > len(inputs) {
		numWorkers = len(inputs)
	}

	jobs := make(chan int, len(inputs))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				// Each index is written by exactly one worker
				records[i] = models.AssessedRecord{
					Index:      i,
					Input:      inputs[i],
					Assessment: s.Score(inputs[i]),
				}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Summarize aggregates assessed records
func Summarize(records []models.AssessedRecord) *models.BatchSummary {
	summary := &models.BatchSummary{
		Total: len(records),
		RiskBreakdown: map[models.RiskLevel]int{
			models.RiskLow:      0,
			models.RiskModerate: 0,
			models.RiskHigh:     0,
		},
		FactorFrequency: make(map[string]int),
	}

	total := 0
	for _, rec := range records {
		a := rec.Assessment
		summary.RiskBreakdown[a.Risk]++
		for _, f := range a.Factors {
			summary.FactorFrequency[f]++
		}
		total += a.Score
		if a.Risk.Rank() > summary.HighestRisk.Rank() {
			summary.HighestRisk = a.Risk
		}
	}

	if len(records) > 0 {
		summary.MeanScore = float64(total) / float64(len(records))
	}

	return summary
}
