package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
)

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"glucose":          "glucose",
		"bloodPressure":    "blood-pressure",
		"diabetesPedigree": "diabetes-pedigree",
		"bmi":              "bmi",
	}
	for key, want := range tests {
		if got := flagName(key); got != want {
			t.Errorf("flagName(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		value   string
		want    models.RiskLevel
		wantErr bool
	}{
		{"", "", false},
		{"high", models.RiskHigh, false},
		{"Moderate", models.RiskModerate, false},
		{"low", "", true},
		{"severe", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c := &cobra.Command{}
			c.Flags().String("fail-on", "", "")
			if err := c.Flags().Set("fail-on", tt.value); err != nil {
				t.Fatal(err)
			}

			got, err := parseFailOn(c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFailOn(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFailOn(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestAssessBatchOffsetsIndexes(t *testing.T) {
	sc, err := scorer.New(scorer.WithRandomSource(scorer.ConstantSource(0.5)))
	if err != nil {
		t.Fatal(err)
	}

	inputs := make([]models.HealthInput, batchChunkSize+5)
	inputs[batchChunkSize+2].Glucose = 150

	var progressOut bytes.Buffer
	records, err := assessBatch(context.Background(), sc, inputs, 4, true, &progressOut)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(inputs) {
		t.Fatalf("expected %d records, got %d", len(inputs), len(records))
	}
	for i, rec := range records {
		if rec.Index != i {
			t.Fatalf("record %d has index %d", i, rec.Index)
		}
	}
	if records[batchChunkSize+2].Assessment.Score != 38 {
		t.Errorf("expected score 38 for the glucose record, got %d", records[batchChunkSize+2].Assessment.Score)
	}
	if progressOut.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestAssessBatchCancelled(t *testing.T) {
	sc, err := scorer.New()
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := assessBatch(ctx, sc, make([]models.HealthInput, 3), 2, false, nil); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
