package progress

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestProgressBarNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBarWriter(&buf, 20, "Assessing")

	for i := 0; i < 20; i++ {
		pb.Increment()
	}
	pb.Finish()
	pb.Finish()

	out := buf.String()
	if !strings.Contains(out, "Assessing: 10/20 (50.0%)") {
		t.Errorf("expected halfway line, got %q", out)
	}
	if strings.Count(out, "Assessing: 20/20 (100.0%)") != 1 {
		t.Errorf("expected exactly one completion line, got %q", out)
	}
}

func TestProgressBarEmptyBatch(t *testing.T) {
	var buf bytes.Buffer
	pb := NewProgressBarWriter(&buf, 0, "Assessing")
	pb.Finish()
	if buf.Len() != 0 {
		t.Errorf("expected no output for an already complete bar, got %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1500 * time.Millisecond, "2s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpinnerWrapNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Analyzing...")

	called := false
	err := s.Wrap(func(ctx context.Context) error {
		called = true
		return nil
	})(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("wrapped delay was not run")
	}
	if buf.String() != "Analyzing...\n" {
		t.Errorf("unexpected spinner output %q", buf.String())
	}

	// Stop without Start is a no-op
	s.Stop()
}

func TestSpinnerPropagatesError(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "Analyzing...")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Wrap(func(ctx context.Context) error { return ctx.Err() })(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
