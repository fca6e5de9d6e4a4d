// Package session holds the state of one interactive assessment: the
// submitted input, whether analysis is in progress and the latest result.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
)

// DefaultDelay is the simulated analysis time used by the interactive surfaces
const DefaultDelay = 2 * time.Second

// ErrBusy is returned when Submit is called while an analysis is running
var ErrBusy = errors.New("an assessment is already in progress")

// Assessor scores a health input
type Assessor interface {
	Score(input models.HealthInput) models.RiskAssessment
}

// DelayFunc waits before scoring. It must return ctx.Err() when ctx ends first.
type DelayFunc func(ctx context.Context) error

// NoDelay scores immediately
func NoDelay(context.Context) error { return nil }

// Sleep returns a DelayFunc that waits for d or until ctx is done
func Sleep(d time.Duration) DelayFunc {
	if d <= 0 {
		return NoDelay
	}
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// State is a point-in-time copy of a session
type State struct {
	Input   *models.HealthInput    `json:"input,omitempty"`
	Current *models.RiskAssessment `json:"current,omitempty"`
	Loading bool                   `json:"loading"`
}

// Session is safe for concurrent use. Reset discards the result and keeps nothing else.
type Session struct {
	mu       sync.Mutex
	assessor Assessor
	delay    DelayFunc
	input    *models.HealthInput
	current  *models.RiskAssessment
	loading  bool
}

// New creates a session around an assessor. A nil delay means NoDelay.
func New(assessor Assessor, delay DelayFunc) *Session {
	if delay == nil {
		delay = NoDelay
	}
	return &Session{
		assessor: assessor,
		delay:    delay,
	}
}

// Submit runs the delay, scores input and stores the result. If ctx ends
// during the delay the previous result is kept and ctx.Err() is returned.
func (s *Session) Submit(ctx context.Context, input models.HealthInput) (models.RiskAssessment, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return models.RiskAssessment{}, ErrBusy
	}
	s.loading = true
	in := input
	s.input = &in
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if err := s.delay(ctx); err != nil {
		return models.RiskAssessment{}, err
	}

	result := s.assessor.Score(input)

	s.mu.Lock()
	s.current = &result
	s.mu.Unlock()

	return result, nil
}

// Reset discards the current result so a new assessment can be started
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Loading reports whether an analysis is in progress
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Current returns the latest result, if any
func (s *Session) Current() (models.RiskAssessment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.RiskAssessment{}, false
	}
	return *s.current, true
}

// Snapshot copies the session state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Loading: s.loading}
	if s.input != nil {
		in := *s.input
		st.Input = &in
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	return st
}
