package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/models"
	"github.com/vishnusankar2203/Diabetes-Predictor/pkg/scorer"
)

func newScorer(t *testing.T) *scorer.RiskScorer {
	t.Helper()
	s, err := scorer.New(scorer.WithRandomSource(scorer.ConstantSource(0.5)))
	require.NoError(t, err)
	return s
}

func TestSubmitAndReset(t *testing.T) {
	sess := New(newScorer(t), nil)

	_, ok := sess.Current()
	assert.False(t, ok)

	in := models.HealthInput{Glucose: 150, BMI: 32, Age: 50, Insulin: 90}
	result, err := sess.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, result.Risk)

	cur, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, result, cur)
	assert.False(t, sess.Loading())

	st := sess.Snapshot()
	require.NotNil(t, st.Input)
	assert.Equal(t, in, *st.Input)

	sess.Reset()
	_, ok = sess.Current()
	assert.False(t, ok)
}

func TestSubmitLoadingDuringDelay(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	delay := func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}

	sess := New(newScorer(t), delay)
	done := make(chan error, 1)
	go func() {
		_, err := sess.Submit(context.Background(), models.HealthInput{})
		done <- err
	}()

	<-entered
	assert.True(t, sess.Loading())
	_, err := sess.Submit(context.Background(), models.HealthInput{})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, sess.Loading())
}

func TestSubmitCancelledKeepsPreviousResult(t *testing.T) {
	sess := New(newScorer(t), Sleep(time.Hour))
	sess.delay = NoDelay
	first, err := sess.Submit(context.Background(), models.HealthInput{Insulin: 80})
	require.NoError(t, err)

	sess.delay = Sleep(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = sess.Submit(ctx, models.HealthInput{Glucose: 200})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	cur, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, first, cur)
	assert.False(t, sess.Loading())
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(0)(context.Background()))
	assert.NoError(t, Sleep(time.Millisecond)(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(time.Minute)(ctx), context.Canceled)
}
