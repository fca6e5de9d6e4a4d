package scorer

import (
	"math"
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform draws in [0, 1). Probability and confidence are
// the only randomized outputs; everything else is deterministic.
type RandomSource interface {
	Float64() float64
}

// ConstantSource always returns the same draw. Useful for pinning outputs.
type ConstantSource float64

// Float64 implements RandomSource
func (c ConstantSource) Float64() float64 {
	return float64(c)
}

// SequenceSource replays a fixed list of draws, wrapping around at the end
type SequenceSource struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequenceSource creates a source that replays values in order
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// Float64 implements RandomSource
func (s *SequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// lockedSource makes a math/rand generator safe for concurrent Score calls
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newSeededSource(seed uint64) *lockedSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func newRandomSource() *lockedSource {
	return &lockedSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// draw reads one value from src and forces it into [0, 1)
func draw(src RandomSource) float64 {
	u := src.Float64()
	switch {
	case math.IsNaN(u) || u < 0:
		return 0
	case u >= 1:
		return math.Nextafter(1, 0)
	default:
		return u
	}
}
