package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// isTerminal reports whether w is a terminal and its width when it is
func isTerminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return true, 0
	}
	return true, width
}

// ProgressBar renders batch progress on a terminal and periodic lines elsewhere
type ProgressBar struct {
	mu         sync.Mutex
	total      int
	current    int
	width      int
	prefix     string
	writer     io.Writer
	startTime  time.Time
	lastUpdate time.Time
	updateRate time.Duration
	finished   bool
	isTerminal bool
}

// NewProgressBar creates a progress bar on stderr
func NewProgressBar(total int, prefix string) *ProgressBar {
	return NewProgressBarWriter(os.Stderr, total, prefix)
}

// NewProgressBarWriter creates a progress bar writing to w
func NewProgressBarWriter(w io.Writer, total int, prefix string) *ProgressBar {
	tty, termWidth := isTerminal(w)

	width := 50
	if termWidth > 0 {
		// 60% of the terminal, kept between 20 and 80 columns
		width = termWidth * 6 / 10
		if width < 20 {
			width = 20
		}
		if width > 80 {
			width = 80
		}
	}

	now := time.Now()
	return &ProgressBar{
		total:      total,
		width:      width,
		prefix:     prefix,
		writer:     w,
		startTime:  now,
		lastUpdate: now,
		updateRate: 100 * time.Millisecond,
		isTerminal: tty,
	}
}

// Increment increases the progress by 1
func (pb *ProgressBar) Increment() {
	pb.Add(1)
}

// Add increases the progress by the specified amount
func (pb *ProgressBar) Add(n int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pb.current += n
	if pb.current > pb.total {
		pb.current = pb.total
	}

	now := time.Now()
	if now.Sub(pb.lastUpdate) >= pb.updateRate || pb.current == pb.total {
		pb.render()
		pb.lastUpdate = now
	}
}

// Finish completes the progress bar
func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if pb.finished {
		return
	}

	if pb.current != pb.total {
		pb.current = pb.total
		pb.render()
	}
	pb.finished = true

	if pb.isTerminal {
		fmt.Fprint(pb.writer, "\n")
	}
}

func (pb *ProgressBar) percentage() float64 {
	if pb.total == 0 {
		return 100
	}
	return float64(pb.current) / float64(pb.total) * 100
}

// render draws the progress bar
func (pb *ProgressBar) render() {
	if !pb.isTerminal {
		if pb.current%10 == 0 || pb.current == pb.total {
			fmt.Fprintf(pb.writer, "%s: %d/%d (%.1f%%)\n", pb.prefix, pb.current, pb.total, pb.percentage())
		}
		return
	}

	filledWidth := pb.width
	if pb.total > 0 {
		filledWidth = pb.width * pb.current / pb.total
	}
	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", pb.width-filledWidth)

	elapsed := time.Since(pb.startTime)
	var eta string
	if pb.current > 0 && pb.current < pb.total {
		remaining := time.Duration(float64(elapsed) * float64(pb.total-pb.current) / float64(pb.current))
		eta = fmt.Sprintf(" ETA: %s", formatDuration(remaining))
	} else if pb.current == pb.total {
		eta = fmt.Sprintf(" Completed in %s", formatDuration(elapsed))
	}

	fmt.Fprintf(pb.writer, "\r\033[K%s [%s] %d/%d (%.1f%%)%s",
		pb.prefix, bar, pb.current, pb.total, pb.percentage(), eta)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an indeterminate "working" indicator. Off a terminal it
// prints the message once.
type Spinner struct {
	message    string
	writer     io.Writer
	interval   time.Duration
	isTerminal bool

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a spinner writing to w
func NewSpinner(w io.Writer, message string) *Spinner {
	tty, _ := isTerminal(w)
	return &Spinner{
		message:    message,
		writer:     w,
		interval:   100 * time.Millisecond,
		isTerminal: tty,
	}
}

// Start begins animating. Calling Start on a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}

	if !s.isTerminal {
		fmt.Fprintf(s.writer, "%s\n", s.message)
		s.stop = make(chan struct{})
		s.stopped = make(chan struct{})
		close(s.stopped)
		return
	}

	s.stop = make(chan struct{})
	s.stopped = make(chan struct{})
	go s.run(s.stop, s.stopped)
}

func (s *Spinner) run(stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.writer, "\r\033[K%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
		select {
		case <-stop:
			fmt.Fprint(s.writer, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, stopped := s.stop, s.stopped
	s.stop, s.stopped = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-stopped
}

// Wrap runs delay with the spinner visible
func (s *Spinner) Wrap(delay func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		s.Start()
		defer s.Stop()
		return delay(ctx)
	}
}
