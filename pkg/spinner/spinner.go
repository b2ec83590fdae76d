// Package spinner animates a terminal line while a blocking call runs.
//
// The animation is a side channel: it owns no state callers depend on and a
// stopped or disabled spinner behaves exactly like a running one from the
// caller's point of view.
package spinner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const (
	cyan  = "\033[96m"
	reset = "\033[0m"

	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
	clearLine  = "\r\033[K"

	DefaultInterval = 80 * time.Millisecond
)

var dots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type Spinner struct {
	w        io.Writer
	text     string
	interval time.Duration
	enabled  bool

	mu          sync.Mutex
	status      string
	statusCount int
	cancel      context.CancelFunc
	group       *errgroup.Group
}

type Option func(*Spinner)

func WithInterval(d time.Duration) Option {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTerminal overrides terminal detection.
func WithTerminal(enabled bool) Option {
	return func(s *Spinner) {
		s.enabled = enabled
	}
}

// New creates a spinner writing to w. It only animates when w is a terminal.
func New(w io.Writer, text string, opts ...Option) *Spinner {
	s := &Spinner{
		w:        w,
		text:     text,
		interval: DefaultInterval,
		enabled:  isTerminal(w),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start launches the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.cancel != nil {
		return
	}
	s.status, s.statusCount = "", 0

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.spin(ctx)
		return nil
	})
	s.cancel, s.group = cancel, g
}

// Stop ends the animation, waits for it to exit and clears the line. Only the
// first Stop after a Start has an effect.
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = g.Wait()
	io.WriteString(s.w, clearLine)
}

// Status sets the message shown next to the animation. Repeating the same
// message bumps a counter instead.
func (s *Spinner) Status(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == msg {
		s.statusCount++
		return
	}
	s.status, s.statusCount = msg, 1
}

func (s *Spinner) spin(ctx context.Context) {
	io.WriteString(s.w, hideCursor)
	defer io.WriteString(s.w, showCursor)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		io.WriteString(s.w, s.frame(dots[i%len(dots)]))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) frame(glyph string) string {
	s.mu.Lock()
	status, count := s.status, s.statusCount
	s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s%s %s", clearLine, cyan, glyph, reset, s.text)
	if status != "" {
		fmt.Fprintf(&b, " %s", status)
	}
	if count > 1 {
		fmt.Fprintf(&b, " (%dx)", count)
	}
	return b.String()
}
