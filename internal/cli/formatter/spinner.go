package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner redraws one status line on out until stopped. It is used outside
// a tea.Program, so it borrows the bubbles frame set and ticks itself.
type Spinner struct {
	out   io.Writer
	label string
	kind  spinner.Spinner

	once sync.Once
	quit chan struct{}
	done chan struct{}
}

func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{
		out:   out,
		label: label,
		kind:  spinner.Dot,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (s *Spinner) run() {
	defer close(s.done)
	t := time.NewTicker(s.kind.FPS)
	defer t.Stop()

	for n := 0; ; n++ {
		frame := s.kind.Frames[n%len(s.kind.Frames)]
		fmt.Fprintf(s.out, "\r  %s %s", StylePurple.Render(frame), Dim(s.label))
		select {
		case <-s.quit:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-t.C:
		}
	}
}

// Stop clears the line and waits for the redraw loop to exit. Repeated
// calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// StartSpinner starts a spinner and returns its Stop.
func StartSpinner(out io.Writer, label string) func() {
	s := NewSpinner(out, label)
	go s.run()
	return s.Stop
}
