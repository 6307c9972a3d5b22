// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and returned commands are executed inline, so
// a test sees the model state after every message has settled without
// starting a tea.Program.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained commands one message may produce.
const MaxDrainDepth = 100

// DefaultCmdTimeout is how long a command may run before it is dropped.
// Ticking commands (spinners, timers) never return in time and are skipped.
const DefaultCmdTimeout = 2 * time.Second

type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been returned by the model.
	Quitting bool

	timeout time.Duration
}

type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.timeout = timeout
	}
}

// New wraps model. Call Start to run its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, timeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs Init and drains what it produces.
func (d *Driver) Start() *Driver {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
	return d
}

// Send delivers msg and drains the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func (d *Driver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg := d.exec(cmd)
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quitting = true
	default:
		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		d.drain(next, depth+1)
	}
}

func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.timeout):
		return nil
	}
}
