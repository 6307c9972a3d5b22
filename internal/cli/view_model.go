package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/cli/formatter"
	"github.com/alexanderramin/parada/internal/contract"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type statusLoadedMsg struct {
	resp *contract.StatusResponse
	err  error
}

type viewKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func newViewKeyMap() viewKeyMap {
	return viewKeyMap{
		Next:   key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→", "next phase")),
		Prev:   key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev phase")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k viewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Reload, k.Quit}
}

// viewModel browses the merged hierarchy one phase at a time. Tab 0 shows
// every phase.
type viewModel struct {
	app  *App
	keys viewKeyMap
	vp   viewport.Model

	resp    *contract.StatusResponse
	tab     int
	loading bool
	err     error

	width, height int
	quitting      bool
}

func newViewModel(app *App) viewModel {
	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
	vp.MouseWheelEnabled = true
	return viewModel{app: app, keys: newViewKeyMap(), vp: vp, loading: true}
}

func (m viewModel) Init() tea.Cmd {
	return m.load()
}

func (m viewModel) load() tea.Cmd {
	status := m.app.Status
	return func() tea.Msg {
		req := contract.NewStatusRequest()
		req.IncludeSchedule = true
		resp, err := status.GetStatus(context.Background(), req)
		return statusLoadedMsg{resp: resp, err: err}
	}
}

// selectedPhase is empty on the overview tab.
func (m viewModel) selectedPhase() domain.PhaseID {
	if m.tab == 0 {
		return ""
	}
	return domain.PhaseOrder[m.tab-1]
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-4, 1)
		m.refresh()
		return m, nil

	case statusLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.resp = msg.resp
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.tab = (m.tab + 1) % (len(domain.PhaseOrder) + 1)
			m.refresh()
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.tab = (m.tab + len(domain.PhaseOrder)) % (len(domain.PhaseOrder) + 1)
			m.refresh()
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// refresh re-renders the viewport content for the current tab.
func (m *viewModel) refresh() {
	m.vp.SetContent(m.body())
}

func (m viewModel) body() string {
	if m.err != nil {
		var cerr *contract.Error
		if errors.As(m.err, &cerr) && cerr.Code == contract.ErrNoData {
			return formatter.Dim("No snapshots yet. Run 'parada ingest' first.")
		}
		return formatter.StyleRed.Render("Error: " + m.err.Error())
	}
	if m.resp == nil || m.resp.Schedule == nil {
		return ""
	}
	return formatter.FormatSchedule(m.resp.Schedule, formatter.TreeOptions{Phase: m.selectedPhase()})
}

func (m viewModel) tabs() string {
	names := []string{"Todas"}
	for _, id := range domain.PhaseOrder {
		names = append(names, domain.NewPhase(id).Name)
	}
	parts := make([]string, len(names))
	for i, n := range names {
		if i == m.tab {
			parts[i] = formatter.StyleHeader.Render("[" + n + "]")
		} else {
			parts[i] = formatter.Dim(" " + n + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m viewModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch {
	case m.loading && m.resp == nil:
		b.WriteString(formatter.Dim("Loading..."))
	case m.height > 0:
		b.WriteString(m.vp.View())
	default:
		b.WriteString(m.body())
	}
	b.WriteString("\n")

	hints := make([]string, 0, 4)
	for _, k := range m.keys.ShortHelp() {
		hints = append(hints, formatter.Dim(k.Help().Key+": "+k.Help().Desc))
	}
	if m.resp != nil {
		hints = append(hints, formatter.Dim(fmt.Sprintf("%d%%", m.resp.Summary.OverallProgress)))
	}
	b.WriteString(strings.Join(hints, "  "))
	return b.String()
}
