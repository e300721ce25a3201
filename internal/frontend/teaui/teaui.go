// Package teaui is the bubbletea rendering backend. The program goroutine
// owns the display; the session talks to it through the Backend adapter,
// which turns renders into messages and key presses into session events.
package teaui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lumen-sh/lumen/internal/frontend"
)

// viewMsg replaces the model's displayed view.
type viewMsg frontend.View

// Backend adapts a bubbletea program to the frontend contract.
type Backend struct {
	prog   *tea.Program
	events chan frontend.Event
	done   chan struct{}
}

// New creates a bubbletea backend.
func New() *Backend {
	return &Backend{
		events: make(chan frontend.Event, 16),
		done:   make(chan struct{}),
	}
}

// Init implements frontend.Backend.
func (b *Backend) Init() error {
	m := &model{events: b.events}
	b.prog = tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		defer close(b.done)
		_, _ = b.prog.Run()
		// The program quitting for any reason ends the session.
		select {
		case b.events <- frontend.Event{Type: frontend.EventCancel}:
		default:
		}
	}()
	return nil
}

// Close implements frontend.Backend.
func (b *Backend) Close() {
	if b.prog == nil {
		return
	}
	b.prog.Quit()
	<-b.done
}

// Render implements frontend.Backend.
func (b *Backend) Render(view frontend.View) {
	b.prog.Send(viewMsg(view))
}

// PollEvent implements frontend.Backend.
func (b *Backend) PollEvent() frontend.Event {
	return <-b.events
}

var (
	promptStyle   = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
	pluginStyle   = lipgloss.NewStyle().Faint(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	countStyle    = lipgloss.NewStyle().Faint(true)
)

// model is the bubbletea state: the query buffer it owns plus the latest
// view pushed by the session.
type model struct {
	events chan frontend.Event
	query  []rune
	view   frontend.View
	height int
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = frontend.View(msg)

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if ev, ok := m.translateKey(msg); ok {
			m.emit(ev)
		}
	}
	return m, nil
}

// emit hands an event to the session without ever blocking the tea loop.
// The session may be away from PollEvent (a slow plugin rebuild) while its
// next Render is queued on this same loop; a blocking send here would
// deadlock the two. Excess input is dropped instead.
func (m *model) emit(ev frontend.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

func (m *model) translateKey(msg tea.KeyMsg) (frontend.Event, bool) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		return frontend.Event{Type: frontend.EventCancel}, true

	case tea.KeyEnter:
		return frontend.Event{Type: frontend.EventActivate}, true

	case tea.KeyUp, tea.KeyCtrlP:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: -1}, true

	case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: 1}, true

	case tea.KeyPgUp:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: -10}, true

	case tea.KeyPgDown:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: 10}, true

	case tea.KeyCtrlR, tea.KeyF5:
		return frontend.Event{Type: frontend.EventRefresh}, true

	case tea.KeyCtrlU:
		m.query = m.query[:0]
		return m.queryChanged(), true

	case tea.KeyBackspace:
		if len(m.query) == 0 {
			return frontend.Event{}, false
		}
		m.query = m.query[:len(m.query)-1]
		return m.queryChanged(), true

	case tea.KeyRunes, tea.KeySpace:
		m.query = append(m.query, msg.Runes...)
		return m.queryChanged(), true
	}
	return frontend.Event{}, false
}

func (m *model) queryChanged() frontend.Event {
	return frontend.Event{Type: frontend.EventQueryChanged, Query: string(m.query)}
}

func (m *model) View() string {
	var sb strings.Builder
	sb.WriteString(promptStyle.Render("> " + m.view.Query))
	sb.WriteByte('\n')

	maxRows := len(m.view.Rows)
	if m.height > 2 && maxRows > m.height-2 {
		maxRows = m.height - 2
	}
	for i := 0; i < maxRows; i++ {
		row := m.view.Rows[i]
		line := fmt.Sprintf("  %s  %s", row.Name, pluginStyle.Render("("+row.Plugin+")"))
		if i == m.view.Selected {
			line = selectedStyle.Render("> " + row.Name + "  (" + row.Plugin + ")")
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	if m.view.Status != "" {
		sb.WriteString(statusStyle.Render(m.view.Status))
	} else {
		sb.WriteString(countStyle.Render(fmt.Sprintf("%d match(es)", m.view.Total)))
	}
	return sb.String()
}
