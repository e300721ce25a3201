// Package tui is the tcell rendering backend: a prompt line, the ranked
// result list, and a status line.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lumen-sh/lumen/internal/frontend"
)

// Backend renders on a tcell screen. It owns the query input buffer: key
// events are folded into the buffer here and surface to the session as
// whole-query changes.
type Backend struct {
	screen tcell.Screen
	query  []rune
	last   frontend.View

	styleDefault  tcell.Style
	styleSelected tcell.Style
	stylePrompt   tcell.Style
	styleDim      tcell.Style
	styleStatus   tcell.Style
}

// New creates a tcell backend on a fresh screen.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newWithScreen(screen), nil
}

// newWithScreen wires a backend onto an existing screen. Tests pass a
// simulation screen here.
func newWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		screen:        screen,
		styleDefault:  tcell.StyleDefault,
		styleSelected: tcell.StyleDefault.Reverse(true).Bold(true),
		stylePrompt:   tcell.StyleDefault.Bold(true),
		styleDim:      tcell.StyleDefault.Dim(true),
		styleStatus:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	}
}

// Init implements frontend.Backend.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.HideCursor()
	return nil
}

// Close implements frontend.Backend.
func (b *Backend) Close() {
	b.screen.Fini()
}

// Render implements frontend.Backend.
func (b *Backend) Render(view frontend.View) {
	b.last = view
	b.screen.Clear()
	width, height := b.screen.Size()
	if width == 0 || height == 0 {
		b.screen.Show()
		return
	}

	b.drawText(0, 0, width, b.stylePrompt, "> "+view.Query)
	b.screen.ShowCursor(len([]rune(view.Query))+2, 0)

	maxRows := height - 2
	for i, row := range view.Rows {
		if i >= maxRows {
			break
		}
		style := b.styleDefault
		marker := "  "
		if i == view.Selected {
			style = b.styleSelected
			marker = "> "
		}
		line := fmt.Sprintf("%s%s  (%s)", marker, row.Name, row.Plugin)
		b.drawText(0, i+1, width, style, line)
	}

	status := view.Status
	if status == "" {
		status = fmt.Sprintf("%d match(es)", view.Total)
	}
	b.drawText(0, height-1, width, b.statusStyle(view), status)

	b.screen.Show()
}

func (b *Backend) statusStyle(view frontend.View) tcell.Style {
	if view.Status != "" {
		return b.styleStatus
	}
	return b.styleDim
}

// PollEvent implements frontend.Backend. Resize events are handled
// internally by redrawing the last view.
func (b *Backend) PollEvent() frontend.Event {
	for {
		switch ev := b.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if out, ok := b.translateKey(ev); ok {
				return out
			}
		case *tcell.EventResize:
			b.screen.Sync()
			b.Render(b.last)
		}
	}
}

// translateKey folds one key event into the input buffer or a session
// event. Keys with no binding report false.
func (b *Backend) translateKey(ev *tcell.EventKey) (frontend.Event, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return frontend.Event{Type: frontend.EventCancel}, true

	case tcell.KeyEnter:
		return frontend.Event{Type: frontend.EventActivate}, true

	case tcell.KeyUp, tcell.KeyCtrlP:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: -1}, true

	case tcell.KeyDown, tcell.KeyCtrlN, tcell.KeyTab:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: 1}, true

	case tcell.KeyPgUp:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: -10}, true

	case tcell.KeyPgDn:
		return frontend.Event{Type: frontend.EventSelectionMoved, Delta: 10}, true

	case tcell.KeyCtrlR, tcell.KeyF5:
		return frontend.Event{Type: frontend.EventRefresh}, true

	case tcell.KeyCtrlU:
		b.query = b.query[:0]
		return b.queryChanged(), true

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(b.query) == 0 {
			return frontend.Event{}, false
		}
		b.query = b.query[:len(b.query)-1]
		return b.queryChanged(), true

	case tcell.KeyRune:
		b.query = append(b.query, ev.Rune())
		return b.queryChanged(), true
	}
	return frontend.Event{}, false
}

func (b *Backend) queryChanged() frontend.Event {
	return frontend.Event{Type: frontend.EventQueryChanged, Query: string(b.query)}
}

func (b *Backend) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= maxWidth {
			return
		}
		b.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
