package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lumen-sh/lumen/internal/frontend"
)

func newSimBackend(t *testing.T) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	b := newWithScreen(sim)
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(b.Close)
	sim.SetSize(80, 24)
	return b, sim
}

func TestKeyTranslation(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want frontend.Event
	}{
		{"escape cancels", tcell.KeyEscape, 0, frontend.Event{Type: frontend.EventCancel}},
		{"ctrl-c cancels", tcell.KeyCtrlC, 0, frontend.Event{Type: frontend.EventCancel}},
		{"enter activates", tcell.KeyEnter, 0, frontend.Event{Type: frontend.EventActivate}},
		{"up moves back", tcell.KeyUp, 0, frontend.Event{Type: frontend.EventSelectionMoved, Delta: -1}},
		{"down moves forward", tcell.KeyDown, 0, frontend.Event{Type: frontend.EventSelectionMoved, Delta: 1}},
		{"page down jumps", tcell.KeyPgDn, 0, frontend.Event{Type: frontend.EventSelectionMoved, Delta: 10}},
		{"ctrl-r refreshes", tcell.KeyCtrlR, 0, frontend.Event{Type: frontend.EventRefresh}},
		{"rune extends query", tcell.KeyRune, 'f', frontend.Event{Type: frontend.EventQueryChanged, Query: "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newSimBackend(t)
			got, ok := b.translateKey(tcell.NewEventKey(tt.key, tt.r, tcell.ModNone))
			if !ok {
				t.Fatal("key not translated")
			}
			if got != tt.want {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQueryBufferEditing(t *testing.T) {
	b, _ := newSimBackend(t)

	for _, r := range "fire" {
		b.translateKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	ev, _ := b.translateKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	if ev.Query != "fir" {
		t.Errorf("after backspace query = %q, want fir", ev.Query)
	}

	ev, _ = b.translateKey(tcell.NewEventKey(tcell.KeyCtrlU, 0, tcell.ModNone))
	if ev.Query != "" {
		t.Errorf("after ctrl-u query = %q, want empty", ev.Query)
	}

	// Backspace on an empty buffer is a no-op, not an event.
	if _, ok := b.translateKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone)); ok {
		t.Error("backspace on empty buffer produced an event")
	}
}

func TestRenderShowsRowsAndSelection(t *testing.T) {
	b, sim := newSimBackend(t)

	b.Render(frontend.View{
		Query: "fi",
		Rows: []frontend.Row{
			{Name: "Firefox", Plugin: "desktop"},
			{Name: "Files", Plugin: "desktop"},
		},
		Selected: 1,
		Total:    2,
	})

	content := screenText(sim)
	for _, want := range []string{"> fi", "Firefox", "Files", "2 match(es)"} {
		if !strings.Contains(content, want) {
			t.Errorf("screen missing %q", want)
		}
	}
}

func TestRenderStatusLine(t *testing.T) {
	b, sim := newSimBackend(t)

	b.Render(frontend.View{Status: "1 plugin(s) failed; see log", Selected: -1})
	if !strings.Contains(screenText(sim), "1 plugin(s) failed") {
		t.Error("status not rendered")
	}
}

// screenText flattens the simulation screen into one string with rows
// joined by newlines.
func screenText(sim tcell.SimulationScreen) string {
	cells, width, height := sim.GetContents()
	out := make([]rune, 0, (width+1)*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			if len(c.Runes) > 0 {
				out = append(out, c.Runes[0])
			} else {
				out = append(out, ' ')
			}
		}
		out = append(out, '\n')
	}
	return string(out)
}
