package entry

import (
	"errors"
	"strings"
	"testing"
)

func mustEntry(t *testing.T, name, exec string, children ...*Entry) *Entry {
	t.Helper()
	e, err := New(name, exec, nil, 0, children)
	if err != nil {
		t.Fatalf("New(%q, %q): %v", name, exec, err)
	}
	return e
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		dispName string
		exec     string
		children []*Entry
		wantErr  bool
		wantName string
	}{
		{"leaf", "Firefox", "firefox", nil, false, "Firefox"},
		{"name from exec", "", "/usr/bin/htop -d 10", nil, false, "htop"},
		{"no name no exec", "", "", nil, true, ""},
		{"empty leaf", "Empty", "", nil, true, ""},
		{"group", "Tools", "", []*Entry{{Name: "A", Exec: "a"}}, false, "Tools"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.dispName, tt.exec, nil, 0, tt.children)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Fatalf("expected ErrInvalidEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Name != tt.wantName {
				t.Errorf("name = %q, want %q", e.Name, tt.wantName)
			}
		})
	}
}

func TestNewTermsIncludeName(t *testing.T) {
	e, err := New("Super Mario World", "snes9x smw.sfc", []string{"smw", "snes"}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.Terms[0] != "Super Mario World" {
		t.Errorf("Terms[0] = %q, want the display name", e.Terms[0])
	}
	if len(e.Terms) != 3 {
		t.Errorf("got %d terms, want 3: %v", len(e.Terms), e.Terms)
	}
}

func TestWalkDepthFirst(t *testing.T) {
	forest := []*Entry{
		mustEntry(t, "0", "x",
			mustEntry(t, "00", "x"),
			mustEntry(t, "01", "x",
				mustEntry(t, "010", "x"),
				mustEntry(t, "011", "x"),
			),
			mustEntry(t, "02", "x"),
		),
		mustEntry(t, "1", "x",
			mustEntry(t, "10", "x"),
		),
	}

	var names []string
	Walk(forest, func(path []int, e *Entry) {
		names = append(names, e.Name)
	})

	want := "0 00 01 010 011 02 1 10"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("walk order = %q, want %q", got, want)
	}
}

func TestWalkPathsRoundTrip(t *testing.T) {
	forest := []*Entry{
		mustEntry(t, "a", "x", mustEntry(t, "b", "x", mustEntry(t, "c", "x"))),
		mustEntry(t, "d", "x"),
	}

	Walk(forest, func(path []int, e *Entry) {
		p := append([]int(nil), path...)
		if got := Get(forest, p); got != e {
			t.Errorf("Get(%v) = %v, want %q", p, got, e.Name)
		}
	})

	if Get(forest, []int{5}) != nil {
		t.Error("Get with out-of-range path should return nil")
	}
}

func TestIDRoundTrip(t *testing.T) {
	id := MakeID(3, []int{0, 2, 1})
	if id.Unit() != 3 {
		t.Errorf("Unit() = %d, want 3", id.Unit())
	}
	path := id.Path()
	if len(path) != 3 || path[0] != 0 || path[1] != 2 || path[2] != 1 {
		t.Errorf("Path() = %v, want [0 2 1]", path)
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"/usr/bin/cat mout.txt", []string{"/usr/bin/cat", "mout.txt"}},
		{`echo "Hello World!" done`, []string{"echo", "Hello World!", "done"}},
		{`grep 'a b' file`, []string{"grep", "a b", "file"}},
		{"run `with space`", []string{"run", "with space"}},
		{`printf a\ b`, []string{"printf", "a b"}},
		{"  spaced   out  ", []string{"spaced", "out"}},
		{"", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitCommand(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
