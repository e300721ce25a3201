package luaplug

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/lumen-sh/lumen/internal/entry"
	"github.com/lumen-sh/lumen/internal/plugin"
)

// decodeRegistration converts the plugin() payload into the registered name
// and a validated entry forest. Shape problems (wrong types, non-sequence
// entries) are fatal registration errors. Structurally invalid entries are
// dropped individually: the rest of the unit's entries survive and the
// first violation comes back as a non-fatal invalid-entry diagnostic.
func decodeRegistration(payload *lua.LTable) (string, []*entry.Entry, *plugin.Error, *plugin.Error) {
	name := ""
	switch v := payload.RawGetString("name").(type) {
	case lua.LString:
		name = string(v)
	case *lua.LNilType:
	default:
		return "", nil, nil, &plugin.Error{
			Kind: plugin.KindRegistration,
			Err:  fmt.Errorf("plugin field \"name\" must be a string, got %s", v.Type()),
		}
	}

	raw := payload.RawGetString("entries")
	tbl, ok := raw.(*lua.LTable)
	if !ok {
		return "", nil, nil, &plugin.Error{
			Kind: plugin.KindRegistration,
			Err:  fmt.Errorf("plugin field \"entries\" must be a sequence, got %s", raw.Type()),
		}
	}

	dec := &forestDecoder{}
	entries, err := dec.forest(tbl)
	if err != nil {
		return "", nil, nil, &plugin.Error{Kind: plugin.KindRegistration, Err: err}
	}

	return name, entries, dec.invalid, nil
}

// forestDecoder walks entry sequences, dropping structurally invalid
// entries and remembering the first violation as a diagnostic.
type forestDecoder struct {
	invalid *plugin.Error
}

func (d *forestDecoder) forest(tbl *lua.LTable) ([]*entry.Entry, error) {
	n := tbl.Len()
	forest := make([]*entry.Entry, 0, n)
	for i := 1; i <= n; i++ {
		e, err := d.entry(tbl.RawGetInt(i))
		if err != nil {
			if errors.Is(err, entry.ErrInvalidEntry) {
				if d.invalid == nil {
					d.invalid = &plugin.Error{
						Kind: plugin.KindInvalidEntry,
						Err:  fmt.Errorf("entry %d: %w", i, err),
					}
				}
				continue
			}
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		forest = append(forest, e)
	}
	return forest, nil
}

// entry strictly decodes one entry table. Loose shapes are rejected, never
// coerced.
func (d *forestDecoder) entry(v lua.LValue) (*entry.Entry, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected an entry table, got %s", v.Type())
	}

	name, err := optString(tbl, "name")
	if err != nil {
		return nil, err
	}
	exec, err := optString(tbl, "exec")
	if err != nil {
		return nil, err
	}

	terms, err := optStrings(tbl, "search_terms")
	if err != nil {
		return nil, err
	}

	flags, err := decodeFlags(tbl.RawGetString("exec_flags"))
	if err != nil {
		return nil, err
	}

	var children []*entry.Entry
	switch raw := tbl.RawGetString("children").(type) {
	case *lua.LTable:
		children, err = d.forest(raw)
		if err != nil {
			return nil, err
		}
	case *lua.LNilType:
	default:
		return nil, fmt.Errorf("field \"children\" must be a sequence, got %s", raw.Type())
	}

	return entry.New(name, exec, terms, flags, children)
}

// decodeFlags decodes the exec_flags table. Only is_term and should_fork
// are allowed.
func decodeFlags(v lua.LValue) (entry.Flags, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		if _, isNil := v.(*lua.LNilType); isNil {
			return 0, nil
		}
		return 0, fmt.Errorf("field \"exec_flags\" must be a table, got %s", v.Type())
	}

	var flags entry.Flags
	var ferr error
	tbl.ForEach(func(k, val lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			ferr = fmt.Errorf("exec_flags key %s is not a string", k.String())
			return
		}
		b, ok := val.(lua.LBool)
		if !ok {
			ferr = fmt.Errorf("exec_flags.%s must be a boolean", key)
			return
		}
		switch string(key) {
		case "is_term":
			if bool(b) {
				flags |= entry.FlagTerminal
			}
		case "should_fork":
			// Accepted for compatibility with existing plugin scripts and
			// ignored: every launch detaches from the launcher regardless.
		default:
			ferr = fmt.Errorf("exec_flags field %q is not in the allowed set [is_term, should_fork]", key)
		}
	})
	return flags, ferr
}

func optString(tbl *lua.LTable, key string) (string, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return "", nil
	default:
		return "", fmt.Errorf("field %q must be a string, got %s", key, v.Type())
	}
}

func optStrings(tbl *lua.LTable, key string) ([]string, error) {
	raw := tbl.RawGetString(key)
	seq, ok := raw.(*lua.LTable)
	if !ok {
		if _, isNil := raw.(*lua.LNilType); isNil {
			return nil, nil
		}
		return nil, fmt.Errorf("field %q must be a sequence of strings, got %s", key, raw.Type())
	}

	n := seq.Len()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, ok := seq.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("field %q element %d is not a string", key, i)
		}
		out = append(out, string(s))
	}
	return out, nil
}
