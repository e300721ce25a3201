package entry

import (
	"strconv"
	"strings"
)

// ID is a stable identifier for a corpus record: the owning unit's ordinal
// plus the depth-first child-offset path within that unit's entry forest.
// IDs are only meaningful relative to the corpus that produced them.
type ID string

// MakeID builds an ID from a unit ordinal and a tree path.
func MakeID(unit int, path []int) ID {
	var b strings.Builder
	b.WriteString(strconv.Itoa(unit))
	for i, p := range path {
		if i == 0 {
			b.WriteByte(':')
		} else {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(p))
	}
	return ID(b.String())
}

// Unit returns the unit ordinal encoded in the ID, or -1 if malformed.
func (id ID) Unit() int {
	s := string(id)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// Path returns the child-offset path encoded in the ID.
func (id ID) Path() []int {
	s := string(id)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return nil
	}
	parts := strings.Split(s[i+1:], ".")
	path := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		path = append(path, n)
	}
	return path
}
