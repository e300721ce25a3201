package plugin

import (
	"github.com/lumen-sh/lumen/internal/entry"
)

// Record is one searchable corpus row: an entry reference, its owning
// plugin, and the pre-normalized search terms the matcher scans.
type Record struct {
	// ID is the stable identifier assigned at flatten time.
	ID entry.ID

	// Entry is the immutable entry this record points at.
	Entry *entry.Entry

	// Plugin is the name of the unit that produced the entry.
	Plugin string

	// Terms are the search terms in their original case; the matcher folds
	// case at query time so scoring still sees casing like camelCase word
	// starts. For group nodes the direct children's terms are folded in, so
	// a query matching a child also surfaces the group.
	Terms []string
}

// Corpus is the flattened, immutable view of all successful units' entries.
// It is built wholesale by Registry.Build and never mutated; readers need no
// locking.
type Corpus struct {
	// Generation orders corpora from the same registry. A corpus with a
	// lower generation than one already adopted is stale and must be
	// discarded.
	Generation uint64

	records []Record
	index   map[entry.ID]int
	diags   []*Error
}

// Len returns the number of records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Records returns all records in flatten order. The returned slice is the
// corpus's own; callers must not modify it.
func (c *Corpus) Records() []Record {
	return c.records
}

// Lookup returns the record for an ID.
func (c *Corpus) Lookup(id entry.ID) (Record, bool) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Diagnostics returns the per-unit failures recorded during the build.
func (c *Corpus) Diagnostics() []*Error {
	return c.diags
}

// flatten appends one unit's entry forest to the corpus, depth-first,
// assigning IDs from the unit ordinal and tree path.
func (c *Corpus) flatten(ordinal int, pluginName string, forest []*entry.Entry) {
	entry.Walk(forest, func(path []int, e *entry.Entry) {
		rec := Record{
			ID:     entry.MakeID(ordinal, path),
			Entry:  e,
			Plugin: pluginName,
			Terms:  collectTerms(e),
		}
		c.index[rec.ID] = len(c.records)
		c.records = append(c.records, rec)
	})
}

// collectTerms gathers an entry's terms as written, folding in direct
// children's terms for group nodes.
func collectTerms(e *entry.Entry) []string {
	terms := make([]string, 0, len(e.Terms))
	terms = append(terms, e.Terms...)
	if e.Exec == "" {
		for _, child := range e.Children {
			terms = append(terms, child.Terms...)
		}
	}
	return terms
}
