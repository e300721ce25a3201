// Package search implements the incremental fuzzy matcher over a plugin
// corpus. Queries are subsequence matches: every query rune must appear in
// a term in order, case-insensitively. Scoring favors contiguous runs,
// start-of-term matches, and shorter terms; an entry ranks by its
// best-matching term.
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lumen-sh/lumen/internal/entry"
	"github.com/lumen-sh/lumen/internal/plugin"
)

// Result is one ranked corpus entry.
type Result struct {
	ID    entry.ID
	Score int
}

// Options configures a Matcher.
type Options struct {
	// Limit caps the result list size. Zero means unlimited.
	Limit int

	// CacheSize is the maximum number of memoized queries. Zero disables
	// the cache.
	CacheSize int
}

// DefaultOptions returns sensible defaults for interactive use.
func DefaultOptions() Options {
	return Options{
		Limit:     0,
		CacheSize: 512,
	}
}

// indexedTerm is one search term prepared for scanning: the folded runes
// drive the case-insensitive subsequence scan, the original runes carry the
// casing the scorer needs for word-start detection. Folding per rune keeps
// both slices the same length, so match indices are valid in either.
type indexedTerm struct {
	folded []rune
	orig   []rune
}

// Matcher ranks corpus entries for query strings. It is bound to a single
// corpus: term preparation happened at construction, so per-keystroke
// queries only scan and score. Query results depend only on (corpus, text);
// the internal cache is pure memoization.
type Matcher struct {
	corpus *plugin.Corpus
	terms  [][]indexedTerm
	scorer Scorer
	cache  *cache
	limit  int
}

// NewMatcher indexes a corpus for querying.
func NewMatcher(corpus *plugin.Corpus, opts Options) *Matcher {
	records := corpus.Records()
	terms := make([][]indexedTerm, len(records))
	for i, rec := range records {
		ts := make([]indexedTerm, len(rec.Terms))
		for j, t := range rec.Terms {
			orig := []rune(t)
			folded := make([]rune, len(orig))
			for k, r := range orig {
				folded[k] = unicode.ToLower(r)
			}
			ts[j] = indexedTerm{folded: folded, orig: orig}
		}
		terms[i] = ts
	}

	var c *cache
	if opts.CacheSize > 0 {
		c = newCache(opts.CacheSize)
	}

	return &Matcher{
		corpus: corpus,
		terms:  terms,
		scorer: DefaultScorer(),
		cache:  c,
		limit:  opts.Limit,
	}
}

// Corpus returns the corpus this matcher indexes.
func (m *Matcher) Corpus() *plugin.Corpus {
	return m.corpus
}

// Query returns the ranked results for text. The empty query is the browse
// state: every corpus entry in flatten order. Ties break on corpus order,
// so output is fully deterministic.
func (m *Matcher) Query(text string) []Result {
	text = strings.ToLower(strings.TrimSpace(text))

	if text == "" {
		return m.allResults()
	}

	if m.cache != nil {
		if hit := m.cache.get(text); hit != nil {
			return hit
		}
	}

	queryRunes := []rune(text)
	records := m.corpus.Records()

	results := make([]Result, 0, len(records))
	for i := range records {
		score, ok := m.bestTermScore(queryRunes, m.terms[i])
		if !ok {
			continue
		}
		results = append(results, Result{ID: records[i].ID, Score: score})
	}

	// Stable sort keeps corpus order within equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	results = m.applyLimit(results)
	if m.cache != nil {
		m.cache.set(text, results)
	}
	return results
}

// bestTermScore returns the maximum score over the record's terms, false if
// no term matches.
func (m *Matcher) bestTermScore(queryRunes []rune, terms []indexedTerm) (int, bool) {
	best := 0
	matched := false
	buf := make([]int, 0, len(queryRunes))
	for _, term := range terms {
		matches, ok := subsequence(queryRunes, term.folded, buf[:0])
		if !ok {
			continue
		}
		matched = true
		if score := m.scorer.Score(queryRunes, term.orig, matches); score > best {
			best = score
		}
	}
	return best, matched
}

// subsequence finds query runes in term via a greedy left-to-right scan.
func subsequence(queryRunes, termRunes []rune, matches []int) ([]int, bool) {
	qi := 0
	for i := 0; i < len(termRunes) && qi < len(queryRunes); i++ {
		if termRunes[i] == queryRunes[qi] {
			matches = append(matches, i)
			qi++
		}
	}
	if qi != len(queryRunes) {
		return nil, false
	}
	return matches, true
}

// allResults is the browse state for the empty query.
func (m *Matcher) allResults() []Result {
	records := m.corpus.Records()
	results := make([]Result, len(records))
	for i := range records {
		results[i] = Result{ID: records[i].ID}
	}
	return m.applyLimit(results)
}

func (m *Matcher) applyLimit(results []Result) []Result {
	if m.limit > 0 && len(results) > m.limit {
		return results[:m.limit]
	}
	return results
}
