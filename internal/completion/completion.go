// Package completion implements the pluggable completion engine contract
// described in §4.7: a filter narrows a candidate set against a query, and
// an engine decides whether/when to (re)run a filter against the current
// frame.
package completion

// Candidate is one completion result: the text to insert and the label to
// display (often the same string, but a candidate may show extra detail —
// a type signature, a file path — beyond what gets inserted).
type Candidate struct {
	Insert string
	Label  string
}

// Filter narrows candidates against query. Implementations must be safe to
// call repeatedly against a growing/shrinking query as the user types.
type Filter interface {
	Filter(query string, candidates []Candidate) []Candidate
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(query string, candidates []Candidate) []Candidate

func (f FilterFunc) Filter(query string, candidates []Candidate) []Candidate {
	return f(query, candidates)
}

// Source supplies the full candidate set for a completion session, e.g.
// buffer words, file paths, or keywords from the active mode.
type Source interface {
	Candidates() []Candidate
}

// Cache is the per-window completion state: the active source/filter pair,
// the last query filtered, and the resulting candidate list plus selection.
// Holding this on the window lets the popup redraw without re-filtering
// every frame when nothing changed.
type Cache struct {
	Source Source
	Filter Filter

	lastQuery string
	results   []Candidate
	selected  int

	initial bool
}

// NewCache starts a completion session against source using filter.
func NewCache(source Source, filter Filter) *Cache {
	return &Cache{Source: source, Filter: filter, initial: true}
}

// Engine implements the `engine(editor, ctx, is_initial_frame) -> bool`
// contract from §4.7: given the current query, it refilters if needed and
// reports whether the popup should remain open (false closes it, e.g. on
// an empty result set past the first frame).
func (c *Cache) Engine(query string) bool {
	isInitialFrame := c.initial
	c.initial = false

	if !isInitialFrame && query == c.lastQuery {
		return len(c.results) > 0
	}

	c.lastQuery = query
	c.results = c.Filter.Filter(query, c.Source.Candidates())

	if c.selected >= len(c.results) {
		c.selected = 0
	}

	return isInitialFrame || len(c.results) > 0
}

// Results returns the candidates produced by the most recent Engine call.
func (c *Cache) Results() []Candidate { return c.results }

// Selected returns the currently highlighted candidate index, or -1 if
// there are no results.
func (c *Cache) Selected() int {
	if len(c.results) == 0 {
		return -1
	}

	return c.selected
}

// MoveSelection shifts the selected index by delta, wrapping around.
func (c *Cache) MoveSelection(delta int) {
	n := len(c.results)
	if n == 0 {
		return
	}

	c.selected = ((c.selected+delta)%n + n) % n
}
