package completion

import (
	"sort"
	"strings"

	"github.com/quillkit/quill/pkg/levenshtein"
)

// PrefixFilter keeps candidates whose Label starts with query.
var PrefixFilter Filter = FilterFunc(func(query string, candidates []Candidate) []Candidate {
	var out []Candidate

	for _, c := range candidates {
		if strings.HasPrefix(c.Label, query) {
			out = append(out, c)
		}
	}

	return out
})

// InfixFilter keeps candidates whose Label contains query anywhere.
var InfixFilter Filter = FilterFunc(func(query string, candidates []Candidate) []Candidate {
	var out []Candidate

	for _, c := range candidates {
		if strings.Contains(c.Label, query) {
			out = append(out, c)
		}
	}

	return out
})

// wildcardPattern compiles a spaces-are-wildcards query into ordered
// literal segments plus anchor flags, per the `^`, `%`, `$`, literal `/`
// grammar: a leading `^` anchors the first segment to the start of the
// label, a trailing `$` anchors the last segment to the end, `%` (or a run
// of spaces) matches any run of characters between segments, and `/` is
// always literal (so path components can be matched piece by piece).
type wildcardPattern struct {
	anchorStart bool
	anchorEnd   bool
	segments    []string
}

func compileWildcard(query string) wildcardPattern {
	p := wildcardPattern{}

	q := query
	if strings.HasPrefix(q, "^") {
		p.anchorStart = true
		q = q[1:]
	}

	if strings.HasSuffix(q, "$") {
		p.anchorEnd = true
		q = q[:len(q)-1]
	}

	q = strings.ReplaceAll(q, "%", " ")

	for _, seg := range strings.Fields(q) {
		if seg != "" {
			p.segments = append(p.segments, seg)
		}
	}

	return p
}

// match reports whether label satisfies p, and if so the byte offset
// where the first segment matched (used for ranking: earlier is better).
func (p wildcardPattern) match(label string) (int, bool) {
	if len(p.segments) == 0 {
		return 0, true
	}

	pos := 0
	firstIdx := -1

	for i, seg := range p.segments {
		idx := strings.Index(label[pos:], seg)
		if i == len(p.segments)-1 && p.anchorEnd {
			// An end-anchored segment can only match at its last occurrence.
			idx = strings.LastIndex(label[pos:], seg)
		}

		if idx < 0 {
			return 0, false
		}

		idx += pos

		if i == 0 {
			firstIdx = idx

			if p.anchorStart && idx != 0 {
				return 0, false
			}
		}

		pos = idx + len(seg)

		if i == len(p.segments)-1 && p.anchorEnd && pos != len(label) {
			return 0, false
		}
	}

	return firstIdx, true
}

// WildcardFilter implements the spaces-are-wildcards mode: each whitespace
// run in the query becomes a `%` wildcard gap, `^`/`$` anchor to the start
// and end of the label, and `/` is matched literally so it can be used to
// separate path segments in the query.
var WildcardFilter Filter = FilterFunc(func(query string, candidates []Candidate) []Candidate {
	pattern := compileWildcard(query)

	type scored struct {
		cand Candidate
		pos  int
	}

	var matches []scored

	for _, c := range candidates {
		if pos, ok := pattern.match(c.Label); ok {
			matches = append(matches, scored{c, pos})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = m.cand
	}

	return out
})

// FuzzyFilter ranks candidates by Levenshtein distance to query, keeping
// only those within maxDistance and sorting closest-first. It is meant as
// a secondary filter applied after one of the exact modes narrows the
// candidate set, not a replacement for them.
type FuzzyFilter struct {
	MaxDistance int
}

func (f FuzzyFilter) Filter(query string, candidates []Candidate) []Candidate {
	type scored struct {
		cand Candidate
		dist int
	}

	var ruler levenshtein.Ruler

	var matches []scored

	for _, c := range candidates {
		d := ruler.Distance(query, c.Label)
		if d <= f.MaxDistance {
			matches = append(matches, scored{c, d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = m.cand
	}

	return out
}
