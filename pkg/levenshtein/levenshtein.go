// Copyright (c) 2015, Arbo von Monkiewitsch All rights reserved.
// Use of this source code is governed by a BSD-style
// license.

// Package levenshtein measures how many single-character edits separate
// two strings — the distance internal/completion's fuzzy filter ranks
// candidates by.
package levenshtein

// Ruler holds the scratch state a Distance call needs, reused across
// calls so ranking a whole candidate list allocates once instead of per
// comparison.
type Ruler struct {
	column []int
	peq    [asciiBound]uint64
}

func (r *Ruler) scratchColumn(n int) []int {
	if cap(r.column) < n {
		r.column = make([]int, n)
	}

	return r.column[:n]
}

// Distance returns the Levenshtein edit distance between a and b: the
// fewest single-rune insertions, deletions, or substitutions that turn a
// into b. See https://en.wikipedia.org/wiki/Levenshtein_distance.
//
// b's prefix column is kept in O(len(a)) space rather than a full
// len(a) x len(b) table; a (the string in the inner loop, conventionally
// the shorter operand here) up to 64 runes additionally takes a
// bit-parallel fast path, see bitparallel.go.
func (r *Ruler) Distance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	if len(runesB) == 0 {
		return len(runesA)
	}

	if len(runesA) > 0 && len(runesA) <= myersMaxPattern {
		return r.bitParallelDistance(runesA, runesB)
	}

	return r.tableDistance(runesA, runesB)
}

// tableDistance is the classic single-row dynamic-programming table, used
// once a no longer fits the bit-parallel path's 64-rune word.
func (r *Ruler) tableDistance(runesA, runesB []rune) int {
	lenA := len(runesA)

	column := r.scratchColumn(lenA + 1)
	for i := 1; i <= lenA; i++ {
		column[i] = i
	}

	for col, rb := range runesB {
		column[0] = col + 1
		lastDiag := col

		for row := range lenA {
			oldDiag := column[row+1]

			cost := 0
			if runesA[row] != rb {
				cost = 1
			}

			column[row+1] = min(
				column[row+1]+1,
				column[row]+1,
				lastDiag+cost,
			)
			lastDiag = oldDiag
		}
	}

	return column[lenA]
}
