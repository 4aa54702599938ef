package buffer

import "sort"

// Cursor is a point plus an independent mark, giving an optional selection
// region when the two differ.
type Cursor struct {
	Point uint64
	Mark  uint64
	// LocalCopyChain marks a cursor whose kill-ring entries are private to
	// it rather than shared with the rest of the window (set by
	// per-cursor-copy commands).
	LocalCopyChain bool
}

// Start returns the lower of Point and Mark.
func (cu Cursor) Start() uint64 {
	if cu.Mark < cu.Point {
		return cu.Mark
	}

	return cu.Point
}

// End returns the higher of Point and Mark.
func (cu Cursor) End() uint64 {
	if cu.Mark > cu.Point {
		return cu.Mark
	}

	return cu.Point
}

// PositionAfterChanges applies the §4.3 adjustment rule to pos for every
// edit of every commit in commits, in order. Used for cursor rewriting and
// for any other stored position (jump-ring entries, scroll anchors).
func PositionAfterChanges(commits []Commit, pos uint64) uint64 {
	for _, commit := range commits {
		for _, e := range commit.Edits {
			pos = positionAfterEdit(pos, e)
		}
	}

	return pos
}

// AdjustCursors rewrites every cursor in cursors against commits in place.
func AdjustCursors(cursors []Cursor, commits []Commit) {
	for i := range cursors {
		cursors[i].Point = PositionAfterChanges(commits, cursors[i].Point)
		cursors[i].Mark = PositionAfterChanges(commits, cursors[i].Mark)
	}
}

// SortCursors sorts cursors by Point ascending. Idempotent. Returns the new
// index of the cursor that was at selectedIdx before sorting.
func SortCursors(cursors []Cursor, selectedIdx int) ([]Cursor, int) {
	if len(cursors) == 0 {
		return cursors, selectedIdx
	}

	selected := cursors[selectedIdx]

	type indexed struct {
		cursor Cursor
		orig   int
	}

	tmp := make([]indexed, len(cursors))
	for i, cu := range cursors {
		tmp[i] = indexed{cursor: cu, orig: i}
	}

	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].cursor.Point < tmp[j].cursor.Point })

	newSelected := selectedIdx

	for i, t := range tmp {
		cursors[i] = t.cursor

		if t.orig == selectedIdx {
			newSelected = i
		}
	}

	_ = selected

	return cursors, newSelected
}

// DedupCursors removes cursors whose Point coincides with an earlier
// cursor's Point, keeping the earliest and rebiasing selectedIdx. Cursors
// must already be sorted by Point. Idempotent.
func DedupCursors(cursors []Cursor, selectedIdx int) ([]Cursor, int) {
	if len(cursors) == 0 {
		return cursors, selectedIdx
	}

	out := cursors[:1]
	keptForOrig := make([]int, 1, len(cursors))
	keptForOrig[0] = 0

	for i := 1; i < len(cursors); i++ {
		if cursors[i].Point == out[len(out)-1].Point {
			continue
		}

		out = append(out, cursors[i])
		keptForOrig = append(keptForOrig, i)
	}

	newSelected := 0

	for newIdx, origIdx := range keptForOrig {
		if origIdx <= selectedIdx {
			newSelected = newIdx
		}
	}

	return out, newSelected
}

// ClampCursors clamps every cursor's Point and Mark to [0, maxPos].
func ClampCursors(cursors []Cursor, maxPos uint64) {
	for i := range cursors {
		if cursors[i].Point > maxPos {
			cursors[i].Point = maxPos
		}

		if cursors[i].Mark > maxPos {
			cursors[i].Mark = maxPos
		}
	}
}

// KillExtraCursors discards every cursor but the selected one, returning a
// single-element slice with that cursor at index 0.
func KillExtraCursors(cursors []Cursor, selectedIdx int) []Cursor {
	if len(cursors) == 0 {
		return cursors
	}

	return []Cursor{cursors[selectedIdx]}
}
