// Package render implements the §4.6 viewport/animated-scroll pipeline and
// the mode-line/completion-popup text layout built on top of window
// layout and tokenized contents.
package render

import (
	"time"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/window"
)

// Margins controls the scroll-grace bands described in §4.6: a cursor
// that would land within ScrollOutsideRows of the viewport edge triggers a
// recompute of visible_start, and similarly for columns.
type Margins struct {
	ScrollOutsideRows       int
	ScrollOutsideColumns    int
	JumpHalfPageWhenOutside bool
}

// DefaultMargins mirrors the teacher's theme defaults: a few lines/columns
// of grace on every edge.
var DefaultMargins = Margins{ScrollOutsideRows: 3, ScrollOutsideColumns: 5}

// scrollAnimationCap is the hard ceiling on an animated scroll's duration
// regardless of distance (§4.6 point 6, §8 scenario 6).
const scrollAnimationCap = 200 * time.Millisecond

// UpdateViewport runs one frame of viewport maintenance against leaf w:
// recompute visible_start/column_offset against the margins and advance
// the animated-scroll interpolation. It does not rewrite cursors; the
// commit listener installed by window.Attach does that.
func UpdateViewport(w *window.Window, margins Margins, now time.Time) {
	if w.Tag != window.Unified {
		return
	}

	leaf := w.Leaf
	buf := leaf.Handle.Buffer()

	buf.RLock()
	defer buf.RUnlock()

	if len(leaf.Cursors) == 0 {
		return
	}

	selected := leaf.Cursors[leaf.SelectedCursor]
	cursorLine := buf.Contents.GetLineNumber(selected.Point)

	idealStartLine := idealVisibleStartLine(buf, leaf, cursorLine, margins)

	startLine := buf.Contents.GetLineNumber(leaf.VisibleStart)
	if idealStartLine != startLine {
		retarget(leaf, startLine, idealStartLine, now)
	}

	advanceAnimation(leaf, buf, now)

	adjustColumnOffset(leaf, selected, margins)

	leaf.SelectedCursorMark = selected.Mark
	leaf.CursorCount = len(leaf.Cursors)
}

// idealVisibleStartLine recomputes the top line so the cursor sits at
// least margins.ScrollOutsideRows away from either edge of the window,
// snapping to half-page boundaries when JumpHalfPageWhenOutside is set.
func idealVisibleStartLine(buf *buffer.Buffer, leaf *window.UnifiedWindow, cursorLine int, margins Margins) int {
	startLine := buf.Contents.GetLineNumber(leaf.VisibleStart)
	rows := leaf.Rows
	if rows <= 0 {
		rows = 1
	}

	grace := margins.ScrollOutsideRows
	if grace*2 >= rows {
		grace = (rows - 1) / 2
	}

	top := startLine + grace
	bottom := startLine + rows - grace - 1

	switch {
	case cursorLine < top:
		if margins.JumpHalfPageWhenOutside {
			return halfPageSnap(cursorLine, rows)
		}

		return max(0, cursorLine-grace)
	case cursorLine > bottom:
		if margins.JumpHalfPageWhenOutside {
			return halfPageSnap(cursorLine, rows)
		}

		return cursorLine - rows + grace + 1
	default:
		return startLine
	}
}

func halfPageSnap(cursorLine, rows int) int {
	half := rows / 2
	if half < 1 {
		half = 1
	}

	return (cursorLine / half) * half
}

// retarget starts (or restarts, mid-flight) a scroll animation toward
// targetLine. If an animation is already in progress, it restarts from the
// currently interpolated line rather than snapping, per §8 scenario 6.
func retarget(leaf *window.UnifiedWindow, fromLine, targetLine int, now time.Time) {
	current := fromLine
	if leaf.Scroll.Active {
		current = currentInterpolatedLine(leaf.Scroll, now)
	}

	distance := targetLine - current
	if distance < 0 {
		distance = -distance
	}

	duration := time.Duration(distance) * time.Millisecond / 2
	if duration > scrollAnimationCap {
		duration = scrollAnimationCap
	}

	if duration <= 0 {
		leaf.Scroll = window.AnimatedScroll{}
		leaf.VisibleStart = lineStart(leaf, targetLine)

		return
	}

	leaf.Scroll = window.AnimatedScroll{
		Active:    true,
		StartTime: now,
		StartLine: current,
		EndTime:   now.Add(duration),
		EndLine:   targetLine,
	}
}

// advanceAnimation moves VisibleStart to the interpolated line for now,
// clearing the animation once it completes.
func advanceAnimation(leaf *window.UnifiedWindow, buf *buffer.Buffer, now time.Time) {
	if !leaf.Scroll.Active {
		return
	}

	line := currentInterpolatedLine(leaf.Scroll, now)
	leaf.VisibleStart = lineStart(leaf, line)

	if !now.Before(leaf.Scroll.EndTime) {
		leaf.Scroll = window.AnimatedScroll{}
	}
}

// currentInterpolatedLine linearly interpolates between the animation's
// start and end line at time now, clamped to [StartLine, EndLine] (in
// either direction).
func currentInterpolatedLine(scroll window.AnimatedScroll, now time.Time) int {
	total := scroll.EndTime.Sub(scroll.StartTime)
	if total <= 0 {
		return scroll.EndLine
	}

	elapsed := now.Sub(scroll.StartTime)
	if elapsed <= 0 {
		return scroll.StartLine
	}

	if elapsed >= total {
		return scroll.EndLine
	}

	frac := float64(elapsed) / float64(total)

	return scroll.StartLine + int(float64(scroll.EndLine-scroll.StartLine)*frac)
}

func lineStart(leaf *window.UnifiedWindow, line int) uint64 {
	buf := leaf.Handle.Buffer()

	it := buf.Contents.IteratorAtLine(line)
	if it == nil {
		return leaf.VisibleStart
	}

	return it.Position()
}

// adjustColumnOffset applies the column-grace rule from §4.6 point 3. When
// WrapLongLines is set, the column offset is always forced to zero.
func adjustColumnOffset(leaf *window.UnifiedWindow, selected buffer.Cursor, margins Margins) {
	if leaf.WrapLongLines {
		leaf.ColumnOffset = 0
		return
	}

	buf := leaf.Handle.Buffer()

	col := columnOf(buf, selected.Point)
	cols := leaf.Cols
	if cols <= 0 {
		cols = 1
	}

	grace := margins.ScrollOutsideColumns
	if grace*2 >= cols {
		grace = (cols - 1) / 2
	}

	left := leaf.ColumnOffset + grace
	right := leaf.ColumnOffset + cols - grace - 1

	switch {
	case col < left:
		leaf.ColumnOffset = max(0, col-grace)
	case col > right:
		leaf.ColumnOffset = col - cols + grace + 1
	}
}

// columnOf computes pos's column within its line (bytes since the
// preceding newline).
func columnOf(buf *buffer.Buffer, pos uint64) int {
	line := buf.Contents.GetLineNumber(pos)

	it := buf.Contents.IteratorAtLine(line)
	if it == nil {
		return 0
	}

	return int(pos - it.Position())
}
