package window

import "github.com/quillkit/quill/internal/buffer"

// Attach registers a commit listener on w's buffer that rewrites w's
// cursors per §4.2 step (d) after every commit: positions are adjusted
// forward/backward across the new edits, then sorted, deduplicated, and
// clamped to the buffer's new length.
func (w *Window) Attach() {
	if w.Tag != Unified {
		return
	}

	leaf := w.Leaf
	buf := leaf.Handle.Buffer()

	buf.OnCommit(func(c buffer.Commit) {
		buffer.AdjustCursors(leaf.Cursors, []buffer.Commit{c})

		leaf.Cursors, leaf.SelectedCursor = buffer.SortCursors(leaf.Cursors, leaf.SelectedCursor)
		leaf.Cursors, leaf.SelectedCursor = buffer.DedupCursors(leaf.Cursors, leaf.SelectedCursor)

		// buf's write lock is already held by the Apply call that triggered
		// this listener, so Contents is read directly rather than through
		// RLock (which would deadlock against the non-reentrant mutex).
		buffer.ClampCursors(leaf.Cursors, buf.Contents.Len())

		leaf.changeIndex = buf.Changes.Len()
	})
}

// AddCursor appends a new cursor at pos, selecting it, and normalizes the
// cursor list (sort, dedup) so a cursor placed on top of an existing one
// doesn't create a visible duplicate.
func (w *Window) AddCursor(pos uint64) {
	leaf := w.Leaf

	leaf.Cursors = append(leaf.Cursors, buffer.Cursor{Point: pos, Mark: pos})
	leaf.SelectedCursor = len(leaf.Cursors) - 1

	leaf.Cursors, leaf.SelectedCursor = buffer.SortCursors(leaf.Cursors, leaf.SelectedCursor)
	leaf.Cursors, leaf.SelectedCursor = buffer.DedupCursors(leaf.Cursors, leaf.SelectedCursor)
}

// KillExtraCursors drops every cursor but the selected one, used by the
// "collapse to one cursor" command.
func (w *Window) KillExtraCursors() {
	leaf := w.Leaf
	leaf.Cursors = buffer.KillExtraCursors(leaf.Cursors, leaf.SelectedCursor)
	leaf.SelectedCursor = 0
}
