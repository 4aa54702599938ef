// Package window implements the window tree: unified leaves showing one
// buffer each, and vertical/horizontal split interior nodes, per §3 and
// §4.5. The tree owns its children; parents are non-owning back-pointers.
package window

import (
	"time"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/completion"
)

// Tag discriminates the Window variant, mirroring the source's
// UNIFIED/VERTICAL_SPLIT/HORIZONTAL_SPLIT tagged union (§9).
type Tag int

const (
	Unified Tag = iota
	VerticalSplit
	HorizontalSplit
)

// AnimatedScroll records an in-flight scroll animation: interpolate
// StartLine/StartPos toward EndLine/EndPos between StartTime and
// EndTime (§4.6). Active is false when no animation is running.
type AnimatedScroll struct {
	Active    bool
	StartTime time.Time
	StartLine int
	StartPos  uint64
	EndTime   time.Time
	EndLine   int
	EndPos    uint64
}

// UnifiedWindow is a leaf window: one buffer handle, its cursor list, and the
// viewport/completion state needed to render it.
type UnifiedWindow struct {
	Handle         *buffer.Handle
	Cursors        []buffer.Cursor
	SelectedCursor int

	// VisibleStart is the byte offset of the first glyph drawn.
	VisibleStart uint64
	// SelectedCursorMark is the last-seen mark of the selected cursor, used
	// to detect region-visibility changes across frames.
	SelectedCursorMark uint64
	// CursorCount is the cursor count last seen, used to detect newly
	// added cursors that might need to be scrolled into view.
	CursorCount int

	ColumnOffset  int
	WrapLongLines bool

	Completion *completion.Cache

	Rows, Cols int
	Row, Col   int // top-left screen offset
	Pinned     bool

	Scroll AnimatedScroll

	// changeIndex is the change-log length this window's cursors were last
	// rewritten against (§9 open question: revalidate every frame, clear
	// on undo rather than trying to invert changes).
	changeIndex int
}

// Window is the tagged node: Leaf is set when Tag is Unified, and
// First/Second are set for a split.
type Window struct {
	Tag    Tag
	Parent *Window

	Leaf *UnifiedWindow

	// Split fields, valid when Tag != Unified.
	First, Second *Window
	Fused         bool
	// SplitRatio is the fraction of the parent's area (rows for a
	// horizontal split, columns for a vertical one) given to First.
	SplitRatio float64
}

// NewUnified wraps handle in a new leaf window.
func NewUnified(handle *buffer.Handle) *Window {
	return &Window{
		Tag: Unified,
		Leaf: &UnifiedWindow{
			Handle:         handle,
			Cursors:        []buffer.Cursor{{}},
			SelectedCursor: 0,
		},
	}
}

// Split replaces target in its parent's tree with a new split node whose
// First child is target and whose Second child is newWindow, preserving
// target's parent pointer chain.
func Split(target, newWindow *Window, tag Tag, ratio float64) *Window {
	split := &Window{
		Tag:        tag,
		Parent:     target.Parent,
		First:      target,
		Second:     newWindow,
		SplitRatio: ratio,
	}

	if target.Parent != nil {
		target.Parent.replaceChild(target, split)
	}

	target.Parent = split
	newWindow.Parent = split

	return split
}

// replaceChild swaps whichever of n's children equals old with replacement,
// preserving the parent pointer invariant.
func (n *Window) replaceChild(old, replacement *Window) {
	switch old {
	case n.First:
		n.First = replacement
	case n.Second:
		n.Second = replacement
	}

	replacement.Parent = n
}

// Sibling returns the other child of w's parent, or nil if w is the root.
func (w *Window) Sibling() *Window {
	if w.Parent == nil {
		return nil
	}

	if w.Parent.First == w {
		return w.Parent.Second
	}

	return w.Parent.First
}

// Close removes w from the tree, promoting its sibling into w's parent's
// slot. Returns the window that should become selected (w's sibling's
// first leaf), or nil if w was the root (nothing to close).
func Close(w *Window) *Window {
	parent := w.Parent
	if parent == nil {
		return nil
	}

	sibling := w.Sibling()
	grandparent := parent.Parent

	sibling.Parent = grandparent

	if grandparent != nil {
		grandparent.replaceChild(parent, sibling)
	}

	return sibling.FirstLeaf()
}

// FirstLeaf descends First children until it finds a unified leaf.
func (w *Window) FirstLeaf() *Window {
	for w.Tag != Unified {
		w = w.First
	}

	return w
}

// Walk calls fn for every unified leaf in the subtree rooted at w, in
// left-to-right order.
func (w *Window) Walk(fn func(*Window)) {
	if w == nil {
		return
	}

	if w.Tag == Unified {
		fn(w)
		return
	}

	w.First.Walk(fn)
	w.Second.Walk(fn)
}
