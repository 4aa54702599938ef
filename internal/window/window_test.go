package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/window"
)

func newHandle(t *testing.T, text string) *buffer.Handle {
	t.Helper()

	buf := buffer.NewBuffer(1, "scratch", buffer.KindTemporary, []byte(text))

	return buffer.NewHandle(buf, nil)
}

func TestSplitAndClose(t *testing.T) {
	t.Parallel()

	root := window.NewUnified(newHandle(t, "a"))
	second := window.NewUnified(newHandle(t, "b"))

	split := window.Split(root, second, window.VerticalSplit, 0.5)

	assert.Equal(t, window.VerticalSplit, split.Tag)
	assert.Same(t, split, root.Parent)
	assert.Same(t, split, second.Parent)

	var leaves []*window.Window
	split.Walk(func(w *window.Window) { leaves = append(leaves, w) })
	assert.Len(t, leaves, 2)

	selected := window.Close(root)
	require.NotNil(t, selected)
	assert.Same(t, second, selected)
	assert.Nil(t, second.Parent)
}

func TestLayoutDistributesRowsAndCols(t *testing.T) {
	t.Parallel()

	root := window.NewUnified(newHandle(t, "a"))
	second := window.NewUnified(newHandle(t, "b"))
	split := window.Split(root, second, window.HorizontalSplit, 0.5)

	window.Layout(split, 0, 0, 40, 80)

	assert.Equal(t, 20, root.Leaf.Rows)
	assert.Equal(t, 20, second.Leaf.Rows)
	assert.Equal(t, 80, root.Leaf.Cols)
	assert.Equal(t, 0, root.Leaf.Row)
	assert.Equal(t, 20, second.Leaf.Row)
}

func TestLayoutClampsNarrowSplits(t *testing.T) {
	t.Parallel()

	root := window.NewUnified(newHandle(t, "a"))
	second := window.NewUnified(newHandle(t, "b"))
	split := window.Split(root, second, window.VerticalSplit, 0.99)

	window.Layout(split, 0, 0, 10, 4)

	assert.GreaterOrEqual(t, root.Leaf.Cols, 2)
	assert.GreaterOrEqual(t, second.Leaf.Cols, 2)
}

func TestAttachAdjustsCursorsAfterCommit(t *testing.T) {
	t.Parallel()

	buf := buffer.NewBuffer(1, "scratch", buffer.KindTemporary, []byte("hello world"))
	handle := buffer.NewHandle(buf, nil)
	w := window.NewUnified(handle)
	w.Leaf.Cursors = []buffer.Cursor{{Point: 8, Mark: 8}}
	w.Attach()

	tx := buffer.NewTransaction()
	tx.Insert(0, []byte("XX"))

	_, err := buf.Apply(tx)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), w.Leaf.Cursors[0].Point)
}

func TestAddCursorSortsAndDedupes(t *testing.T) {
	t.Parallel()

	handle := newHandle(t, "hello world")
	w := window.NewUnified(handle)
	w.Leaf.Cursors = []buffer.Cursor{{Point: 5, Mark: 5}}

	w.AddCursor(1)
	w.AddCursor(5)

	assert.Len(t, w.Leaf.Cursors, 2)
	assert.Equal(t, uint64(1), w.Leaf.Cursors[0].Point)
	assert.Equal(t, uint64(5), w.Leaf.Cursors[1].Point)
}

func TestKillExtraCursors(t *testing.T) {
	t.Parallel()

	handle := newHandle(t, "hello world")
	w := window.NewUnified(handle)
	w.Leaf.Cursors = []buffer.Cursor{{Point: 1}, {Point: 3}, {Point: 5}}
	w.Leaf.SelectedCursor = 1

	w.KillExtraCursors()

	assert.Len(t, w.Leaf.Cursors, 1)
	assert.Equal(t, uint64(3), w.Leaf.Cursors[0].Point)
}
