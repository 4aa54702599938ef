package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/render"
	"github.com/quillkit/quill/internal/window"
)

func manyLines(n int) []byte {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("line\n")
	}

	return []byte(b.String())
}

func newLeaf(t *testing.T, text string, rows int) *window.Window {
	t.Helper()

	buf := buffer.NewBuffer(1, "scratch", buffer.KindTemporary, []byte(text))
	handle := buffer.NewHandle(buf, nil)
	w := window.NewUnified(handle)
	w.Leaf.Rows = rows
	w.Leaf.Cols = 80

	return w
}

func TestUpdateViewportScrollsCursorIntoView(t *testing.T) {
	t.Parallel()

	w := newLeaf(t, string(manyLines(1000)), 20)
	w.Leaf.Cursors[0].Point = uint64(500 * 5) // line ~500

	now := time.Now()
	render.UpdateViewport(w, render.DefaultMargins, now)

	assert.True(t, w.Leaf.Scroll.Active)
	assert.Equal(t, 484, w.Leaf.Scroll.EndLine)
}

func TestAnimatedScrollRestartsOnRetarget(t *testing.T) {
	t.Parallel()

	w := newLeaf(t, string(manyLines(1000)), 20)

	now := time.Now()
	w.Leaf.Cursors[0].Point = uint64(500 * 5)
	render.UpdateViewport(w, render.DefaultMargins, now)
	require.True(t, w.Leaf.Scroll.Active)
	require.Equal(t, 484, w.Leaf.Scroll.EndLine)

	mid := now.Add(50 * time.Millisecond)
	render.UpdateViewport(w, render.DefaultMargins, mid)

	startLineAtRetarget := w.Leaf.Scroll.StartLine
	require.NotEqual(t, 0, startLineAtRetarget, "should have progressed partway from line 0")

	w.Leaf.Cursors[0].Point = uint64(250 * 5)
	render.UpdateViewport(w, render.DefaultMargins, mid)

	assert.NotEqual(t, 484, w.Leaf.Scroll.EndLine, "target must move toward the new cursor line")
	assert.Equal(t, startLineAtRetarget, w.Leaf.Scroll.StartLine, "restart must continue from the interpolated line, not snap to 0")
	assert.NotEqual(t, 0, w.Leaf.Scroll.StartLine, "restart must continue from the interpolated line, not snap to 0")
	assert.NotEqual(t, 484, w.Leaf.Scroll.StartLine, "restart must not snap to the old target either")
}

func TestAnimatedScrollDurationClampedTo200ms(t *testing.T) {
	t.Parallel()

	w := newLeaf(t, string(manyLines(5000)), 20)
	w.Leaf.Cursors[0].Point = uint64(4000 * 5)

	now := time.Now()
	render.UpdateViewport(w, render.DefaultMargins, now)

	require.True(t, w.Leaf.Scroll.Active)
	assert.LessOrEqual(t, w.Leaf.Scroll.EndTime.Sub(w.Leaf.Scroll.StartTime), 200*time.Millisecond)
}

func TestColumnOffsetForcedToZeroWhenWrapping(t *testing.T) {
	t.Parallel()

	w := newLeaf(t, "a very long single line of text that exceeds the window width by a lot", 20)
	w.Leaf.WrapLongLines = true
	w.Leaf.ColumnOffset = 40
	w.Leaf.Cursors[0].Point = 60

	render.UpdateViewport(w, render.DefaultMargins, time.Now())

	assert.Equal(t, 0, w.Leaf.ColumnOffset)
}

func TestModeLineShowsDirtyAndCursorCount(t *testing.T) {
	t.Parallel()

	w := newLeaf(t, "hello", 20)

	line := render.ModeLine(w)
	assert.Contains(t, line, "scratch")
	assert.NotContains(t, line, "[+]")

	tx := buffer.NewTransaction()
	tx.Insert(0, []byte("X"))
	_, err := w.Leaf.Handle.Buffer().Apply(tx)
	require.NoError(t, err)

	line = render.ModeLine(w)
	assert.Contains(t, line, "[+]")

	w.Leaf.Cursors = append(w.Leaf.Cursors, buffer.Cursor{Point: 1, Mark: 1})
	line = render.ModeLine(w)
	assert.Contains(t, line, "(2 cursors)")
}
