package termclient_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillkit/quill/pkg/termclient"
)

func TestPaintWithNoPreviousFrameDrawsEverything(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(1, 3)
	g.SetString(0, 0, "abc", nil)

	var buf bytes.Buffer
	termclient.Paint(&buf, g, nil)

	assert.Contains(t, buf.String(), "abc")
}

func TestPaintSkipsUnchangedCells(t *testing.T) {
	t.Parallel()

	prev := termclient.NewGrid(1, 3)
	prev.SetString(0, 0, "abc", nil)

	cur := termclient.NewGrid(1, 3)
	cur.SetString(0, 0, "abc", nil)
	cur.Set(0, 1, 'X', nil)

	var buf bytes.Buffer
	termclient.Paint(&buf, cur, prev)

	assert.Contains(t, buf.String(), "X")
	assert.NotContains(t, buf.String(), "abc")
}

func TestClearScreenEmitsResetSequence(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	termclient.ClearScreen(&buf)

	assert.Equal(t, "\x1b[2J\x1b[H", buf.String())
}

func TestHideShowCursor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	termclient.HideCursor(&buf)
	termclient.ShowCursor(&buf)

	assert.Equal(t, "\x1b[?25l\x1b[?25h", buf.String())
}
