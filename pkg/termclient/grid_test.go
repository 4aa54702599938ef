package termclient_test

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/quillkit/quill/pkg/termclient"
)

func TestNewGridIsBlank(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(3, 5)
	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, 5, g.Cols)
	assert.Equal(t, ' ', g.At(1, 1).Rune)
}

func TestGridSetAndAtRoundTrip(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(2, 2)
	c := color.New(color.FgRed)
	g.Set(0, 1, 'x', c)

	cell := g.At(0, 1)
	assert.Equal(t, 'x', cell.Rune)
	assert.Same(t, c, cell.Color)
}

func TestGridSetClipsOutOfBounds(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(1, 1)
	assert.NotPanics(t, func() { g.Set(5, 5, 'x', nil) })
	assert.Equal(t, termclient.Cell{}, g.At(5, 5))
}

func TestGridSetStringWritesLeftToRight(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(1, 10)
	g.SetString(0, 0, "hi", nil)

	assert.Equal(t, 'h', g.At(0, 0).Rune)
	assert.Equal(t, 'i', g.At(0, 1).Rune)
}

func TestGridResizeClearsContent(t *testing.T) {
	t.Parallel()

	g := termclient.NewGrid(2, 2)
	g.Set(0, 0, 'x', nil)
	g.Resize(3, 3)

	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, ' ', g.At(0, 0).Rune)
}
