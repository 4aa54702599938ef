// Package termclient is the ANSI terminal client: a cell grid the editor
// paints into, a raw-mode terminal driver, and a key decoder for the
// escape sequences a real terminal sends, grounded on the source's ncurses
// client (src/clients/ncurses.cpp) but implemented without a curses
// binding, painting SGR sequences directly the way fatih/color does.
package termclient

import (
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Cell is one terminal character position: a rune plus the foreground
// color and attributes painted under it, mirroring render/cell.hpp's
// Cell (char + Face) without the ncurses color-pair indirection.
type Cell struct {
	Rune  rune
	Color *color.Color
}

// Grid is a fixed-size buffer of Cells a client paints a frame into before
// diffing it against the previously painted frame (render/window_cache.hpp's
// job: only touch terminal cells that actually changed).
type Grid struct {
	Rows, Cols int
	cells      []Cell
}

// NewGrid allocates a blank rows x cols grid.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{Rows: rows, Cols: cols, cells: make([]Cell, rows*cols)}
	g.Clear()

	return g
}

// Resize reallocates the grid to the given dimensions, discarding content.
func (g *Grid) Resize(rows, cols int) {
	g.Rows, g.Cols = rows, cols
	g.cells = make([]Cell, rows*cols)
	g.Clear()
}

// Clear fills every cell with a blank space in the default color.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{Rune: ' '}
	}
}

// At returns the cell at (row, col), or the zero Cell if out of bounds.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return Cell{}
	}

	return g.cells[row*g.Cols+col]
}

// Set writes r at (row, col) with the given color, silently clipping
// writes outside the grid (a window computing its own bounds need not
// special-case the last row/column).
func (g *Grid) Set(row, col int, r rune, c *color.Color) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}

	g.cells[row*g.Cols+col] = Cell{Rune: r, Color: c}

	// Wide runes (CJK, emoji) occupy a second cell; blank it so the
	// diff/paint pass doesn't also try to draw whatever was there before.
	if runewidth.RuneWidth(r) == 2 && col+1 < g.Cols {
		g.cells[row*g.Cols+col+1] = Cell{Rune: 0}
	}
}

// SetString writes s starting at (row, col), left to right, clipping at
// the grid's right edge.
func (g *Grid) SetString(row, col int, s string, c *color.Color) {
	for _, r := range s {
		g.Set(row, col, r, c)
		col += runewidth.RuneWidth(r)

		if col >= g.Cols {
			return
		}
	}
}
