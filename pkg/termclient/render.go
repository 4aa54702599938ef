package termclient

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// cursorTo is the ANSI CSI sequence moving the cursor to a 1-based
// (row, col), matching what ncurses' move()+refresh() produces under the
// hood without going through curses itself.
func cursorTo(w io.Writer, row, col int) {
	fmt.Fprintf(w, "\x1b[%d;%dH", row+1, col+1)
}

// Paint writes the cells of cur that differ from prev (or every cell, if
// prev is nil or a different size) to w as a minimal sequence of cursor
// moves and colored runs, the ANSI equivalent of render.cpp only touching
// terminal cells whose Cell changed since the last frame.
func Paint(w io.Writer, cur, prev *Grid) {
	sameSize := prev != nil && prev.Rows == cur.Rows && prev.Cols == cur.Cols

	for row := 0; row < cur.Rows; row++ {
		col := 0
		for col < cur.Cols {
			c := cur.At(row, col)

			if sameSize && c == prev.At(row, col) {
				col++
				continue
			}

			runStart := col
			runColor := c.Color

			var run []rune

			for col < cur.Cols {
				cc := cur.At(row, col)
				if cc.Color != runColor {
					break
				}

				if sameSize && cc == prev.At(row, col) && len(run) > 0 {
					break
				}

				run = append(run, cc.Rune)
				col++
			}

			cursorTo(w, row, runStart)
			writeRun(w, run, runColor)
		}
	}
}

func writeRun(w io.Writer, run []rune, c *color.Color) {
	s := string(run)
	if c == nil {
		fmt.Fprint(w, s)
		return
	}

	c.Fprint(w, s)
}

// HideCursor and ShowCursor toggle terminal cursor visibility (DECTCEM),
// used while painting a frame so the cursor doesn't visibly jump cell to
// cell as Paint writes each run.
func HideCursor(w io.Writer) { fmt.Fprint(w, "\x1b[?25l") }
func ShowCursor(w io.Writer) { fmt.Fprint(w, "\x1b[?25h") }

// MoveCursor places the terminal's real cursor at (row, col), called once
// after Paint finishes so it lands on the active window's point.
func MoveCursor(w io.Writer, row, col int) { cursorTo(w, row, col) }

// ClearScreen wipes the terminal and homes the cursor, used once at
// startup and on a client-requested full redraw.
func ClearScreen(w io.Writer) { fmt.Fprint(w, "\x1b[2J\x1b[H") }
