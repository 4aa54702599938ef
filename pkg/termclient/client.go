package termclient

import (
	"context"
	"log/slog"

	"github.com/fatih/color"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editor"
	"github.com/quillkit/quill/internal/tokenize"
	"github.com/quillkit/quill/internal/window"
)

// Client drives an editor.Editor from a real terminal: it owns the raw
// terminal handle and a double-buffered Grid, matching the ncurses
// client's run() loop (raw mode, hide cursor, loop getch -> process ->
// render) without the curses binding in between.
type Client struct {
	term   *Terminal
	ed     *editor.Editor
	theme  *editor.Theme
	cur    *Grid
	prev   *Grid
	logger *slog.Logger
}

// NewClient wraps an already-open Terminal and editor.Editor.
func NewClient(term *Terminal, ed *editor.Editor, theme *editor.Theme, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	size, err := term.Size()
	if err != nil {
		return nil, err
	}

	return &Client{
		term:   term,
		ed:     ed,
		theme:  theme,
		cur:    NewGrid(size.Rows, size.Cols),
		logger: logger,
	}, nil
}

// Run drives the client until ctx is canceled or the terminal's key
// channel closes (stdin EOF), painting one frame per key batch received,
// the direct analogue of process_key_presses' read-process-render loop.
func (c *Client) Run(ctx context.Context) error {
	ClearScreen(c.term.Out())
	HideCursor(c.term.Out())

	defer ShowCursor(c.term.Out())

	c.paintFrame()

	for {
		select {
		case <-ctx.Done():
			return nil
		case keys, ok := <-c.term.Keys():
			if !ok {
				return nil
			}

			c.ed.Tick(ctx, keys)
			c.paintFrame()
		}
	}
}

// paintFrame resizes the grid to the terminal's current size, renders the
// selected window's visible buffer contents into it, and diffs the result
// against the previous frame.
func (c *Client) paintFrame() {
	size, err := c.term.Size()
	if err != nil {
		c.logger.Warn("termclient: size query failed", "error", err)
		return
	}

	if size.Rows != c.cur.Rows || size.Cols != c.cur.Cols {
		c.cur.Resize(size.Rows, size.Cols)
		c.prev = nil
	}

	c.cur.Clear()
	c.renderWindow(c.ed.Root, 0, 0, size.Rows, size.Cols)

	Paint(c.term.Out(), c.cur, c.prev)

	prevCopy := *c.cur
	prevCopy.cells = append([]Cell(nil), c.cur.cells...)
	c.prev = &prevCopy
}

// renderWindow paints w's subtree into the rectangle (row, col, rows,
// cols), splitting the rectangle along the split ratio for interior
// nodes, mirroring render.cpp's recursive window layout pass.
func (c *Client) renderWindow(w *window.Window, row, col, rows, cols int) {
	if w == nil || rows <= 0 || cols <= 0 {
		return
	}

	if w.Tag == window.Unified {
		c.renderLeaf(w, row, col, rows, cols)
		return
	}

	if w.Tag == window.HorizontalSplit {
		firstRows := int(float64(rows) * w.SplitRatio)
		c.renderWindow(w.First, row, col, firstRows, cols)
		c.renderWindow(w.Second, row+firstRows, col, rows-firstRows, cols)

		return
	}

	firstCols := int(float64(cols) * w.SplitRatio)
	c.renderWindow(w.First, row, col, rows, firstCols)
	c.renderWindow(w.Second, row, col+firstCols, rows, cols-firstCols)
}

func (c *Client) renderLeaf(w *window.Window, row, col, rows, cols int) {
	leaf := w.Leaf
	buf := leaf.Handle.Buffer()

	contents := buf.Contents
	start := leaf.VisibleStart
	end := contents.Len()

	var tokens []buffer.Token
	if cache, ok := buf.Tokens.(*tokenize.Cache); ok {
		tokens = cache.Tokens(buf, start, end)
	}

	it := contents.IteratorAt(start)

	for r := 0; r < rows; r++ {
		lineCol := 0

		for lineCol < cols {
			b, ok := it.Get()
			if !ok || b == '\n' {
				if ok {
					it.Advance(1)
				}

				break
			}

			c.cur.Set(row+r, col+lineCol, rune(b), c.tokenColor(tokens, it.Position()))
			lineCol++
			it.Advance(1)
		}

		if it.AtEOB() {
			break
		}
	}
}

// tokenColor resolves the theme color for the token spanning pos, falling
// back to the default color when no token covers it (a buffer with no
// tokenizer, or a position past the cached range).
func (c *Client) tokenColor(tokens []buffer.Token, pos uint64) *color.Color {
	if c.theme == nil {
		return nil
	}

	for _, tok := range tokens {
		if pos >= tok.Start && pos < tok.End {
			return c.theme.Color(tok.Type)
		}
	}

	return c.theme.Color(buffer.TokenDefault)
}
