package render

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/quillkit/quill/internal/window"
)

var (
	modeLineName     = color.New(color.FgCyan, color.Bold)
	modeLineDirty    = color.New(color.FgYellow, color.Bold)
	modeLinePos      = color.New(color.FgWhite)
	modeLineReadOnly = color.New(color.FgRed, color.Bold)
)

// ModeLine renders the status line for leaf w: buffer name, dirty marker,
// read-only marker, and the selected cursor's line/column.
func ModeLine(w *window.Window) string {
	if w.Tag != window.Unified {
		return ""
	}

	leaf := w.Leaf
	buf := leaf.Handle.Buffer()

	buf.RLock()
	defer buf.RUnlock()

	name := modeLineName.Sprint(buf.Name)

	dirty := ""
	if !buf.Changes.IsUnchanged() {
		dirty = modeLineDirty.Sprint(" [+]")
	}

	readOnly := ""
	if buf.ReadOnly {
		readOnly = modeLineReadOnly.Sprint(" [RO]")
	}

	pos := ""
	if len(leaf.Cursors) > 0 {
		cursor := leaf.Cursors[leaf.SelectedCursor]
		line := buf.Contents.GetLineNumber(cursor.Point)
		lineStart := buf.Contents.IteratorAtLine(line)

		col := 0
		if lineStart != nil {
			col = int(cursor.Point - lineStart.Position())
		}

		pos = modeLinePos.Sprintf(" %d:%d", line+1, col+1)
	}

	cursorCount := ""
	if n := len(leaf.Cursors); n > 1 {
		cursorCount = fmt.Sprintf(" (%d cursors)", n)
	}

	return name + dirty + readOnly + pos + cursorCount
}

// CompletionPopup renders the filtered candidate list of leaf w's
// completion cache as a borderless go-pretty table, with the selected row
// marked. Returns "" if no completion session is active.
func CompletionPopup(w *window.Window, maxRows int) string {
	if w.Tag != window.Unified || w.Leaf.Completion == nil {
		return ""
	}

	cache := w.Leaf.Completion
	results := cache.Results()

	if len(results) == 0 {
		return ""
	}

	if maxRows > 0 && len(results) > maxRows {
		results = results[:maxRows]
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	selected := cache.Selected()

	for i, cand := range results {
		label := cand.Label
		if i == selected {
			label = color.New(color.FgBlack, color.BgWhite).Sprint(label)
		}

		tbl.AppendRow(table.Row{label})
	}

	return tbl.Render()
}
