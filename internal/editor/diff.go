package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/quillkit/quill/internal/buffer"
)

// DiffHunk is one contiguous equal, added, or removed run from a
// buffer-against-disk comparison.
type DiffHunk struct {
	Op   diffmatchpatch.Operation
	Text string
}

// DiffAgainstDisk compares buf's in-memory contents against the file it
// was loaded from, line by line, the same Myers-diff-over-line-tokens
// approach the teacher's diff pipeline runs on blob pairs.
func DiffAgainstDisk(buf *buffer.Buffer) ([]DiffHunk, error) {
	if buf.Kind != buffer.KindFile {
		return nil, fmt.Errorf("editor: %s has no backing file to diff against", buf.Name)
	}

	path := filepath.Join(buf.Dir, buf.Name)

	onDisk, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("editor: read %s: %w", path, err)
	}

	inMemory := buf.Contents.Slice(0, buf.Contents.Len())

	dmp := diffmatchpatch.New()

	lineText1, lineText2, lineArray := dmp.DiffLinesToChars(string(onDisk), string(inMemory))
	diffs := dmp.DiffMain(lineText1, lineText2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)
	diffs = dmp.DiffCleanupSemantic(diffs)

	hunks := make([]DiffHunk, 0, len(diffs))
	for _, d := range diffs {
		hunks = append(hunks, DiffHunk{Op: d.Type, Text: d.Text})
	}

	return hunks, nil
}

// FormatDiff renders hunks as unified +/- lines, the status-line summary
// the "diff-against-disk" command shows.
func FormatDiff(hunks []DiffHunk) string {
	if len(hunks) == 0 {
		return "no changes since disk"
	}

	var b strings.Builder

	for _, h := range hunks {
		prefix := " "

		switch h.Op {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range strings.Split(strings.TrimSuffix(h.Text, "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}
