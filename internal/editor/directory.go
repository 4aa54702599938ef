package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// dirSortFormatOffset is the byte offset of an entry line's name field,
// and the ":DirectorySortFormat" tag's load-bearing constant (§6): the
// date field, a space, a one-byte directory marker, and a separating space.
const dirSortFormatOffset = 22

// headerByModTime and headerByName are the two header-line variants. The
// by-mod-time header is exactly 26 columns (§6); the by-name header carries
// a trailing " (V)" hint showing how to switch back, so it runs longer.
// Column 19 holds 'V' in the by-mod-time header and nothing in the other,
// which is how command_directory_toggle_sort-equivalents decide which sort
// is active without a separate flag.
const (
	headerByModTime = "Modification Date (V) File\n"
	headerByName    = "Modification Date     File (V)\n"
)

type direntry struct {
	name    string
	isDir   bool
	modTime time.Time
	size    int64
}

// BuildDirectoryListing renders dir's contents in the §6 directory buffer
// format: a 26-or-30-column header line naming the active sort, then one
// `YYYY/MM/DD HH:MM:SS / NAME` or `YYYY/MM/DD HH:MM:SS   NAME` entry line
// per file, `/` marking directories. Entries sort by name ascending, or by
// modification time descending, per sortByModTime.
func BuildDirectoryListing(dir string, sortByModTime bool) ([]byte, error) {
	osEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("editor: read dir %q: %w", dir, err)
	}

	entries := make([]direntry, 0, len(osEntries))

	for _, e := range osEntries {
		info, infoErr := e.Info()

		var modTime time.Time

		var size int64

		if infoErr == nil {
			modTime = info.ModTime()
			size = info.Size()
		}

		entries = append(entries, direntry{
			name:    e.Name(),
			isDir:   e.IsDir(),
			modTime: modTime,
			size:    size,
		})
	}

	if sortByModTime {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].modTime.After(entries[j].modTime)
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].name < entries[j].name
		})
	}

	out := make([]byte, 0, 4096)

	if sortByModTime {
		out = append(out, headerByModTime...)
	} else {
		out = append(out, headerByName...)
	}

	for _, e := range entries {
		out = appendEntry(out, e)
	}

	return out, nil
}

func appendEntry(out []byte, e direntry) []byte {
	if e.modTime.IsZero() {
		out = append(out, "                   "...)
	} else {
		out = append(out, e.modTime.Format("2006/01/02 15:04:05")...)
	}

	if e.isDir {
		out = append(out, " / "...)
	} else {
		out = append(out, "   "...)
	}

	out = append(out, e.name...)
	out = append(out, '\n')

	return out
}

// EntryPath resolves the path under dir named by a directory buffer entry
// line, given the full line text from its start-of-line.
func EntryPath(dir, line string) (string, bool) {
	if len(line) <= dirSortFormatOffset {
		return "", false
	}

	name := line[dirSortFormatOffset:]
	if name == "" {
		return "", false
	}

	return filepath.Join(dir, name), true
}

// Summary renders a human-readable one-line count/size summary for dir's
// entries, for a status-line message rather than the buffer body itself
// (the buffer format in BuildDirectoryListing is load-bearing and must not
// carry this text).
func Summary(dir string) (string, error) {
	osEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("editor: read dir %q: %w", dir, err)
	}

	var totalSize int64

	var fileCount, dirCount int

	for _, e := range osEntries {
		if e.IsDir() {
			dirCount++
			continue
		}

		fileCount++

		if info, err := e.Info(); err == nil {
			totalSize += info.Size()
		}
	}

	return fmt.Sprintf("%d files, %d directories, %s total", fileCount, dirCount, humanize.Bytes(uint64(totalSize))), nil
}
