package editor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/editor"
)

func writeTestFile(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestBuildDirectoryListingByModTimeHeaderIs26Columns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	writeTestFile(t, dir, "a.txt", now)

	listing, err := editor.BuildDirectoryListing(dir, true)
	require.NoError(t, err)

	lines := strings.SplitN(string(listing), "\n", 2)
	assert.Len(t, lines[0], 26)
	assert.Equal(t, byte('V'), lines[0][19])
}

func TestBuildDirectoryListingEntryOffsetIs22(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	writeTestFile(t, dir, "report.txt", now)

	listing, err := editor.BuildDirectoryListing(dir, true)
	require.NoError(t, err)

	lines := strings.Split(string(listing), "\n")
	require.Len(t, lines, 3) // header, entry, trailing empty

	entry := lines[1]
	require.Greater(t, len(entry), 22)
	assert.Equal(t, "report.txt", entry[22:])
	assert.Equal(t, byte(' '), entry[19])
	assert.Equal(t, byte(' '), entry[20])
}

func TestBuildDirectoryListingMarksDirectoriesWithSlash(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	listing, err := editor.BuildDirectoryListing(dir, false)
	require.NoError(t, err)

	lines := strings.Split(string(listing), "\n")
	require.Len(t, lines, 3)

	entry := lines[1]
	assert.Equal(t, byte('/'), entry[20])
	assert.Equal(t, "sub", entry[22:])
}

func TestBuildDirectoryListingByNameSortsAlphabetically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	writeTestFile(t, dir, "zeta.txt", now)
	writeTestFile(t, dir, "alpha.txt", now)

	listing, err := editor.BuildDirectoryListing(dir, false)
	require.NoError(t, err)

	lines := strings.Split(string(listing), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "alpha.txt", lines[1][22:])
	assert.Equal(t, "zeta.txt", lines[2][22:])
}

func TestBuildDirectoryListingByModTimeSortsNewestFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	writeTestFile(t, dir, "old.txt", older)
	writeTestFile(t, dir, "new.txt", newer)

	listing, err := editor.BuildDirectoryListing(dir, true)
	require.NoError(t, err)

	lines := strings.Split(string(listing), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "new.txt", lines[1][22:])
	assert.Equal(t, "old.txt", lines[2][22:])
}

func TestEntryPathJoinsDirAndName(t *testing.T) {
	t.Parallel()

	path, ok := editor.EntryPath("/repo", "2024/01/02 15:04:05   notes.txt")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/repo", "notes.txt"), path)
}

func TestEntryPathRejectsShortLine(t *testing.T) {
	t.Parallel()

	_, ok := editor.EntryPath("/repo", "short")
	assert.False(t, ok)
}

func TestSummaryCountsFilesAndDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", time.Now())
	writeTestFile(t, dir, "b.txt", time.Now())
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	summary, err := editor.Summary(dir)
	require.NoError(t, err)
	assert.Contains(t, summary, "2 files")
	assert.Contains(t, summary, "1 directories")
}
