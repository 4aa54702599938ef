package session_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/session"
	"github.com/quillkit/quill/internal/window"
)

func newLeaf(t *testing.T, id buffer.ID, name, text string) *window.Window {
	t.Helper()

	buf := buffer.NewBuffer(id, name, buffer.KindFile, []byte(text))
	handle := buffer.NewHandle(buf, nil)
	w := window.NewUnified(handle)
	w.Leaf.Cursors = []buffer.Cursor{{Point: 3, Mark: 3}}
	w.Leaf.VisibleStart = 2

	return w
}

func TestManagerNewSetsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")

	assert.Equal(t, dir, m.BaseDir)
	assert.Equal(t, "abc123", m.RepoHash)
	assert.Equal(t, session.DefaultMaxAge, m.MaxAge)
	assert.Equal(t, int64(session.DefaultMaxSize), m.MaxSize)
}

func TestManagerSessionPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")
	assert.Equal(t, filepath.Join(dir, "abc123", "session.json"), m.SessionPath())
}

func TestManagerExistsBeforeAndAfterSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")
	assert.False(t, m.Exists())

	root := newLeaf(t, 1, "scratch", "hello world")
	require.NoError(t, m.Save(root, "/repo"))
	assert.True(t, m.Exists())
}

func TestSaveLoadRoundTripsSingleBuffer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, session.RepoHash("/repo"))

	root := newLeaf(t, 1, "notes.txt", "line one\nline two\nline three\n")
	require.NoError(t, m.Save(root, "/repo"))

	nextID := buffer.ID(100)
	restored, err := m.Load(func() buffer.ID {
		id := nextID
		nextID++

		return id
	})
	require.NoError(t, err)
	require.Equal(t, window.Unified, restored.Tag)

	buf := restored.Leaf.Handle.Buffer()
	assert.Equal(t, "notes.txt", buf.Name)
	assert.Equal(t, "line one\nline two\nline three\n", string(buf.Contents.Slice(0, buf.Contents.Len())))
	assert.Equal(t, []buffer.Cursor{{Point: 3, Mark: 3}}, restored.Leaf.Cursors)
	assert.Equal(t, uint64(2), restored.Leaf.VisibleStart)
}

func TestSaveLoadRoundTripsSplitTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, session.RepoHash("/repo"))

	left := newLeaf(t, 1, "left.txt", "left contents")
	right := newLeaf(t, 2, "right.txt", "right contents")
	root := window.Split(left, right, window.VerticalSplit, 0.5)

	require.NoError(t, m.Save(root, "/repo"))

	nextID := buffer.ID(1)
	restored, err := m.Load(func() buffer.ID {
		id := nextID
		nextID++

		return id
	})
	require.NoError(t, err)

	require.Equal(t, window.VerticalSplit, restored.Tag)
	assert.InDelta(t, 0.5, restored.SplitRatio, 1e-9)
	assert.Equal(t, "left.txt", restored.First.Leaf.Handle.Buffer().Name)
	assert.Equal(t, "right.txt", restored.Second.Leaf.Handle.Buffer().Name)
	assert.Same(t, restored, restored.First.Parent)
	assert.Same(t, restored, restored.Second.Parent)
}

func TestSaveLoadRoundTripsLargeIncompressibleBuffer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, session.RepoHash("/repo"))

	// Random-looking high-entropy bytes exercise the incompressible-input
	// fallback path in captureBuffer/decompressBuffer.
	raw := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(raw)

	buf := buffer.NewBuffer(1, "blob", buffer.KindFile, raw)
	handle := buffer.NewHandle(buf, nil)
	root := window.NewUnified(handle)

	require.NoError(t, m.Save(root, "/repo"))

	nextID := buffer.ID(1)
	restored, err := m.Load(func() buffer.ID {
		id := nextID
		nextID++

		return id
	})
	require.NoError(t, err)

	restoredBuf := restored.Leaf.Handle.Buffer()
	assert.Equal(t, raw, restoredBuf.Contents.Slice(0, restoredBuf.Contents.Len()))
}

func TestValidateRejectsMismatchedRepoPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")

	root := newLeaf(t, 1, "scratch", "x")
	require.NoError(t, m.Save(root, "/repo-a"))

	err := m.Validate("/repo-b")
	assert.ErrorIs(t, err, session.ErrRepoPathMismatch)
}

func TestLoadWithNoSessionReturnsErrNoSession(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")

	_, err := m.Load(func() buffer.ID { return 1 })
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestClearRemovesSessionDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := session.NewManager(dir, "abc123")

	root := newLeaf(t, 1, "scratch", "x")
	require.NoError(t, m.Save(root, "/repo"))
	require.True(t, m.Exists())

	require.NoError(t, m.Clear())
	assert.False(t, m.Exists())
}
