package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
)

func insert(t *testing.T, c *buffer.Contents, log *buffer.ChangeLog, pos uint64, s string) {
	t.Helper()

	tx := buffer.NewTransaction()
	tx.Insert(pos, []byte(s))
	_, err := tx.Commit(c, log)
	require.NoError(t, err)
}

func TestChangeLog_RedoAfterUndoRestoresState(t *testing.T) {
	t.Parallel()

	c := buffer.NewContents(nil)
	log := buffer.NewChangeLog()

	insert(t, c, log, 0, "a")
	insert(t, c, log, 1, "b")

	preUndo := append([]byte(nil), c.Slice(0, c.Len())...)

	require.True(t, log.Undo(c))
	assert.Equal(t, []byte("a"), c.Slice(0, c.Len()))

	require.True(t, log.Redo(c))
	assert.Equal(t, preUndo, c.Slice(0, c.Len()))
}

func TestChangeLog_MarkSavedAndIsUnchanged(t *testing.T) {
	t.Parallel()

	c := buffer.NewContents(nil)
	log := buffer.NewChangeLog()

	insert(t, c, log, 0, "x")
	log.MarkSaved()
	assert.True(t, log.IsUnchanged())

	insert(t, c, log, 1, "y")
	assert.False(t, log.IsUnchanged())

	require.True(t, log.Undo(c))
	assert.True(t, log.IsUnchanged())
}

func TestChangeLog_RestoreLastSavePointPrefersUndo(t *testing.T) {
	t.Parallel()

	c := buffer.NewContents(nil)
	log := buffer.NewChangeLog()

	insert(t, c, log, 0, "a")
	log.MarkSaved()
	insert(t, c, log, 1, "b")
	insert(t, c, log, 2, "c")

	require.True(t, log.RestoreLastSavePoint(c))
	assert.True(t, log.IsUnchanged())
	assert.Equal(t, []byte("a"), c.Slice(0, c.Len()))
}

func TestChangeLog_NewCommitAfterUndoBranches(t *testing.T) {
	t.Parallel()

	c := buffer.NewContents(nil)
	log := buffer.NewChangeLog()

	insert(t, c, log, 0, "a")
	insert(t, c, log, 1, "b")
	require.True(t, log.Undo(c)) // back to "a"

	insert(t, c, log, 1, "z") // new branch from "a"
	assert.Equal(t, []byte("az"), c.Slice(0, c.Len()))

	require.True(t, log.Undo(c))
	assert.Equal(t, []byte("a"), c.Slice(0, c.Len()))

	require.True(t, log.Redo(c))
	assert.Equal(t, []byte("az"), c.Slice(0, c.Len()), "redo should follow the most recently taken branch")
}
