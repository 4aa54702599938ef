package buffer_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
)

func TestBuffer_ApplyNotifiesCommitListeners(t *testing.T) {
	t.Parallel()

	b := buffer.NewBuffer(1, "scratch", buffer.KindTemporary, nil)

	var seen []buffer.Commit
	b.OnCommit(func(c buffer.Commit) { seen = append(seen, c) })

	tx := buffer.NewTransaction()
	tx.Insert(0, []byte("hi"))

	_, err := b.Apply(tx)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, []byte("hi"), seen[0].Edits[0].Value)
}

func TestBuffer_UndoRedo(t *testing.T) {
	t.Parallel()

	b := buffer.NewBuffer(1, "scratch", buffer.KindTemporary, nil)

	tx := buffer.NewTransaction()
	tx.Insert(0, []byte("hi"))
	_, err := b.Apply(tx)
	require.NoError(t, err)

	require.True(t, b.Undo())
	assert.Equal(t, uint64(0), b.Contents.Len())

	require.True(t, b.Redo())
	assert.Equal(t, uint64(2), b.Contents.Len())
}

func TestHandle_RefcountEvictsOnLastClose(t *testing.T) {
	t.Parallel()

	b := buffer.NewBuffer(7, "doc", buffer.KindFile, nil)

	evicted := 0
	h1 := buffer.NewHandle(b, func(id buffer.ID) { evicted++ })
	h2 := h1.Clone()

	h1.Close()
	assert.Equal(t, 0, evicted)

	h2.Close()
	assert.Equal(t, 1, evicted)
}

func TestWeakHandle_UpgradeFailsAfterEviction(t *testing.T) {
	t.Parallel()

	b := buffer.NewBuffer(9, "doc", buffer.KindFile, nil)
	h := buffer.NewHandle(b, nil)
	weak := h.Weak()

	upgraded, ok := weak.Upgrade(nil)
	require.True(t, ok)
	upgraded.Close()

	h.Close()

	runtime.GC()

	_, ok = weak.Upgrade(nil)
	assert.False(t, ok)
}

func TestBuffer_CRLFRoundTrip(t *testing.T) {
	t.Parallel()

	raw := []byte("line one\r\nline two\r\n")
	b := buffer.NewFileBuffer(1, "f.txt", "/tmp", raw)

	assert.True(t, b.UseCarriageReturns)
	assert.Equal(t, []byte("line one\nline two\n"), b.Contents.Slice(0, b.Contents.Len()))
	assert.Equal(t, raw, b.Save())
}
