package editor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/editor"
	"github.com/quillkit/quill/internal/editorconfig"
	"github.com/quillkit/quill/internal/input"
	"github.com/quillkit/quill/internal/window"
)

func newTestEditor(t *testing.T) (*editor.Editor, *editor.Registry) {
	t.Helper()

	registry := editor.NewRegistry()
	handle := registry.New("scratch", buffer.KindTemporary, nil)
	root := window.NewUnified(handle)

	e := editor.New(&editorconfig.Config{}, registry, root, nil, nil)
	t.Cleanup(e.Close)

	return e, registry
}

func TestTickInsertsPrintableKeys(t *testing.T) {
	t.Parallel()

	e, _ := newTestEditor(t)

	keys := []input.Key{{Code: input.Code('h')}, {Code: input.Code('i')}}

	actions, remaining := e.Tick(context.Background(), keys)
	assert.Empty(t, remaining)
	require.Len(t, actions, 2)
	assert.Equal(t, 'h', actions[0].Insert)
	assert.Equal(t, 'i', actions[1].Insert)
}

func TestShowMessageIsDrainedByMessages(t *testing.T) {
	t.Parallel()

	e, _ := newTestEditor(t)

	e.ShowMessage("hello")
	e.ShowMessage("world")

	assert.Equal(t, []string{"hello", "world"}, e.Messages())
	assert.Empty(t, e.Messages())
}

func TestEnableRemoteIsNoopWhenDisabled(t *testing.T) {
	t.Parallel()

	e, _ := newTestEditor(t)

	require.NoError(t, e.EnableRemote())
	assert.Nil(t, e.Remote)
}

func TestEnableRemoteOpensAndRaisesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two\nline three\n"), 0o644))

	registry := editor.NewRegistry()
	handle := registry.New("scratch", buffer.KindTemporary, nil)
	root := window.NewUnified(handle)

	cfg := &editorconfig.Config{Remote: editorconfig.RemoteConfig{Enabled: true, Address: "127.0.0.1:0"}}
	e := editor.New(cfg, registry, root, nil, nil)
	t.Cleanup(e.Close)

	require.NoError(t, e.EnableRemote())
	require.NotNil(t, e.Remote)

	require.NoError(t, editor.Send(e.Remote.Addr(), path+":2:3"))

	require.Eventually(t, func() bool {
		return e.Selected.Leaf.Handle.Buffer().Name == "doc.txt"
	}, 2*time.Second, 10*time.Millisecond)

	cursor := e.Selected.Leaf.Cursors[e.Selected.Leaf.SelectedCursor]
	contents := e.Selected.Leaf.Handle.Buffer().Contents
	assert.Equal(t, 1, contents.GetLineNumber(cursor.Point))
}

func TestTickRunsDiffAgainstDiskCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))

	registry := editor.NewRegistry()

	handle, err := registry.Open(path)
	require.NoError(t, err)

	root := window.NewUnified(handle)

	e := editor.New(&editorconfig.Config{}, registry, root, nil, nil)
	t.Cleanup(e.Close)

	buf := handle.Buffer()
	tx := buffer.NewTransaction()
	tx.Insert(buf.Contents.Len(), []byte("four\n"))
	_, err = buf.Apply(tx)
	require.NoError(t, err)

	global := input.NewMap()
	global.Bind([]input.Key{{Modifiers: input.ModControl, Code: 'd'}}, "diff-against-disk")
	e.Dispatcher.Global = global

	_, remaining := e.Tick(context.Background(), []input.Key{{Modifiers: input.ModControl, Code: 'd'}})
	assert.Empty(t, remaining)

	msgs := e.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "+four")
}

func TestDiffAgainstDiskRejectsNonFileBuffer(t *testing.T) {
	t.Parallel()

	registry := editor.NewRegistry()
	handle := registry.New("scratch", buffer.KindTemporary, nil)

	_, err := editor.DiffAgainstDisk(handle.Buffer())
	assert.Error(t, err)
}
