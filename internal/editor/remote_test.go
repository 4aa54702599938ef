package editor_test

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillkit/quill/internal/editor"
)

func TestRemoteListenerDeliversPlainPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	opened := make(chan string, 1)

	rl, err := editor.Listen("127.0.0.1:0", func(p string, line, col int) {
		assert.Equal(t, 0, line)
		assert.Equal(t, 0, col)
		opened <- p
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })

	require.NoError(t, editor.Send(rl.Addr(), path))

	select {
	case got := <-opened:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote open callback")
	}
}

func TestRemoteListenerDeliversLineAndColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	opened := make(chan [3]any, 1)

	rl, err := editor.Listen("127.0.0.1:0", func(p string, line, col int) {
		opened <- [3]any{p, line, col}
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })

	require.NoError(t, editor.Send(rl.Addr(), path+":12:4"))

	select {
	case got := <-opened:
		assert.Equal(t, path, got[0])
		assert.Equal(t, 12, got[1])
		assert.Equal(t, 4, got[2])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote open callback")
	}
}

func TestRemoteListenerCloseStopsAccepting(t *testing.T) {
	t.Parallel()

	rl, err := editor.Listen("127.0.0.1:0", func(string, int, int) {}, nil)
	require.NoError(t, err)

	addr := rl.Addr()
	require.NoError(t, rl.Close())

	_, dialErr := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, dialErr)
}

func TestSendReturnsErrorWhenNothingListening(t *testing.T) {
	t.Parallel()

	err := editor.Send("127.0.0.1:1", "whatever")
	assert.Error(t, err)
}
