// Package editor ties together the buffer registry, window tree, input
// dispatcher, and job scheduler into the top-level object a client
// (pkg/termclient, or the remote-open listener) drives one frame at a time.
package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quillkit/quill/internal/buffer"
)

// Registry owns every open Buffer, handing out reference-counted Handles
// and evicting a Buffer once its last Handle closes. Buffers opened from a
// file are keyed by their absolute path so a second open of the same file
// reuses the existing buffer rather than creating a duplicate.
type Registry struct {
	mu      sync.Mutex
	nextID  buffer.ID
	buffers map[buffer.ID]*buffer.Buffer
	byPath  map[string]buffer.ID
}

// NewRegistry creates an empty buffer registry.
func NewRegistry() *Registry {
	return &Registry{
		nextID:  1,
		buffers: make(map[buffer.ID]*buffer.Buffer),
		byPath:  make(map[string]buffer.ID),
	}
}

// allocID reserves the next buffer ID. Exported as a func value so
// internal/session.Manager.Load can mint IDs without this package
// depending on session (which already depends on buffer and window).
func (r *Registry) allocID() buffer.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	return id
}

// NextID returns a function that allocates fresh registry IDs, suitable for
// passing to session.Manager.Load.
func (r *Registry) NextID() func() buffer.ID {
	return r.allocID
}

// register adds buf to the registry under its own ID, wiring eviction so
// the registry forgets the buffer once its last Handle closes.
func (r *Registry) register(buf *buffer.Buffer, path string) *buffer.Handle {
	r.mu.Lock()
	r.buffers[buf.ID] = buf

	if path != "" {
		r.byPath[path] = buf.ID
	}

	r.mu.Unlock()

	return buffer.NewHandle(buf, func(id buffer.ID) {
		r.mu.Lock()
		delete(r.buffers, id)

		for p, bid := range r.byPath {
			if bid == id {
				delete(r.byPath, p)
			}
		}

		r.mu.Unlock()
	})
}

// Lookup returns a buffer already open under the registry by ID.
func (r *Registry) Lookup(id buffer.ID) (*buffer.Buffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.buffers[id]

	return buf, ok
}

// New creates and registers a scratch buffer not backed by any file.
func (r *Registry) New(name string, kind buffer.Kind, initial []byte) *buffer.Handle {
	buf := buffer.NewBuffer(r.allocID(), name, kind, initial)

	return r.register(buf, "")
}

// Open opens path as a file buffer, reusing the existing one if path is
// already open (§7: I/O errors surface as a message and leave state
// untouched rather than aborting the caller's whole operation — the editor
// orchestrator is expected to route the error to client.show_message).
// A file that does not exist yet gets an empty, writable buffer (the
// user is creating it); a file that exists but can't be read gets an
// empty, read-only buffer so the user at least sees why nothing loaded.
func (r *Registry) Open(path string) (*buffer.Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("editor: resolve path %q: %w", path, err)
	}

	r.mu.Lock()
	if id, ok := r.byPath[abs]; ok {
		buf := r.buffers[id]
		r.mu.Unlock()

		return r.register(buf, abs), nil
	}
	r.mu.Unlock()

	raw, readErr := os.ReadFile(abs)

	switch {
	case readErr == nil:
		buf := buffer.NewFileBuffer(r.allocID(), filepath.Base(abs), filepath.Dir(abs), raw)

		return r.register(buf, abs), nil
	case os.IsNotExist(readErr):
		buf := buffer.NewBuffer(r.allocID(), filepath.Base(abs), buffer.KindFile, nil)
		buf.Dir = filepath.Dir(abs)

		return r.register(buf, abs), nil
	default:
		buf := buffer.NewBuffer(r.allocID(), filepath.Base(abs), buffer.KindFile, nil)
		buf.Dir = filepath.Dir(abs)
		buf.ReadOnly = true

		return r.register(buf, abs), fmt.Errorf("editor: open %q: %w", abs, readErr)
	}
}

// OpenDirectory builds a read-only directory-listing buffer for path (§6
// Directory buffer format).
func (r *Registry) OpenDirectory(path string, sortByModTime bool) (*buffer.Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("editor: resolve path %q: %w", path, err)
	}

	listing, err := BuildDirectoryListing(abs, sortByModTime)
	if err != nil {
		return nil, err
	}

	buf := buffer.NewBuffer(r.allocID(), filepath.Base(abs)+"/", buffer.KindDirectory, listing)
	buf.Dir = abs
	buf.ReadOnly = true

	return r.register(buf, ""), nil
}
