package buffer

import (
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/quillkit/quill/pkg/textutil"
)

// ID identifies a Buffer within an Editor's registry.
type ID uint64

// TokenCache is the interface a buffer's incremental tokenizer cache must
// satisfy, so this package need not depend on any concrete tokenizer.
type TokenCache interface {
	// Update brings the cache up to date with b's current change log,
	// returning true if the existing check-points remained valid (no
	// salvage/reset was needed).
	Update(b *Buffer) bool
}

// Buffer owns one Contents, its change log, tokenizer cache, mode, and
// cursor-independent identity. It is accessed through a reference-counted
// Handle (see handle.go); callers never hold a *Buffer directly across a
// lock boundary.
type Buffer struct {
	ID   ID
	Name string
	Dir  string
	Kind Kind

	Contents *Contents
	Changes  *ChangeLog
	Mode     Mode
	// Tokens holds the buffer's incremental token cache. It is typed as an
	// interface here (rather than *tokenize.Cache) so this package stays
	// independent of any specific tokenizer implementation; package
	// tokenize's Cache satisfies it.
	Tokens TokenCache

	UseCarriageReturns bool
	ReadOnly           bool
	FileTime           time.Time

	mu sync.RWMutex

	// commitListeners are invoked after every successful Transaction.Commit
	// so window caches can rewrite their cursor lists (§4.2 step d) without
	// this package importing the window package.
	commitListeners []func(Commit)

	refCount atomic.Int64
}

// NewBuffer constructs a Buffer over initial bytes.
func NewBuffer(id ID, name string, kind Kind, initial []byte) *Buffer {
	b := &Buffer{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Contents: NewContents(initial),
		Changes:  NewChangeLog(),
		Mode:     DefaultMode(),
	}
	b.refCount.Store(1)

	return b
}

// NewFileBuffer constructs a Buffer from raw on-disk bytes, detecting and
// stripping CRLF line endings so Contents always stores LF-only text;
// UseCarriageReturns records the detected form for round-tripping on save.
func NewFileBuffer(id ID, name, dir string, raw []byte) *Buffer {
	crlf := textutil.DetectCRLF(raw)

	stripped := raw
	if crlf {
		stripped, _ = textutil.StripCR(raw, false)
	}

	b := NewBuffer(id, name, KindFile, stripped)
	b.Dir = dir
	b.UseCarriageReturns = crlf

	return b
}

// Save renders the buffer's contents back to disk bytes, reinserting CRLF
// line endings if the file was loaded in that form.
func (b *Buffer) Save() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := b.Contents.StringifyInto(nil)
	if b.UseCarriageReturns {
		out = textutil.InsertCRLF(out)
	}

	return out
}

// OnCommit registers fn to run after every commit this buffer accepts.
func (b *Buffer) OnCommit(fn func(Commit)) {
	b.commitListeners = append(b.commitListeners, fn)
}

// Apply runs a transaction against the buffer's contents under the write
// lock and notifies commit listeners on success.
func (b *Buffer) Apply(tx *Transaction) (CommitID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, err := tx.Commit(b.Contents, b.Changes)
	if err != nil {
		return id, err
	}

	if id != b.Changes.CurrentID {
		return id, nil
	}

	commit := b.Changes.Commit(id)
	for _, fn := range b.commitListeners {
		fn(commit)
	}

	return id, nil
}

// Undo and Redo mutate the buffer's contents under the write lock.
func (b *Buffer) Undo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Changes.Undo(b.Contents)
}

func (b *Buffer) Redo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.Changes.Redo(b.Contents)
}

// RLock and RUnlock implement the reader side of the buffer's single-writer,
// many-reader access policy described in §4.9.
func (b *Buffer) RLock()   { b.mu.RLock() }
func (b *Buffer) RUnlock() { b.mu.RUnlock() }

// retain and release implement the Buffer's reference count; Handle is the
// only caller.
func (b *Buffer) retain() { b.refCount.Add(1) }

func (b *Buffer) release() int64 { return b.refCount.Add(-1) }

// weakRef returns a weak pointer suitable for an asynchronous job to hold
// without extending the buffer's lifetime (§9: "reference-counted buffer
// handles with weak back-references").
func (b *Buffer) weakRef() weak.Pointer[Buffer] { return weak.Make(b) }
