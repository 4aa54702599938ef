package session

import (
	"fmt"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/quillkit/quill/internal/buffer"
	"github.com/quillkit/quill/internal/window"
)

// bufferRecord is one open buffer's persisted contents and cursor state.
// Contents are LZ4-compressed the same way internal/rbtree compresses its
// posting lists: compress into a bound-sized buffer, keep RawLen so the
// decompressor knows how large a destination to allocate.
type bufferRecord struct {
	Name           string          `json:"name"`
	Dir            string          `json:"dir"`
	Kind           buffer.Kind     `json:"kind"`
	ModeName       string          `json:"mode_name"`
	Cursors        []buffer.Cursor `json:"cursors"`
	SelectedCursor int             `json:"selected_cursor"`
	VisibleStart   uint64          `json:"visible_start"`
	RawLen         int             `json:"raw_len"`
	// StoredRaw is true when Compressed holds the raw bytes verbatim
	// (captureBuffer's incompressible-input fallback) rather than an LZ4
	// block.
	StoredRaw  bool   `json:"stored_raw"`
	Compressed []byte `json:"compressed"`
}

// windowRecord is one flattened window-tree node. Leaves carry a BufferIndex
// into document.Buffers; interior nodes carry First/Second indices into
// document.Nodes. A -1 means "not applicable" for that field.
type windowRecord struct {
	Tag         window.Tag `json:"tag"`
	SplitRatio  float64    `json:"split_ratio"`
	BufferIndex int        `json:"buffer_index"`
	First       int        `json:"first"`
	Second      int        `json:"second"`
}

// Save snapshots root's entire window tree and the buffers it references
// into this manager's session file.
func (m *Manager) Save(root *window.Window, repoPath string) error {
	doc := &document{
		Version:   MetadataVersion,
		RepoPath:  repoPath,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	bufIndex := make(map[*buffer.Buffer]int)

	rootIdx, err := flattenWindow(root, doc, bufIndex)
	if err != nil {
		return err
	}

	doc.Root = rootIdx

	return m.writeDocument(doc)
}

// flattenWindow recursively appends w (and its subtree) to doc.Nodes,
// deduplicating buffers already captured in doc.Buffers via bufIndex, and
// returns w's own index in doc.Nodes.
func flattenWindow(w *window.Window, doc *document, bufIndex map[*buffer.Buffer]int) (int, error) {
	if w.Tag == window.Unified {
		bi, err := captureBuffer(w.Leaf, doc, bufIndex)
		if err != nil {
			return 0, err
		}

		doc.Nodes = append(doc.Nodes, windowRecord{
			Tag:         window.Unified,
			BufferIndex: bi,
			First:       -1,
			Second:      -1,
		})

		return len(doc.Nodes) - 1, nil
	}

	firstIdx, err := flattenWindow(w.First, doc, bufIndex)
	if err != nil {
		return 0, err
	}

	secondIdx, err := flattenWindow(w.Second, doc, bufIndex)
	if err != nil {
		return 0, err
	}

	doc.Nodes = append(doc.Nodes, windowRecord{
		Tag:         w.Tag,
		SplitRatio:  w.SplitRatio,
		BufferIndex: -1,
		First:       firstIdx,
		Second:      secondIdx,
	})

	return len(doc.Nodes) - 1, nil
}

func captureBuffer(leaf *window.UnifiedWindow, doc *document, bufIndex map[*buffer.Buffer]int) (int, error) {
	buf := leaf.Handle.Buffer()

	if idx, ok := bufIndex[buf]; ok {
		return idx, nil
	}

	raw := buf.Contents.Slice(0, buf.Contents.Len())

	bound := lz4.CompressBlockBound(len(raw))
	compressed := make([]byte, bound)

	written, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil {
		return 0, fmt.Errorf("session: compress buffer %q: %w", buf.Name, err)
	}

	// CompressBlock reports 0 when the input was incompressible within the
	// bound; fall back to storing it uncompressed rather than failing.
	storedRaw := written == 0
	if storedRaw {
		compressed = raw
	} else {
		compressed = compressed[:written]
	}

	doc.Buffers = append(doc.Buffers, bufferRecord{
		Name:           buf.Name,
		Dir:            buf.Dir,
		Kind:           buf.Kind,
		ModeName:       buf.Mode.Name,
		Cursors:        append([]buffer.Cursor(nil), leaf.Cursors...),
		SelectedCursor: leaf.SelectedCursor,
		VisibleStart:   leaf.VisibleStart,
		RawLen:         len(raw),
		StoredRaw:      storedRaw,
		Compressed:     compressed,
	})

	idx := len(doc.Buffers) - 1
	bufIndex[buf] = idx

	return idx, nil
}

// Load restores the window tree and backing buffers for this manager's
// session file. Restored buffers get fresh IDs starting at nextID and are
// wrapped in Handles with no eviction callback; the caller (the editor's
// buffer registry) is expected to re-register them and supply its own
// onEvict via Handle.Clone-style adoption if it needs reference counting.
func (m *Manager) Load(nextID func() buffer.ID) (*window.Window, error) {
	doc, err := m.readDocument()
	if err != nil {
		return nil, err
	}

	buffers := make([]*buffer.Buffer, len(doc.Buffers))

	for i, rec := range doc.Buffers {
		raw, err := decompressBuffer(rec)
		if err != nil {
			return nil, fmt.Errorf("session: restore buffer %q: %w", rec.Name, err)
		}

		buf := buffer.NewBuffer(nextID(), rec.Name, rec.Kind, raw)
		buf.Dir = rec.Dir

		mode := buf.Mode
		mode.Name = rec.ModeName
		buf.Mode = mode

		buffers[i] = buf
	}

	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("session: empty window tree")
	}

	root, err := rebuildWindow(doc, doc.Root, buffers)
	if err != nil {
		return nil, err
	}

	return root, nil
}

func decompressBuffer(rec bufferRecord) ([]byte, error) {
	if rec.StoredRaw {
		return rec.Compressed, nil
	}

	out := make([]byte, rec.RawLen)

	n, err := lz4.UncompressBlock(rec.Compressed, out)
	if err != nil {
		return nil, fmt.Errorf("uncompress: %w", err)
	}

	return out[:n], nil
}

func rebuildWindow(doc *document, idx int, buffers []*buffer.Buffer) (*window.Window, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("session: node index %d out of range", idx)
	}

	rec := doc.Nodes[idx]

	if rec.Tag == window.Unified {
		if rec.BufferIndex < 0 || rec.BufferIndex >= len(buffers) {
			return nil, fmt.Errorf("session: buffer index %d out of range", rec.BufferIndex)
		}

		bufRec := doc.Buffers[rec.BufferIndex]
		handle := buffer.NewHandle(buffers[rec.BufferIndex], nil)

		w := window.NewUnified(handle)
		w.Leaf.Cursors = append([]buffer.Cursor(nil), bufRec.Cursors...)
		w.Leaf.SelectedCursor = bufRec.SelectedCursor
		w.Leaf.VisibleStart = bufRec.VisibleStart

		return w, nil
	}

	first, err := rebuildWindow(doc, rec.First, buffers)
	if err != nil {
		return nil, err
	}

	second, err := rebuildWindow(doc, rec.Second, buffers)
	if err != nil {
		return nil, err
	}

	return window.Split(first, second, rec.Tag, rec.SplitRatio), nil
}
