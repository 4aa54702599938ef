package input

// Map is a trie from key sequences to command names, letting multi-key
// bindings (e.g. `C-x C-s`) share prefixes without scanning every binding
// on each keystroke.
type Map struct {
	root *mapNode
}

type mapNode struct {
	children map[Key]*mapNode
	command  string
	isLeaf   bool
}

func newNode() *mapNode {
	return &mapNode{children: make(map[Key]*mapNode)}
}

// NewMap returns an empty key map.
func NewMap() *Map {
	return &Map{root: newNode()}
}

// Bind registers keys -> command, overwriting any existing binding for
// that exact sequence.
func (m *Map) Bind(keys []Key, command string) {
	node := m.root

	for _, k := range keys {
		next, ok := node.children[k]
		if !ok {
			next = newNode()
			node.children[k] = next
		}

		node = next
	}

	node.command = command
	node.isLeaf = true
}

// Unbind removes the binding for the exact sequence keys, if any.
func (m *Map) Unbind(keys []Key) {
	node := m.root

	for _, k := range keys {
		next, ok := node.children[k]
		if !ok {
			return
		}

		node = next
	}

	node.isLeaf = false
	node.command = ""
}

// LookupResult is what Map.Step returns for one key in a sequence.
type LookupResult int

const (
	// NoMatch means no binding starts with the keys seen so far; the
	// dispatcher should reset and reinterpret the key as a fresh sequence.
	NoMatch LookupResult = iota
	// Prefix means the keys so far are a strict prefix of some binding;
	// more keys are needed before a command can run.
	Prefix
	// Matched means the keys so far are exactly a bound sequence.
	Matched
)

// Cursor walks a Map key-by-key, tracking the trie position across calls
// so the dispatcher can feed it one key per frame.
type Cursor struct {
	node *mapNode
}

// Start returns a Cursor positioned at m's root.
func (m *Map) Start() *Cursor { return &Cursor{node: m.root} }

// Step advances the cursor by one key, returning the lookup state and (if
// Matched) the bound command name.
func (c *Cursor) Step(k Key) (LookupResult, string) {
	next, ok := c.node.children[k]
	if !ok {
		return NoMatch, ""
	}

	c.node = next

	switch {
	case next.isLeaf && len(next.children) == 0:
		return Matched, next.command
	case next.isLeaf:
		// A leaf that also has children (e.g. both `C-x` and `C-x C-s` are
		// bound) is ambiguous until either more keys arrive or a timeout
		// forces resolution to the shorter binding; the dispatcher decides.
		return Matched, next.command
	default:
		return Prefix, ""
	}
}

// Remap rewrites one key sequence to another before it reaches a Map,
// e.g. mapping a terminal's raw escape sequence for Home to CodeHome.
type Remap struct {
	bindings map[string][]Key
	trie     *Map
}

// NewRemap builds a Remap from a set of (from -> to) sequences.
func NewRemap() *Remap {
	return &Remap{bindings: make(map[string][]Key), trie: NewMap()}
}

// Add registers a remapping from -> to, keyed by from's stringified form
// for trie lookup via the same Cursor machinery as Map.
func (r *Remap) Add(from, to []Key) {
	r.bindings[StringifyKeys(from)] = to
	r.trie.Bind(from, StringifyKeys(from))
}

// Apply rewrites a full key sequence, replacing any prefix that exactly
// matches a remap binding (longest match first, non-overlapping, scanned
// left to right).
func (r *Remap) Apply(keys []Key) []Key {
	var out []Key

	i := 0
	for i < len(keys) {
		matchLen, name := r.longestMatchAt(keys[i:])
		if matchLen == 0 {
			out = append(out, keys[i])
			i++

			continue
		}

		out = append(out, r.bindings[name]...)
		i += matchLen
	}

	return out
}

func (r *Remap) longestMatchAt(keys []Key) (int, string) {
	cursor := r.trie.Start()

	bestLen, bestName := 0, ""

	for i, k := range keys {
		result, command := cursor.Step(k)
		if result == NoMatch {
			break
		}

		if result == Matched {
			bestLen, bestName = i+1, command
		}
	}

	return bestLen, bestName
}
