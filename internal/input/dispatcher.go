package input

import "time"

// FrameBudget is the dispatcher's per-frame processing budget (§4.9,
// §5 Timeouts): once exceeded, Dispatch yields to render even if more keys
// are pending.
const FrameBudget = 100 * time.Millisecond

// BatchPasteThreshold is the number of printable keys that must arrive
// within one polling window before the dispatcher short-circuits to
// per-key insert_char dispatch instead of re-matching bindings for each.
const BatchPasteThreshold = 8

// Action is what one dispatched key resolves to.
type Action struct {
	// Command is the bound command name, or "" for a raw insert.
	Command string
	// Insert is set for a raw character insert (batch paste or an
	// unbound printable key with no special handling).
	Insert rune
	// Invalid is set when a prefix matched nothing and the dispatcher
	// consumed the chain without running anything.
	Invalid bool
	Keys    []Key
}

// Dispatcher walks incoming keys against a buffer-mode map and a global
// fallback map, handling remaps, macro recording, batch-paste
// short-circuiting, and the per-frame time budget.
type Dispatcher struct {
	Global *Map
	Remap  *Remap

	Recorder *Recorder

	cursor     *Cursor
	pending    []Key
	bufferMode *Map
}

// NewDispatcher wires a global key map, used when no buffer-local binding
// matches.
func NewDispatcher(global *Map) *Dispatcher {
	return &Dispatcher{Global: global, Remap: NewRemap(), Recorder: NewRecorder()}
}

// SetBufferMode installs the active buffer mode's key map, consulted
// before the global map (§4.8: buffer-mode map, then global map).
func (d *Dispatcher) SetBufferMode(m *Map) { d.bufferMode = m }

// Dispatch processes keys until the frame budget elapses or the queue is
// drained, returning the resolved actions. deadline is the wall-clock time
// after which Dispatch must return even with keys still pending. Keys that
// end inside a still-open prefix of either map are held by the dispatcher
// and processed ahead of the next call's keys.
func (d *Dispatcher) Dispatch(keys []Key, deadline time.Time) (actions []Action, remaining []Key) {
	keys = append(d.pending, d.Remap.Apply(keys)...)
	d.pending = nil

	if batch, rest, ok := d.batchPaste(keys); ok {
		for _, k := range batch {
			d.Recorder.Observe(k)
			actions = append(actions, Action{Insert: rune(k.Code), Keys: []Key{k}})
		}

		return actions, rest
	}

	i := 0
	for i < len(keys) {
		if time.Now().After(deadline) {
			return actions, keys[i:]
		}

		consumed, action, matched := d.step(keys[i:])
		if !matched {
			d.pending = append([]Key(nil), keys[i:]...)
			return actions, nil
		}

		for _, k := range keys[i : i+consumed] {
			d.Recorder.Observe(k)
		}

		actions = append(actions, action)
		i += consumed
	}

	return actions, keys[i:]
}

// batchPaste detects a leading run of plain printable keys at or above
// BatchPasteThreshold and, if found, returns it for direct insertion
// without consulting either key map.
func (d *Dispatcher) batchPaste(keys []Key) (batch, rest []Key, ok bool) {
	n := 0
	for n < len(keys) && keys[n].Modifiers == 0 && isPrintable(keys[n]) {
		n++
	}

	if n < BatchPasteThreshold {
		return nil, keys, false
	}

	return keys[:n], keys[n:], true
}

// step resolves the longest binding starting at keys[0], trying the
// buffer-mode map before the global one, and reports how many keys it
// consumed. When no binding matches but keys end inside an open prefix of
// either map, it reports no match so Dispatch waits for more input.
func (d *Dispatcher) step(keys []Key) (consumed int, action Action, matched bool) {
	open := false

	for _, m := range []*Map{d.bufferMode, d.Global} {
		if m == nil {
			continue
		}

		n, act, ok := stepMap(m, keys)
		if ok {
			return n, act, true
		}

		open = open || n > 0
	}

	if open {
		return 0, Action{}, false
	}

	if keys[0].Modifiers == 0 && isPrintable(keys[0]) {
		return 1, Action{Insert: rune(keys[0].Code), Keys: keys[:1]}, true
	}

	return 1, Action{Invalid: true, Keys: keys[:1]}, true
}

// stepMap walks m as far as possible into keys, returning the longest
// matched command (a leaf with children still prefers its own binding if
// no longer sequence matches) or reporting a dangling prefix as unmatched,
// with len(keys) as its length, so the caller can try the next map / wait
// for more input.
func stepMap(m *Map, keys []Key) (int, Action, bool) {
	cursor := m.Start()

	bestLen, bestCmd := 0, ""

	for i, k := range keys {
		result, cmd := cursor.Step(k)

		switch result {
		case NoMatch:
			if bestLen > 0 {
				return bestLen, Action{Command: bestCmd, Keys: keys[:bestLen]}, true
			}

			return 0, Action{}, false
		case Matched:
			bestLen, bestCmd = i+1, cmd
		case Prefix:
		}
	}

	if bestLen > 0 {
		return bestLen, Action{Command: bestCmd, Keys: keys[:bestLen]}, true
	}

	// Every key was consumed as a still-open prefix; wait for more input
	// rather than guessing.
	return len(keys), Action{}, false
}
