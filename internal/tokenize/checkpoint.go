// Package tokenize implements the incremental, check-point-based token
// cache described in §4.4: a tokenizer is a pure function that advances an
// iterator by one token, and the cache samples (position, state) snapshots
// so any visible window can be colorized without relexing from the start.
package tokenize

import "github.com/quillkit/quill/internal/buffer"

// CheckPointInterval is the minimum number of scanned bytes between two
// check-points.
const CheckPointInterval = 1024

// CheckPoint is a (position, tokenizer state) snapshot: resuming the
// tokenizer from here with this state must produce the same tokens as
// resuming from the start of the buffer with state 0.
type CheckPoint struct {
	Position uint64
	State    uint64
}
