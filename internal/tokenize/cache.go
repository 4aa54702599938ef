package tokenize

import (
	"sort"

	"github.com/quillkit/quill/internal/buffer"
)

// Cache is a Buffer's incremental token cache. It satisfies
// buffer.TokenCache so a *Buffer can hold one without importing this
// package.
type Cache struct {
	tokenizer   buffer.Tokenizer
	checkPoints []CheckPoint
	changeIndex int
	// tail is the furthest position the tokenizer has actually scanned to,
	// which may be past the last recorded check-point (checkpoints are
	// sampled every CheckPointInterval bytes, not every token).
	tail uint64
}

// NewCache builds an empty cache for the given tokenizer function.
func NewCache(tokenizer buffer.Tokenizer) *Cache {
	return &Cache{tokenizer: tokenizer}
}

// ChangeIndex returns the change-log length the cache is consistent with.
func (c *Cache) ChangeIndex() int { return c.changeIndex }

// CheckPoints returns the cache's current check-points (sorted by
// position). The slice must not be mutated by the caller.
func (c *Cache) CheckPoints() []CheckPoint { return c.checkPoints }

// FindCheckPoint returns the greatest check-point at or before pos, or
// (0, 0) if none exists.
func (c *Cache) FindCheckPoint(pos uint64) (uint64, uint64) {
	i := sort.Search(len(c.checkPoints), func(i int) bool { return c.checkPoints[i].Position > pos }) - 1
	if i < 0 {
		return 0, 0
	}

	return c.checkPoints[i].Position, c.checkPoints[i].State
}

// IsCovered reports whether the cache's tokenizer scan already extends
// past pos.
func (c *Cache) IsCovered(pos uint64) bool { return c.tail >= pos }

// GenerateCheckPointsUntil extends the cache forward from its current tail,
// scanning tokens and appending a new check-point every time the scanned
// span crosses CheckPointInterval bytes.
func (c *Cache) GenerateCheckPointsUntil(b *buffer.Buffer, pos uint64) {
	startPos, state := uint64(0), uint64(0)
	if n := len(c.checkPoints); n > 0 {
		startPos, state = c.checkPoints[n-1].Position, c.checkPoints[n-1].State
	}

	if startPos < c.tail {
		startPos = c.tail
	}

	it := b.Contents.IteratorAt(startPos)

	var scanned uint64

	for it.Position() < pos && !it.AtEOB() {
		tok, newState, ok := c.tokenizer(it, state)
		if !ok {
			break
		}

		it.GoTo(tok.End)
		state = newState
		scanned += tok.End - tok.Start

		if scanned >= CheckPointInterval {
			c.checkPoints = append(c.checkPoints, CheckPoint{Position: it.Position(), State: state})
			scanned = 0
		}
	}

	c.tail = it.Position()
}

// Update brings the cache up to date with b's change log since the last
// Update call. It returns true if the cache remained fully valid (every
// downstream check-point was confirmed by re-scanning), false if any part
// of it had to be discarded.
func (c *Cache) Update(b *buffer.Buffer) bool {
	commits := b.Changes.Since(c.changeIndex)
	if len(commits) == 0 {
		return true
	}

	dirtyFrom := -1

	for _, commit := range commits {
		for _, e := range commit.Edits {
			idx := c.applyEdit(e)
			if dirtyFrom < 0 || idx < dirtyFrom {
				dirtyFrom = idx
			}
		}
	}

	c.changeIndex = b.Changes.Len()

	if len(c.checkPoints) == 0 || dirtyFrom < 0 {
		c.tail = 0
		return true
	}

	return c.salvage(b, dirtyFrom)
}

// applyEdit shifts or drops check-points affected by a single edit and
// returns the index of the check-point that becomes the resume point for
// salvage (the greatest check-point at or before the edit).
func (c *Cache) applyEdit(e buffer.Edit) int {
	dirtyIdx := sort.Search(len(c.checkPoints), func(i int) bool {
		return c.checkPoints[i].Position > e.Position
	}) - 1
	if dirtyIdx < 0 {
		dirtyIdx = 0
	}

	switch e.Flags {
	case buffer.EditInsert, buffer.EditInsertAfterPosition:
		delta := uint64(len(e.Value))
		for i := range c.checkPoints {
			if c.checkPoints[i].Position >= e.Position {
				c.checkPoints[i].Position += delta
			}
		}
	case buffer.EditRemove:
		length := uint64(e.Length)
		if length == 0 {
			length = uint64(len(e.Value))
		}

		end := e.Position + length
		kept := c.checkPoints[:0]

		for _, cp := range c.checkPoints {
			switch {
			case cp.Position <= e.Position:
				kept = append(kept, cp)
			case cp.Position >= end:
				cp.Position -= length
				kept = append(kept, cp)
			default:
				// Straddled by the removal; dropped, rebuilt by salvage.
			}
		}

		c.checkPoints = kept

		if dirtyIdx >= len(c.checkPoints) {
			dirtyIdx = len(c.checkPoints) - 1
		}
	}

	return dirtyIdx
}

// salvage re-runs the tokenizer from the check-point at fromIdx, trying to
// re-confirm each subsequent (already position-shifted) check-point. Once
// a (position, state) pair matches, everything beyond it is trusted
// as-is; anything that can't be confirmed is discarded.
func (c *Cache) salvage(b *buffer.Buffer, fromIdx int) bool {
	original := c.checkPoints
	resume := original[fromIdx]

	it := b.Contents.IteratorAt(resume.Position)
	state := resume.State

	rebuilt := append([]CheckPoint(nil), original[:fromIdx+1]...)
	nextIdx := fromIdx + 1

	var scanned uint64

	for {
		if it.AtEOB() {
			c.checkPoints = rebuilt
			c.tail = it.Position()

			return nextIdx >= len(original)
		}

		tok, newState, ok := c.tokenizer(it, state)
		if !ok {
			c.checkPoints = rebuilt
			c.tail = it.Position()

			return nextIdx >= len(original)
		}

		it.GoTo(tok.End)
		state = newState
		scanned += tok.End - tok.Start

		if nextIdx < len(original) && it.Position() == original[nextIdx].Position {
			if state == original[nextIdx].State {
				rebuilt = append(rebuilt, original[nextIdx:]...)
				c.checkPoints = rebuilt
				c.tail = original[len(original)-1].Position

				return true
			}

			nextIdx++

			continue
		}

		if scanned >= CheckPointInterval {
			rebuilt = append(rebuilt, CheckPoint{Position: it.Position(), State: state})
			scanned = 0
		}
	}
}

// Tokens scans [from, to) and returns the tokens covering it, resuming
// from the nearest check-point at or before from.
func (c *Cache) Tokens(b *buffer.Buffer, from, to uint64) []buffer.Token {
	pos, state := c.FindCheckPoint(from)

	it := b.Contents.IteratorAt(pos)

	var out []buffer.Token

	for it.Position() < to && !it.AtEOB() {
		tok, newState, ok := c.tokenizer(it, state)
		if !ok {
			break
		}

		it.GoTo(tok.End)
		state = newState

		if tok.End > from {
			out = append(out, tok)
		}
	}

	return out
}
