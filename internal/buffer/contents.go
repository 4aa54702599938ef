// Package buffer implements the bucketed text store, its append-only change
// log, and the reference-counted handle that guards concurrent access to a
// single document.
package buffer

import (
	"sort"

	"github.com/quillkit/quill/pkg/safeconv"
)

const (
	// bucketTarget is the size new buckets are built toward.
	bucketTarget = 4096
	// bucketMin is the soft lower bound; a bucket shrinking below this after
	// a remove is merged with its successor (or predecessor, if last).
	bucketMin = 1024
	// bucketMax triggers a split on insert once a bucket would exceed it.
	bucketMax = bucketTarget * 2
)

type bucket struct {
	data []byte
}

// Contents is an ordered byte sequence partitioned into buckets, with a
// parallel line-start index so line/column math stays O(log N).
type Contents struct {
	buckets []*bucket
	// offsets[i] is the absolute start position of buckets[i]. Rebuilt for
	// the affected suffix on every structural edit.
	offsets []uint64
	// lineStarts[i] is the absolute position of the first byte of line i.
	// lineStarts[0] is always 0.
	lineStarts []uint64
}

// NewContents builds a Contents from an initial byte slice.
func NewContents(initial []byte) *Contents {
	c := &Contents{}
	c.reset(initial)

	return c
}

func (c *Contents) reset(initial []byte) {
	c.buckets = nil
	c.offsets = nil

	if len(initial) == 0 {
		c.buckets = append(c.buckets, &bucket{data: []byte{}})
		c.offsets = append(c.offsets, 0)
	} else {
		for start := 0; start < len(initial); start += bucketTarget {
			end := start + bucketTarget
			if end > len(initial) {
				end = len(initial)
			}

			b := make([]byte, end-start)
			copy(b, initial[start:end])
			c.buckets = append(c.buckets, &bucket{data: b})
		}

		c.rebuildOffsetsFrom(0)
	}

	c.rebuildLineStarts()
}

// Len returns the total number of bytes in the contents.
func (c *Contents) Len() uint64 {
	if len(c.offsets) == 0 {
		return 0
	}

	last := len(c.buckets) - 1

	return c.offsets[last] + uint64(len(c.buckets[last].data))
}

func (c *Contents) rebuildOffsetsFrom(i int) {
	if cap(c.offsets) < len(c.buckets) {
		grown := make([]uint64, len(c.buckets))
		copy(grown, c.offsets)
		c.offsets = grown
	} else {
		c.offsets = c.offsets[:len(c.buckets)]
	}

	var start uint64
	if i > 0 {
		start = c.offsets[i-1] + uint64(len(c.buckets[i-1].data))
	}

	for ; i < len(c.buckets); i++ {
		c.offsets[i] = start
		start += uint64(len(c.buckets[i].data))
	}
}

// bucketForPosition returns the index of the bucket containing pos, and pos'
// offset within that bucket. pos == Len() resolves to the last bucket, at an
// index equal to that bucket's length (one-past-the-end, for appends).
func (c *Contents) bucketForPosition(pos uint64) (int, int) {
	n := len(c.offsets)
	// Binary search for the greatest offset <= pos.
	i := sort.Search(n, func(i int) bool { return c.offsets[i] > pos }) - 1
	if i < 0 {
		i = 0
	}

	if i >= n-1 {
		i = n - 1
		return i, safeconv.MustUint64ToInt(pos - c.offsets[i])
	}

	return i, safeconv.MustUint64ToInt(pos - c.offsets[i])
}

// Insert splices bytes into the contents at pos, splitting the target
// bucket if it would grow past bucketMax.
func (c *Contents) Insert(pos uint64, data []byte) {
	if len(data) == 0 {
		return
	}

	idx, off := c.bucketForPosition(pos)
	b := c.buckets[idx]

	merged := make([]byte, 0, len(b.data)+len(data))
	merged = append(merged, b.data[:off]...)
	merged = append(merged, data...)
	merged = append(merged, b.data[off:]...)

	if len(merged) <= bucketMax {
		b.data = merged
		c.rebuildOffsetsFrom(idx)
	} else {
		mid := len(merged) / 2
		left := &bucket{data: append([]byte(nil), merged[:mid]...)}
		right := &bucket{data: append([]byte(nil), merged[mid:]...)}

		c.buckets = append(c.buckets, nil)
		copy(c.buckets[idx+2:], c.buckets[idx+1:])
		c.buckets[idx] = left
		c.buckets[idx+1] = right

		c.rebuildOffsetsFrom(idx)
	}

	c.updateLineStartsOnInsert(pos, data)
}

// Remove deletes the half-open byte range [pos, pos+n) from the contents.
func (c *Contents) Remove(pos uint64, n int) []byte {
	if n <= 0 {
		return nil
	}

	removed := make([]byte, 0, n)

	remaining := n
	for remaining > 0 {
		idx, off := c.bucketForPosition(pos)
		b := c.buckets[idx]

		avail := len(b.data) - off
		take := remaining
		if take > avail {
			take = avail
		}

		removed = append(removed, b.data[off:off+take]...)
		b.data = append(b.data[:off], b.data[off+take:]...)
		remaining -= take

		if len(b.data) < bucketMin && len(c.buckets) > 1 {
			c.mergeSmallBucket(idx)
		}

		// The next iteration resolves pos against the shrunken buckets.
		c.rebuildOffsetsFrom(0)
	}

	c.updateLineStartsOnRemove(pos, removed)

	return removed
}

// mergeSmallBucket merges buckets[idx] with its successor, or if it is the
// last bucket, with its predecessor.
func (c *Contents) mergeSmallBucket(idx int) {
	if idx < len(c.buckets)-1 {
		c.buckets[idx].data = append(c.buckets[idx].data, c.buckets[idx+1].data...)
		c.buckets = append(c.buckets[:idx+1], c.buckets[idx+2:]...)
	} else if idx > 0 {
		c.buckets[idx-1].data = append(c.buckets[idx-1].data, c.buckets[idx].data...)
		c.buckets = c.buckets[:idx]
	}
}

// Slice returns a copy of the byte range [start, end).
func (c *Contents) Slice(start, end uint64) []byte {
	if end <= start {
		return nil
	}

	out := make([]byte, 0, end-start)
	it := c.IteratorAt(start)

	for pos := start; pos < end; pos++ {
		b, ok := it.Get()
		if !ok {
			break
		}

		out = append(out, b)
		it.Advance(1)
	}

	return out
}

// StringifyInto appends the full contents to out and returns it, for
// snapshotting (e.g. saving to disk).
func (c *Contents) StringifyInto(out []byte) []byte {
	for _, b := range c.buckets {
		out = append(out, b.data...)
	}

	return out
}

// GetLineNumber returns the zero-based line number containing pos.
func (c *Contents) GetLineNumber(pos uint64) int {
	n := len(c.lineStarts)
	i := sort.Search(n, func(i int) bool { return c.lineStarts[i] > pos }) - 1
	if i < 0 {
		i = 0
	}

	return i
}

// IteratorAtLine returns an iterator positioned at the start of line n.
func (c *Contents) IteratorAtLine(n int) *Iterator {
	if n < 0 {
		n = 0
	}

	if n >= len(c.lineStarts) {
		return c.IteratorAt(c.Len())
	}

	return c.IteratorAt(c.lineStarts[n])
}

// LineCount returns the number of lines (at least 1, even for empty contents).
func (c *Contents) LineCount() int {
	return len(c.lineStarts)
}

func (c *Contents) rebuildLineStarts() {
	c.lineStarts = c.lineStarts[:0]
	c.lineStarts = append(c.lineStarts, 0)

	var pos uint64
	for _, b := range c.buckets {
		for _, ch := range b.data {
			pos++
			if ch == '\n' {
				c.lineStarts = append(c.lineStarts, pos)
			}
		}
	}
}

// updateLineStartsOnInsert and updateLineStartsOnRemove keep the line-start
// index consistent without a full rescan in the common no-newline case.
func (c *Contents) updateLineStartsOnInsert(pos uint64, data []byte) {
	hasNewline := false

	for _, ch := range data {
		if ch == '\n' {
			hasNewline = true
			break
		}
	}

	if !hasNewline {
		i := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > pos })
		for ; i < len(c.lineStarts); i++ {
			c.lineStarts[i] += uint64(len(data))
		}

		return
	}

	c.rebuildLineStarts()
}

func (c *Contents) updateLineStartsOnRemove(pos uint64, removed []byte) {
	hasNewline := false

	for _, ch := range removed {
		if ch == '\n' {
			hasNewline = true
			break
		}
	}

	if !hasNewline {
		n := uint64(len(removed))
		i := sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > pos })

		for ; i < len(c.lineStarts); i++ {
			c.lineStarts[i] -= n
		}

		return
	}

	c.rebuildLineStarts()
}
