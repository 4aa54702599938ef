package buffer

// Iterator is a positional cursor into a specific Contents snapshot. It is
// invalidated by any mutation to that Contents; callers must call
// IteratorAt again after an edit rather than continue using a stale one.
type Iterator struct {
	contents  *Contents
	bucketIdx int
	inBucket  int
	position  uint64
}

// IteratorAt returns an iterator positioned at pos (clamped to [0, Len()]).
func (c *Contents) IteratorAt(pos uint64) *Iterator {
	if pos > c.Len() {
		pos = c.Len()
	}

	idx, off := c.bucketForPosition(pos)

	return &Iterator{contents: c, bucketIdx: idx, inBucket: off, position: pos}
}

// AtBOB reports whether the iterator sits at the beginning of the buffer.
func (it *Iterator) AtBOB() bool { return it.position == 0 }

// AtEOB reports whether the iterator sits at the end of the buffer.
func (it *Iterator) AtEOB() bool { return it.position >= it.contents.Len() }

// Position returns the iterator's absolute byte offset.
func (it *Iterator) Position() uint64 { return it.position }

// ContentsRef returns the Contents this iterator is positioned into.
// Tokenizers use it to re-derive a full snapshot when they need more
// context than one byte at a time (e.g. a tree-sitter grammar).
func (it *Iterator) ContentsRef() *Contents { return it.contents }

// Get returns the byte at the iterator's position, or (0, false) at EOB.
func (it *Iterator) Get() (byte, bool) {
	if it.AtEOB() {
		return 0, false
	}

	b := it.contents.buckets[it.bucketIdx]
	if it.inBucket >= len(b.data) {
		// Positioned at a bucket boundary; roll to the next non-empty bucket.
		idx, off := it.contents.bucketForPosition(it.position)
		it.bucketIdx, it.inBucket = idx, off
		b = it.contents.buckets[it.bucketIdx]
	}

	return b.data[it.inBucket], true
}

// Advance moves the iterator forward n bytes (clamped to EOB). Staying
// within the current bucket is O(1); crossing into a later bucket falls
// back to the O(log N) reseek in GoTo.
func (it *Iterator) Advance(n uint64) {
	target := it.position + n

	b := it.contents.buckets[it.bucketIdx]
	if newIn := it.inBucket + int(n); n <= uint64(^uint(0)>>1) && newIn <= len(b.data) {
		it.inBucket = newIn
		it.position = target

		return
	}

	it.GoTo(target)
}

// Retreat moves the iterator backward n bytes (clamped to BOB). Staying
// within the current bucket is O(1).
func (it *Iterator) Retreat(n uint64) {
	if n > it.position {
		it.GoTo(0)
		return
	}

	if n <= uint64(it.inBucket) {
		it.inBucket -= int(n)
		it.position -= n

		return
	}

	it.GoTo(it.position - n)
}

// GoTo repositions the iterator at an absolute offset, reseeking across
// buckets in O(log N).
func (it *Iterator) GoTo(pos uint64) {
	if pos > it.contents.Len() {
		pos = it.contents.Len()
	}

	idx, off := it.contents.bucketForPosition(pos)
	it.bucketIdx, it.inBucket, it.position = idx, off, pos
}

// AdvanceTo moves forward until fn returns true for the current byte, or EOB.
func (it *Iterator) AdvanceTo(fn func(byte) bool) {
	for {
		b, ok := it.Get()
		if !ok || fn(b) {
			return
		}

		it.Advance(1)
	}
}

// RetreatTo moves backward until fn returns true for the current byte, or BOB.
func (it *Iterator) RetreatTo(fn func(byte) bool) {
	for !it.AtBOB() {
		b, ok := it.Get()
		if ok && fn(b) {
			return
		}

		it.Retreat(1)
	}
}

// Equal reports positional equality against another iterator of the same
// Contents.
func (it *Iterator) Equal(other *Iterator) bool {
	return it.contents == other.contents && it.position == other.position
}

// SliceInto copies the byte range [it.position, end) into out, advancing a
// scratch copy of it without mutating the receiver.
func (it *Iterator) SliceInto(end uint64, out []byte) []byte {
	return append(out, it.contents.Slice(it.position, end)...)
}
