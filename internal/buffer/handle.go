package buffer

import "weak"

// Handle is a reference-counted strong reference to a Buffer. Windows and
// synchronous jobs hold Handles; a Buffer is eligible for eviction from the
// Editor's registry once its last Handle is closed.
type Handle struct {
	buf     *Buffer
	onEvict func(ID)
	closed  bool
}

// NewHandle wraps buf in a Handle with an initial reference count of one.
// onEvict, if non-nil, is invoked exactly once when the reference count
// drops to zero.
func NewHandle(buf *Buffer, onEvict func(ID)) *Handle {
	return &Handle{buf: buf, onEvict: onEvict}
}

// Clone returns a new Handle sharing the same Buffer, incrementing its
// reference count.
func (h *Handle) Clone() *Handle {
	h.buf.retain()
	return &Handle{buf: h.buf, onEvict: h.onEvict}
}

// Close releases this Handle's reference. Calling it twice panics, since
// that indicates a double-free of ownership.
func (h *Handle) Close() {
	if h.closed {
		panic("buffer: Handle closed twice")
	}

	h.closed = true

	if h.buf.release() == 0 && h.onEvict != nil {
		h.onEvict(h.buf.ID)
	}
}

// Buffer returns the underlying Buffer. Valid only between construction and
// Close.
func (h *Handle) Buffer() *Buffer { return h.buf }

// Weak returns a WeakHandle that does not keep the Buffer logically alive;
// asynchronous jobs hold these so they never extend a buffer's lifetime.
func (h *Handle) Weak() WeakHandle {
	return WeakHandle{ptr: weak.Make(h.buf), id: h.buf.ID}
}

// WeakHandle is a non-owning reference to a Buffer. Async jobs must upgrade
// it on every tick and bail when upgrade fails — either the buffer was
// garbage collected (no strong Handle remains anywhere) or its reference
// count already reached zero and it is pending eviction.
type WeakHandle struct {
	ptr weak.Pointer[Buffer]
	id  ID
}

// ID returns the buffer identity this weak handle refers to, valid even
// after the buffer itself is gone.
func (w WeakHandle) ID() ID { return w.id }

// Upgrade attempts to produce a live Handle from the weak reference. It
// fails if the buffer has been collected or its Editor-registry reference
// count has already reached zero.
func (w WeakHandle) Upgrade(onEvict func(ID)) (*Handle, bool) {
	buf := w.ptr.Value()
	if buf == nil {
		return nil, false
	}

	for {
		cur := buf.refCount.Load()
		if cur <= 0 {
			return nil, false
		}

		if buf.refCount.CompareAndSwap(cur, cur+1) {
			return &Handle{buf: buf, onEvict: onEvict}, true
		}
	}
}
