package display

// DefaultRows is the window capacity used when none is configured.
const DefaultRows = 8

// Window is a fixed-capacity ring of the most recent items, oldest first.
// Pushing into a full window evicts exactly the oldest item.
//
// A Window is owned by a single goroutine and is not safe for concurrent use.
type Window[T any] struct {
	buf   []T
	head  int // oldest item
	count int
}

// NewWindow creates a window holding at most capacity items.
func NewWindow[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Window[T]{buf: make([]T, capacity)}
}

// Push appends item. When the window was full, the evicted item is returned
// with ok set.
func (w *Window[T]) Push(item T) (evicted T, ok bool) {
	capacity := len(w.buf)

	if w.count == capacity {
		evicted = w.buf[w.head]
		w.buf[w.head] = item
		w.head = (w.head + 1) % capacity
		return evicted, true
	}

	w.buf[(w.head+w.count)%capacity] = item
	w.count++
	return evicted, false
}

// Len returns the number of items held.
func (w *Window[T]) Len() int {
	return w.count
}

// Cap returns the window capacity.
func (w *Window[T]) Cap() int {
	return len(w.buf)
}

// At returns the i-th item, oldest first. It panics if i is out of range.
func (w *Window[T]) At(i int) T {
	if i < 0 || i >= w.count {
		panic("display: window index out of range")
	}
	return w.buf[(w.head+i)%len(w.buf)]
}

// Items returns a copy of the held items, oldest first.
func (w *Window[T]) Items() []T {
	out := make([]T, w.count)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
