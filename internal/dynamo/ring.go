package dynamo

// Ring is a fixed capacity FIFO that evicts its oldest element on overflow.
type Ring[T any] struct {
	buf   []T
	start int
	size  int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.size }
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Push appends v, dropping the oldest element when full.
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// At returns the i-th element, oldest first. It panics on an out of range index.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("dynamo: ring index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

func (r *Ring[T]) First() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.At(0), true
}

func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.At(r.size - 1), true
}

func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.start, r.size = 0, 0
}

// Slice copies the contents, oldest first.
func (r *Ring[T]) Slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Clone returns an independent copy with the same capacity.
func (r *Ring[T]) Clone() *Ring[T] {
	if r == nil {
		return nil
	}
	c := &Ring[T]{buf: make([]T, len(r.buf)), start: r.start, size: r.size}
	copy(c.buf, r.buf)
	return c
}
