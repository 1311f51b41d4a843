package gochan

const minRingSize = 8

// ring is a FIFO of pending values stored in a circular slice. A fixed ring
// never grows past its initial size; a growable ring doubles when full and
// halves when it falls to a quarter of its size. ring is not safe for
// concurrent use, the owning core serializes access.
type ring[T any] struct {
	items    []T
	head     int
	count    int
	growable bool
}

func newFixedRing[T any](size int) *ring[T] {
	return &ring[T]{items: make([]T, size)}
}

func newGrowableRing[T any]() *ring[T] {
	return &ring[T]{items: make([]T, minRingSize), growable: true}
}

func (r *ring[T]) Len() int {
	return r.count
}

// Full reports whether a fixed ring has no free slot. Growable rings are
// never full.
func (r *ring[T]) Full() bool {
	return !r.growable && r.count == len(r.items)
}

// Push appends v at the tail. It returns false only for a full fixed ring.
func (r *ring[T]) Push(v T) bool {
	if r.count == len(r.items) {
		if !r.growable {
			return false
		}
		r.resize(len(r.items) * 2)
	}
	r.items[(r.head+r.count)%len(r.items)] = v
	r.count++
	return true
}

// Pop removes and returns the head value.
func (r *ring[T]) Pop() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	var zero T
	v = r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.count--
	if r.growable && len(r.items) > minRingSize && r.count <= len(r.items)/4 {
		r.resize(len(r.items) / 2)
	}
	return v, true
}

// Clear drops every pending value and returns how many were dropped.
func (r *ring[T]) Clear() int {
	n := r.count
	var zero T
	for i := 0; i < r.count; i++ {
		r.items[(r.head+i)%len(r.items)] = zero
	}
	r.head, r.count = 0, 0
	if r.growable && len(r.items) > minRingSize {
		r.items = make([]T, minRingSize)
	}
	return n
}

func (r *ring[T]) resize(size int) {
	items := make([]T, size)
	for i := 0; i < r.count; i++ {
		items[i] = r.items[(r.head+i)%len(r.items)]
	}
	r.items = items
	r.head = 0
}
