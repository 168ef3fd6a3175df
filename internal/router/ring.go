package router

import "sync"

// RingStats snapshots a ring's counters.
type RingStats struct {
	Received int64
	Popped   int64
	Dropped  int64
	Len      int
	Capacity int
}

// Ring is a thread-safe fixed-capacity buffer with drop-oldest
// overflow semantics, used for FAST-class ticks where freshness beats
// completeness. Consumers poll with TryPop and can park on Notify.
type Ring[T any] struct {
	mu       sync.Mutex
	buf      []T
	head     int // read position
	tail     int // write position
	count    int
	capacity int

	received int64
	popped   int64
	dropped  int64

	notify chan struct{}
}

// NewRing creates a ring with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		buf:      make([]T, capacity),
		capacity: capacity,
		notify:   make(chan struct{}, 1),
	}
}

// Push adds an item. When the ring is full the oldest buffered item is
// discarded to make room; Push never blocks. Returns true if an item
// was dropped.
func (r *Ring[T]) Push(item T) bool {
	r.mu.Lock()

	var droppedOne bool
	if r.count == r.capacity {
		// Drop the oldest, keep the newest.
		var zero T
		r.buf[r.head] = zero
		r.head = (r.head + 1) % r.capacity
		r.count--
		r.dropped++
		droppedOne = true
	}

	r.buf[r.tail] = item
	r.tail = (r.tail + 1) % r.capacity
	r.count++
	r.received++
	r.mu.Unlock()

	// Wake a parked consumer.
	select {
	case r.notify <- struct{}{}:
	default:
	}

	return droppedOne
}

// TryPop removes and returns the oldest item without blocking.
func (r *Ring[T]) TryPop() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		var zero T
		return zero, false
	}

	item := r.buf[r.head]
	var zero T
	r.buf[r.head] = zero // Clear reference for GC
	r.head = (r.head + 1) % r.capacity
	r.count--
	r.popped++

	return item, true
}

// Notify returns a channel that receives a signal after a Push. The
// channel has capacity one; consumers must drain the ring after a
// wakeup rather than expect one signal per item.
func (r *Ring[T]) Notify() <-chan struct{} {
	return r.notify
}

// Len returns the number of buffered items.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Stats returns a snapshot of the ring's counters.
func (r *Ring[T]) Stats() RingStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RingStats{
		Received: r.received,
		Popped:   r.popped,
		Dropped:  r.dropped,
		Len:      r.count,
		Capacity: r.capacity,
	}
}
