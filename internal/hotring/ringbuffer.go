// Package hotring provides the fixed-capacity FIFO buffer backing a bounded
// record history.
package hotring

// RingBuffer is a fixed-size collection of recent items. Adds beyond the
// capacity overwrite the oldest item first.
//
// A RingBuffer is not safe for concurrent use. The owning history serializes
// every mutation and every consistent read in a single critical section, so
// the buffer itself carries no lock.
type RingBuffer[T any] struct {
	buf []T // fully allocated at construction
	cur int // index for next write, walk backwards to read
	len int // count of actual values
}

// NewRingBuffer returns an empty ring buffer of items, pre-allocated with the
// given capacity, which must be positive.
func NewRingBuffer[T any](cap int) *RingBuffer[T] {
	if cap <= 0 {
		panic("hotring: non-positive capacity")
	}
	return &RingBuffer[T]{
		buf: make([]T, cap),
	}
}

// Add the value to the ring buffer. If the ring buffer was full and an item
// was overwritten by this add, return that item and true, otherwise return a
// zero value item and false.
func (rb *RingBuffer[T]) Add(val T) (dropped T, ok bool) {
	// Capture any overwritten value so it can be returned.
	if rb.len >= len(rb.buf) {
		dropped, ok = rb.buf[rb.cur], true
	}

	// Write the value at the write cursor.
	rb.buf[rb.cur] = val

	// Update the ring buffer size.
	if rb.len < len(rb.buf) {
		rb.len += 1
	}

	// Advance the write cursor.
	rb.cur += 1
	if rb.cur >= len(rb.buf) {
		rb.cur -= len(rb.buf)
	}

	// Done.
	return dropped, ok
}

// Len returns the number of values currently in the ring buffer.
func (rb *RingBuffer[T]) Len() int {
	return rb.len
}

// Cap returns the fixed capacity of the ring buffer.
func (rb *RingBuffer[T]) Cap() int {
	return len(rb.buf)
}

// Reset removes all values from the ring buffer, zeroing the underlying
// storage so that evicted values don't linger.
func (rb *RingBuffer[T]) Reset() {
	var zero T
	for i := range rb.buf {
		rb.buf[i] = zero
	}
	rb.cur = 0
	rb.len = 0
}

// Walk calls the given function for each value in the ring buffer, starting
// with the most recent value, and ending with the oldest value. If the
// function returns an error, the walk stops.
func (rb *RingBuffer[T]) Walk(fn func(T) error) error {
	// Read up to rb.len values.
	for i := 0; i < rb.len; i++ {
		// Reads go backwards from one before the write cursor.
		cur := rb.cur - 1 - i

		// Wrap around when necessary.
		if cur < 0 {
			cur += len(rb.buf)
		}

		// If the function returns an error, we're done.
		if err := fn(rb.buf[cur]); err != nil {
			return err
		}
	}

	return nil
}

// Slice returns a copy of the current values, ordered oldest to newest.
func (rb *RingBuffer[T]) Slice() []T {
	out := make([]T, rb.len)

	i := rb.len - 1
	rb.Walk(func(val T) error {
		out[i] = val
		i--
		return nil
	})

	return out
}
