package window

import "sync/atomic"

// LiveFeed holds the most recent value and whether it has been read.
// Writers call Add, a single reader calls Read; both are safe across goroutines.
type LiveFeed[T any] struct {
	latest atomic.Pointer[T]
}

// Add stores a new value and marks it unread, replacing any unread value
func (f *LiveFeed[T]) Add(v T) {
	f.latest.Store(&v)
}

// Read returns the unread value and clears the flag.
// ok is false when nothing new arrived since the previous Read.
func (f *LiveFeed[T]) Read() (v T, ok bool) {
	p := f.latest.Swap(nil)
	if p == nil {
		return v, false
	}
	return *p, true
}

// HasNew reports whether an unread value is waiting
func (f *LiveFeed[T]) HasNew() bool {
	return f.latest.Load() != nil
}
