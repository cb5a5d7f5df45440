// Package room owns the lifecycle of a single match lobby: join/leave,
// ready-up, host promotion, the grace window on disconnect, and feeding
// validated actions into the tick scheduler.
package room

import (
	"runtime"
	"sync/atomic"
)

// CacheLineSize is the typical CPU cache line size (64 bytes on x86-64),
// used to pad the hot head/tail counters below so producer and consumer
// don't thrash the same cache line.
const CacheLineSize = 64

// Padding prevents adjacent fields from sharing a cache line.
type Padding [CacheLineSize]byte

// LockFreeQueue is a multi-producer, single-consumer ring buffer. Nothing
// in the server constructs one; room lifecycle calls (join, leave, ready,
// ping) go directly through Manager methods.
type LockFreeQueue[T any] struct {
	_pad0 Padding

	head  uint64
	_pad1 Padding

	tail  uint64
	_pad2 Padding

	mask uint64
	data []T
}

// NewLockFreeQueue returns a queue with capacity rounded up to the next
// power of two.
func NewLockFreeQueue[T any](capacity int) *LockFreeQueue[T] {
	cap := 1
	for cap < capacity {
		cap <<= 1
	}
	return &LockFreeQueue[T]{
		mask: uint64(cap - 1),
		data: make([]T, cap),
	}
}

// TryPush adds an item from any number of concurrent producers. Returns
// false if the queue is full.
func (q *LockFreeQueue[T]) TryPush(item T) bool {
	for {
		head := atomic.LoadUint64(&q.head)
		tail := atomic.LoadUint64(&q.tail)
		if head-tail > q.mask {
			return false
		}
		if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
			q.data[head&q.mask] = item
			return true
		}
		runtime.Gosched()
	}
}

// TryPop removes an item. Must only be called from the single consumer
// goroutine.
func (q *LockFreeQueue[T]) TryPop() (T, bool) {
	var zero T
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	if tail >= head {
		return zero, false
	}
	item := q.data[tail&q.mask]
	atomic.StoreUint64(&q.tail, tail+1)
	return item, true
}

// Len returns the approximate queue length; a snapshot that may be stale
// immediately under concurrent producers.
func (q *LockFreeQueue[T]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// Drain pops up to maxItems in one pass.
func (q *LockFreeQueue[T]) Drain(maxItems int) []T {
	result := make([]T, 0, maxItems)
	for len(result) < maxItems {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		result = append(result, item)
	}
	return result
}

// SPSCQueue is a single-producer, single-consumer ring buffer. Used for a
// seated player's action stream: only that player's connection reader
// pushes, only the tick scheduler's drain step pops, so no CAS is needed.
type SPSCQueue[T any] struct {
	_pad0 Padding
	head  uint64
	_pad1 Padding
	tail  uint64
	_pad2 Padding
	mask  uint64
	data  []T
}

// NewSPSCQueue returns a queue with capacity rounded up to the next power
// of two.
func NewSPSCQueue[T any](capacity int) *SPSCQueue[T] {
	cap := 1
	for cap < capacity {
		cap <<= 1
	}
	return &SPSCQueue[T]{
		mask: uint64(cap - 1),
		data: make([]T, cap),
	}
}

// TryPush is called only by the owning player's connection goroutine.
func (q *SPSCQueue[T]) TryPush(item T) bool {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head-tail > q.mask {
		return false
	}
	q.data[head&q.mask] = item
	atomic.StoreUint64(&q.head, head+1)
	return true
}

// TryPop is called only by the scheduler's drain step.
func (q *SPSCQueue[T]) TryPop() (T, bool) {
	var zero T
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	if tail >= head {
		return zero, false
	}
	item := q.data[tail&q.mask]
	atomic.StoreUint64(&q.tail, tail+1)
	return item, true
}

// DrainAll pops every currently available item, preserving FIFO order,
// for the scheduler's per-tick per-player action drain.
func (q *SPSCQueue[T]) DrainAll() []T {
	var out []T
	for {
		item, ok := q.TryPop()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

// Len returns the approximate queue length.
func (q *SPSCQueue[T]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head < tail {
		return 0
	}
	return int(head - tail)
}
