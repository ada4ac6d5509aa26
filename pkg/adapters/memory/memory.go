// Package memory provides memory managers for decoder-internal buffers.
package memory

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/user/jxlstream/pkg/ports"
)

// ErrLimitExceeded is returned when an allocation would exceed the limit.
var ErrLimitExceeded = errors.New("memory: limit exceeded")

// Heap allocates from the Go heap, optionally bounded by a byte limit.
type Heap struct {
	limit int64
	inUse atomic.Int64
}

// NewHeap creates a Heap. A limit of 0 means unbounded.
func NewHeap(limit int64) *Heap {
	return &Heap{limit: limit}
}

// Alloc returns a zeroed buffer of length n.
func (h *Heap) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("memory: negative allocation %d", n)
	}
	if h.inUse.Add(int64(n)) > h.limit && h.limit > 0 {
		h.inUse.Add(-int64(n))
		return nil, fmt.Errorf("%w: %d bytes requested, limit %d", ErrLimitExceeded, n, h.limit)
	}
	return make([]byte, n), nil
}

// Free releases buf.
func (h *Heap) Free(buf []byte) {
	h.inUse.Add(-int64(cap(buf)))
}

// InUse returns the number of bytes currently allocated.
func (h *Heap) InUse() int64 {
	return h.inUse.Load()
}

var _ ports.MemoryManager = (*Heap)(nil)

const (
	minClass = 6
	maxClass = 26
)

// Pool recycles buffers in power-of-two size classes.
// Buffers larger than the biggest class bypass the pool.
type Pool struct {
	classes [maxClass + 1]sync.Pool
	gets    atomic.Int64
	puts    atomic.Int64
}

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{}
}

// sizeClass returns the class holding n bytes.
func sizeClass(n int) int {
	if n <= 1<<minClass {
		return minClass
	}
	return bits.Len(uint(n - 1))
}

// Alloc returns a zeroed buffer of length n.
func (p *Pool) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("memory: negative allocation %d", n)
	}
	p.gets.Add(1)

	c := sizeClass(n)
	if c > maxClass {
		return make([]byte, n), nil
	}
	if v := p.classes[c].Get(); v != nil {
		buf := (*v.(*[]byte))[:n]
		clear(buf)
		return buf, nil
	}
	return make([]byte, n, 1<<c), nil
}

// Free returns buf to its size class.
func (p *Pool) Free(buf []byte) {
	p.puts.Add(1)

	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	class := bits.Len(uint(c)) - 1
	if class < minClass || class > maxClass {
		return
	}
	buf = buf[:0]
	p.classes[class].Put(&buf)
}

// Outstanding returns allocations not yet freed.
func (p *Pool) Outstanding() int64 {
	return p.gets.Load() - p.puts.Load()
}

var _ ports.MemoryManager = (*Pool)(nil)

// New returns the memory manager for kind ("heap" or "pool").
func New(kind string) (ports.MemoryManager, error) {
	switch kind {
	case "", "heap":
		return NewHeap(0), nil
	case "pool":
		return NewPool(), nil
	default:
		return nil, fmt.Errorf("memory: unknown manager %q", kind)
	}
}
