package mocks

import (
	"errors"
	"sync"

	"github.com/user/jxlstream/pkg/ports"
)

// ErrAllocFailed is returned by MemoryManager when FailAfter is reached.
var ErrAllocFailed = errors.New("mock: allocation failed")

// MemoryManager is a mock implementation of ports.MemoryManager that
// tracks live allocations.
type MemoryManager struct {
	mu sync.Mutex

	// FailAfter makes every allocation after the first FailAfter fail.
	// A negative value never fails.
	FailAfter int

	Allocs int
	Frees  int
	Bytes  int
}

// NewMemoryManager creates a tracking MemoryManager that never fails.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{FailAfter: -1}
}

func (m *MemoryManager) Alloc(n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAfter >= 0 && m.Allocs >= m.FailAfter {
		return nil, ErrAllocFailed
	}
	m.Allocs++
	m.Bytes += n
	return make([]byte, n), nil
}

func (m *MemoryManager) Free(buf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frees++
	m.Bytes -= cap(buf)
}

// Live returns the number of allocations not yet freed.
func (m *MemoryManager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Allocs - m.Frees
}

var _ ports.MemoryManager = (*MemoryManager)(nil)
