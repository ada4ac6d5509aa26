package ports

// MemoryManager provides the decoder's internal allocations.
type MemoryManager interface {
	// Alloc returns a zeroed buffer of length n.
	Alloc(n int) ([]byte, error)

	// Free releases a buffer previously returned by Alloc.
	Free(buf []byte)
}
