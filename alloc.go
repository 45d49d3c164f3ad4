package uamqp

// Allocator supplies the buffers a FrameCodec decodes into and encodes
// from. Alloc must return a slice of length n or an error.
type Allocator interface {
	Alloc(n int) ([]byte, error)
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc func(n int) ([]byte, error)

// Alloc calls f(n).
func (f AllocatorFunc) Alloc(n int) ([]byte, error) {
	return f(n)
}

type heapAllocator struct{}

func (heapAllocator) Alloc(n int) ([]byte, error) {
	return make([]byte, n), nil
}

func alloc(a Allocator, n int) ([]byte, error) {
	b, err := a.Alloc(n)
	if err != nil {
		return nil, errorWrapf(ErrAllocation, "allocating %d bytes: %v", n, err)
	}
	if len(b) != n {
		return nil, errorWrapf(ErrAllocation, "allocator returned %d bytes, want %d", len(b), n)
	}
	return b, nil
}
