package pool

import "sync"

var uint64SlicePool = sync.Pool{
	New: func() any { return &[]uint64{} },
}

// GetUint64Slice retrieves an empty uint64 slice with at least the given capacity.
//
// Group child lists are assembled in these slices. The caller must call the
// returned cleanup function once the slice is no longer referenced.
//
// Parameters:
//   - capacity: Minimum capacity of the returned slice
//
// Returns:
//   - []uint64: A zero-length slice
//   - func(): Cleanup function that returns the slice to the pool
//
// Example:
//
//	children, cleanup := pool.GetUint64Slice(len(props) + 1)
//	defer cleanup()
func GetUint64Slice(capacity int) ([]uint64, func()) {
	ptr, _ := uint64SlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < capacity {
		slice = make([]uint64, 0, capacity)
	}
	*ptr = slice

	return slice, func() {
		*ptr = (*ptr)[:0]
		uint64SlicePool.Put(ptr)
	}
}
