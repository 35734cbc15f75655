package vm

import (
	"sync"
	"sync/atomic"
)

// heapEntry pairs a heap-allocated value with its reference count. The
// allocating call holds the first reference; every other reference (a
// local variable, a field, an array slot, an operand stack slot) that
// starts pointing at it must Retain, and release it with Release when that
// slot is overwritten or its frame dies.
type heapEntry struct {
	obj      any
	refCount atomic.Int64
}

// Heap is the JVM heap, managed by reference counting rather than
// mark-sweep: an object is freed the instant its count reaches zero
// instead of waiting for a collection pass, and there is no global
// stop-the-world pause.
type Heap struct {
	objects     map[uint64]*heapEntry
	objectMutex sync.RWMutex

	nextID atomic.Uint64

	allocCount   atomic.Uint64
	releaseCount atomic.Uint64
	totalBytes   atomic.Int64
}

// NewHeap creates a new heap
func NewHeap() *Heap {
	return &Heap{
		objects: make(map[uint64]*heapEntry),
	}
}

// Alloc allocates a new object on the heap with an initial reference count
// of 1 and returns its ID.
func (h *Heap) Alloc(obj any) uint64 {
	id := h.nextID.Add(1)
	h.allocCount.Add(1)

	entry := &heapEntry{obj: obj}
	entry.refCount.Store(1)

	h.objectMutex.Lock()
	h.objects[id] = entry
	h.objectMutex.Unlock()

	h.totalBytes.Add(int64(estimateSize(obj)))
	return id
}

// Get retrieves an object by ID, or nil if it has already been freed.
func (h *Heap) Get(id uint64) any {
	h.objectMutex.RLock()
	defer h.objectMutex.RUnlock()
	e, ok := h.objects[id]
	if !ok {
		return nil
	}
	return e.obj
}

// Retain increments id's reference count. Call this whenever a new slot
// (local variable, field, array element, operand stack entry) starts
// holding this reference.
func (h *Heap) Retain(id uint64) {
	h.objectMutex.RLock()
	e, ok := h.objects[id]
	h.objectMutex.RUnlock()
	if ok {
		e.refCount.Add(1)
	}
}

// Release decrements id's reference count, freeing the object immediately
// once it reaches zero. Call this whenever a slot holding this reference is
// overwritten or goes out of scope.
func (h *Heap) Release(id uint64) {
	h.objectMutex.RLock()
	e, ok := h.objects[id]
	h.objectMutex.RUnlock()
	if !ok {
		return
	}
	if e.refCount.Add(-1) > 0 {
		return
	}

	h.objectMutex.Lock()
	defer h.objectMutex.Unlock()
	if cur, ok := h.objects[id]; ok && cur == e {
		delete(h.objects, id)
		h.totalBytes.Add(-int64(estimateSize(e.obj)))
		h.releaseCount.Add(1)
	}
}

// Free immediately removes an object regardless of its reference count,
// for callers (tests, forced cleanup) that need to bypass counting.
func (h *Heap) Free(id uint64) {
	h.objectMutex.Lock()
	defer h.objectMutex.Unlock()
	if e, exists := h.objects[id]; exists {
		h.totalBytes.Add(-int64(estimateSize(e.obj)))
		delete(h.objects, id)
		h.releaseCount.Add(1)
	}
}

// Stats returns heap statistics.
func (h *Heap) Stats() HeapStats {
	h.objectMutex.RLock()
	live := len(h.objects)
	h.objectMutex.RUnlock()
	return HeapStats{
		AllocCount:   h.allocCount.Load(),
		ReleaseCount: h.releaseCount.Load(),
		LiveObjects:  uint64(live),
		TotalBytes:   h.totalBytes.Load(),
	}
}

// HeapStats contains heap statistics
type HeapStats struct {
	AllocCount   uint64
	ReleaseCount uint64
	LiveObjects  uint64
	TotalBytes   int64
}

// estimateSize estimates the size of an object in bytes
func estimateSize(obj any) int {
	switch v := obj.(type) {
	case *Object:
		size := 64
		size += len(v.Fields) * 16
		size += len(v.FieldSlots) * 8
		return size
	case *Array:
		size := 32
		if v.Ints != nil {
			size += len(v.Ints) * 4
		}
		if v.Longs != nil {
			size += len(v.Longs) * 8
		}
		if v.Floats != nil {
			size += len(v.Floats) * 4
		}
		if v.Doubles != nil {
			size += len(v.Doubles) * 8
		}
		if v.References != nil {
			size += len(v.References) * 8
		}
		return size
	case string:
		return 24 + len(v)
	default:
		return 16
	}
}

// ObjectCount returns the number of live objects
func (h *Heap) ObjectCount() int {
	h.objectMutex.RLock()
	defer h.objectMutex.RUnlock()
	return len(h.objects)
}
