package set

import (
	"cmp"
	"fmt"
	"sync"
)

// Allocator hands out and takes back the nodes of a Set.
//
// A node passed to FreeNode is no longer referenced by the set that freed it.
type Allocator[T cmp.Ordered] interface {
	NewNode() (*Node[T], error)
	FreeNode(n *Node[T])
}

// Reserver is implemented by allocators that account for the set header as
// well as its nodes. New calls Reserve once, Destroy calls Release once.
type Reserver interface {
	Reserve() error
	Release()
}

type HeapAllocator[T cmp.Ordered] struct{}

func (HeapAllocator[T]) NewNode() (*Node[T], error) {
	return new(Node[T]), nil
}

func (HeapAllocator[T]) FreeNode(n *Node[T]) {
	*n = Node[T]{}
}

// FreeList keeps up to size freed nodes around for reuse.
// It is safe to share one FreeList between sets used from different goroutines.
type FreeList[T cmp.Ordered] struct {
	mu       sync.Mutex
	freelist []*Node[T]
}

func NewFreeList[T cmp.Ordered](size int) *FreeList[T] {
	return &FreeList[T]{freelist: make([]*Node[T], 0, size)}
}

func (f *FreeList[T]) NewNode() (*Node[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	index := len(f.freelist) - 1
	if index < 0 {
		return new(Node[T]), nil
	}
	n := f.freelist[index]
	f.freelist[index] = nil
	f.freelist = f.freelist[:index]
	return n, nil
}

func (f *FreeList[T]) FreeNode(n *Node[T]) {
	*n = Node[T]{}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.freelist) < cap(f.freelist) {
		f.freelist = append(f.freelist, n)
	}
}

// Len reports how many nodes are waiting to be reused.
func (f *FreeList[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.freelist)
}

// LimitedAllocator fails with ErrAllocationFailure once limit allocations are live.
// It is safe for concurrent use when its base allocator is.
type LimitedAllocator[T cmp.Ordered] struct {
	limit int
	base  Allocator[T]

	mu   sync.Mutex
	live int
}

func NewLimitedAllocator[T cmp.Ordered](limit int, base Allocator[T]) *LimitedAllocator[T] {
	if base == nil {
		base = HeapAllocator[T]{}
	}
	return &LimitedAllocator[T]{limit: limit, base: base}
}

func (a *LimitedAllocator[T]) take() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live >= a.limit {
		return fmt.Errorf("%w: limit of %d live allocations reached", ErrAllocationFailure, a.limit)
	}
	a.live++
	return nil
}

func (a *LimitedAllocator[T]) give() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.live > 0 {
		a.live--
	}
}

func (a *LimitedAllocator[T]) NewNode() (*Node[T], error) {
	if err := a.take(); err != nil {
		return nil, err
	}
	n, err := a.base.NewNode()
	if err != nil {
		a.give()
		return nil, err
	}
	return n, nil
}

func (a *LimitedAllocator[T]) FreeNode(n *Node[T]) {
	a.base.FreeNode(n)
	a.give()
}

func (a *LimitedAllocator[T]) Reserve() error {
	return a.take()
}

func (a *LimitedAllocator[T]) Release() {
	a.give()
}

func (a *LimitedAllocator[T]) Limit() int {
	return a.limit
}

// Live reports the number of outstanding allocations, the set header included.
func (a *LimitedAllocator[T]) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}
