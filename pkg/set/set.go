package set

import (
	"cmp"
	"fmt"
	"iter"
)

// Node holds one value of a Set and owns its two subtrees.
// Every value under lesser is smaller than value, every value under greater is larger.
type Node[T cmp.Ordered] struct {
	value   T
	lesser  *Node[T]
	greater *Node[T]
}

func (n *Node[T]) Value() T {
	return n.value
}

func (n *Node[T]) Lesser() *Node[T] {
	return n.lesser
}

func (n *Node[T]) Greater() *Node[T] {
	return n.greater
}

// Set is an ordered set backed by an unbalanced binary search tree.
// The tree's shape depends only on insertion order.
//
// A Set is not safe for concurrent use. The zero value is an empty set using
// HeapAllocator.
type Set[T cmp.Ordered] struct {
	root  *Node[T]
	size  int
	alloc Allocator[T]

	reserved  bool
	destroyed bool
}

// IntSet is a set of int64 values.
type IntSet = Set[int64]

type Option[T cmp.Ordered] func(s *Set[T])

func WithAllocator[T cmp.Ordered](a Allocator[T]) Option[T] {
	return func(s *Set[T]) {
		s.alloc = a
	}
}

// New creates an empty set. If the allocator is a Reserver it is asked for
// the set's own slot first, and a refusal is returned as is.
func New[T cmp.Ordered](opts ...Option[T]) (*Set[T], error) {
	s := &Set[T]{}
	for _, opt := range opts {
		opt(s)
	}

	if r, ok := s.alloc.(Reserver); ok {
		if err := r.Reserve(); err != nil {
			return nil, err
		}
		s.reserved = true
	}

	return s, nil
}

func NewIntSet(opts ...Option[int64]) (*IntSet, error) {
	return New(opts...)
}

func (s *Set[T]) allocator() Allocator[T] {
	if s.alloc == nil {
		s.alloc = HeapAllocator[T]{}
	}
	return s.alloc
}

// Root returns the root node, or nil when the set is empty.
func (s *Set[T]) Root() *Node[T] {
	return s.root
}

// Insert adds item unless it is already present, and reports whether a node was added.
// The leaf is allocated only after its slot is found, so a failed allocation leaves
// the set unchanged.
func (s *Set[T]) Insert(item T) (bool, error) {
	if s.destroyed {
		return false, ErrDestroyed
	}

	slot := &s.root
	for *slot != nil {
		n := *slot
		switch c := cmp.Compare(item, n.value); {
		case c == 0:
			return false, nil
		case c < 0:
			slot = &n.lesser
		default:
			slot = &n.greater
		}
	}

	n, err := s.allocator().NewNode()
	if err != nil {
		return false, err
	}
	*n = Node[T]{value: item}
	*slot = n
	s.size++

	return true, nil
}

func (s *Set[T]) Add(item T) error {
	_, err := s.Insert(item)
	return err
}

func (s *Set[T]) Contains(item T) bool {
	n := s.root
	for n != nil {
		switch c := cmp.Compare(item, n.value); {
		case c == 0:
			return true
		case c < 0:
			n = n.lesser
		default:
			n = n.greater
		}
	}
	return false
}

// Remove deletes item from the set and reports whether it was present.
// A node with two children is replaced by its in-order successor.
func (s *Set[T]) Remove(item T) bool {
	slot := &s.root
	for *slot != nil {
		c := cmp.Compare(item, (*slot).value)
		if c == 0 {
			break
		}
		if c < 0 {
			slot = &(*slot).lesser
		} else {
			slot = &(*slot).greater
		}
	}

	n := *slot
	if n == nil {
		return false
	}

	switch {
	case n.lesser == nil:
		*slot = n.greater
	case n.greater == nil:
		*slot = n.lesser
	default:
		succSlot := &n.greater
		for (*succSlot).lesser != nil {
			succSlot = &(*succSlot).lesser
		}
		succ := *succSlot
		*succSlot = succ.greater
		succ.lesser, succ.greater = n.lesser, n.greater
		*slot = succ
	}

	n.lesser, n.greater = nil, nil
	s.allocator().FreeNode(n)
	s.size--

	return true
}

func (s *Set[T]) Len() int {
	return s.size
}

func (s *Set[T]) Min() (T, bool) {
	var zero T
	n := s.root
	if n == nil {
		return zero, false
	}
	for n.lesser != nil {
		n = n.lesser
	}
	return n.value, true
}

func (s *Set[T]) Max() (T, bool) {
	var zero T
	n := s.root
	if n == nil {
		return zero, false
	}
	for n.greater != nil {
		n = n.greater
	}
	return n.value, true
}

// Height is the number of nodes on the longest root-to-leaf path.
func (s *Set[T]) Height() int {
	type frame struct {
		n     *Node[T]
		depth int
	}

	height := 0
	var stack []frame
	if s.root != nil {
		stack = append(stack, frame{s.root, 1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		height = max(height, f.depth)
		if f.n.lesser != nil {
			stack = append(stack, frame{f.n.lesser, f.depth + 1})
		}
		if f.n.greater != nil {
			stack = append(stack, frame{f.n.greater, f.depth + 1})
		}
	}
	return height
}

// All yields the values in ascending order. The set must not be modified
// while the sequence is being consumed.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		var stack []*Node[T]
		n := s.root
		for n != nil || len(stack) > 0 {
			for n != nil {
				stack = append(stack, n)
				n = n.lesser
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n.value) {
				return
			}
			n = n.greater
		}
	}
}

// ForEach calls visit with every value in ascending order.
// visit must not modify the set.
func (s *Set[T]) ForEach(visit func(item T)) {
	for item := range s.All() {
		visit(item)
	}
}

func (s *Set[T]) ToSortedList() []T {
	result := make([]T, 0, s.size)
	for item := range s.All() {
		result = append(result, item)
	}
	return result
}

// Clear frees every node and leaves the set empty.
func (s *Set[T]) Clear() {
	if s.root == nil {
		return
	}

	alloc := s.allocator()
	stack := []*Node[T]{s.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.lesser != nil {
			stack = append(stack, n.lesser)
		}
		if n.greater != nil {
			stack = append(stack, n.greater)
		}
		alloc.FreeNode(n)
	}

	s.root = nil
	s.size = 0
}

// Destroy clears the set and gives its own slot back to the allocator.
// Insert on a destroyed set returns ErrDestroyed.
func (s *Set[T]) Destroy() {
	if s.destroyed {
		return
	}

	s.Clear()
	if s.reserved {
		if r, ok := s.alloc.(Reserver); ok {
			r.Release()
		}
		s.reserved = false
	}
	s.destroyed = true
}

func (s *Set[T]) String() string {
	return fmt.Sprint(s.ToSortedList())
}
