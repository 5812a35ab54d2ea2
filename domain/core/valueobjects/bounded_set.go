package valueobjects

// BoundedSet is an insertion-ordered set that stops accepting new members
// once it holds limit items. Members are never evicted or reordered.
// A limit of zero or less means unbounded.
type BoundedSet[T comparable] struct {
	limit int
	items []T
	index map[T]struct{}
}

// NewBoundedSet creates a set with the given capacity seeded with items.
func NewBoundedSet[T comparable](limit int, items ...T) *BoundedSet[T] {
	s := &BoundedSet[T]{
		limit: limit,
		index: make(map[T]struct{}, len(items)),
	}
	s.AddAll(items...)
	return s
}

// Add inserts item if it is new and the set is below capacity.
// It reports whether the set changed.
func (s *BoundedSet[T]) Add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	if s.Full() {
		return false
	}
	s.items = append(s.items, item)
	s.index[item] = struct{}{}
	return true
}

// AddAll adds items in order under the set's capacity.
func (s *BoundedSet[T]) AddAll(items ...T) {
	for _, item := range items {
		if s.Full() {
			return
		}
		s.Add(item)
	}
}

// Union adds every member of other, in other's order.
func (s *BoundedSet[T]) Union(other *BoundedSet[T]) {
	if other == nil {
		return
	}
	s.AddAll(other.items...)
}

func (s *BoundedSet[T]) Contains(item T) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[item]
	return ok
}

func (s *BoundedSet[T]) Full() bool {
	return s.limit > 0 && len(s.items) >= s.limit
}

func (s *BoundedSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *BoundedSet[T]) Limit() int {
	return s.limit
}

// Values returns a copy of the members in insertion order, nil when empty.
func (s *BoundedSet[T]) Values() []T {
	if s == nil || len(s.items) == 0 {
		return nil
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Clone returns an independent copy with the same capacity.
func (s *BoundedSet[T]) Clone() *BoundedSet[T] {
	if s == nil {
		return nil
	}
	return NewBoundedSet(s.limit, s.items...)
}
