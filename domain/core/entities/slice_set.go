package entities

// SliceKey is the in-run identity of a slice.
func SliceKey(id, originMonth string) string {
	return id + originMonth
}

// SliceSet is an insertion-ordered collection of slices keyed by
// id + originMonth. Replacing a slice keeps its original position.
type SliceSet struct {
	order []string
	items map[string]*MonthSlice
}

func NewSliceSet() *SliceSet {
	return &SliceSet{items: make(map[string]*MonthSlice)}
}

func (s *SliceSet) Get(id, originMonth string) (*MonthSlice, bool) {
	slice, ok := s.items[SliceKey(id, originMonth)]
	return slice, ok
}

func (s *SliceSet) Put(slice *MonthSlice) {
	key := slice.Key()
	if _, ok := s.items[key]; !ok {
		s.order = append(s.order, key)
	}
	s.items[key] = slice
}

func (s *SliceSet) Len() int {
	return len(s.order)
}

// Slices returns the slices in insertion order.
func (s *SliceSet) Slices() []*MonthSlice {
	out := make([]*MonthSlice, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}
