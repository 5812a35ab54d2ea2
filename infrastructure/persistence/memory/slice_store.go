package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// WriteKind tells how a slice reached the store.
type WriteKind string

const (
	WritePut   WriteKind = "put"
	WriteBatch WriteKind = "batch"
)

// Write is one recorded store write.
type Write struct {
	Kind  WriteKind
	ID    string
	Month string
	Batch int
}

// SliceStore is an in-memory catalog with the same (id, month) keying as
// the DynamoDB table. Slices are copied on the way in and out.
type SliceStore struct {
	mu      sync.RWMutex
	items   map[string]map[string]*entities.MonthSlice
	writes  []Write
	batches int
}

func NewSliceStore() *SliceStore {
	return &SliceStore{
		items: make(map[string]map[string]*entities.MonthSlice),
	}
}

func (s *SliceStore) GetLatest(ctx context.Context, id string) (*entities.MonthSlice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if slice, ok := s.items[id][vo.LatestMonth]; ok {
		return slice.Clone(), nil
	}
	return nil, nil
}

func (s *SliceStore) QueryByOriginMonth(ctx context.Context, id, originMonth string) ([]*entities.MonthSlice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	months := make([]string, 0, len(s.items[id]))
	for month := range s.items[id] {
		months = append(months, month)
	}
	// Same order as a descending range-key query.
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	var out []*entities.MonthSlice
	for _, month := range months {
		slice := s.items[id][month]
		if slice.OriginMonth == originMonth {
			out = append(out, slice.Clone())
		}
	}
	return out, nil
}

func (s *SliceStore) PutSlice(ctx context.Context, slice *entities.MonthSlice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(slice)
	s.writes = append(s.writes, Write{Kind: WritePut, ID: slice.ID, Month: slice.Month})
	return nil
}

func (s *SliceStore) BatchPut(ctx context.Context, slices []*entities.MonthSlice) error {
	if len(slices) > config.MaxStoreBatchSize {
		return fmt.Errorf("batch of %d exceeds limit of %d", len(slices), config.MaxStoreBatchSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches++
	for _, slice := range slices {
		s.put(slice)
		s.writes = append(s.writes, Write{Kind: WriteBatch, ID: slice.ID, Month: slice.Month, Batch: s.batches})
	}
	return nil
}

func (s *SliceStore) put(slice *entities.MonthSlice) {
	byMonth, ok := s.items[slice.ID]
	if !ok {
		byMonth = make(map[string]*entities.MonthSlice)
		s.items[slice.ID] = byMonth
	}
	byMonth[slice.Month] = slice.Clone()
}

// Seed stores slices without recording writes.
func (s *SliceStore) Seed(slices ...*entities.MonthSlice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slice := range slices {
		s.put(slice)
	}
}

// Get returns the slice stored under (id, month).
func (s *SliceStore) Get(id, month string) (*entities.MonthSlice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slice, ok := s.items[id][month]
	if !ok {
		return nil, false
	}
	return slice.Clone(), true
}

// Months returns the month keys stored for id, sorted.
func (s *SliceStore) Months(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months := make([]string, 0, len(s.items[id]))
	for month := range s.items[id] {
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

// All returns every stored slice ordered by id then month.
func (s *SliceStore) All() []*entities.MonthSlice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*entities.MonthSlice
	for _, id := range ids {
		months := make([]string, 0, len(s.items[id]))
		for month := range s.items[id] {
			months = append(months, month)
		}
		sort.Strings(months)
		for _, month := range months {
			out = append(out, s.items[id][month].Clone())
		}
	}
	return out
}

// Writes returns the recorded writes in order.
func (s *SliceStore) Writes() []Write {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Write, len(s.writes))
	copy(out, s.writes)
	return out
}

// ResetWrites clears the write log.
func (s *SliceStore) ResetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
	s.batches = 0
}
