package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "metadata-scanner/domain/core/valueobjects"
)

func TestMonthSlice_DayNumbersSorted(t *testing.T) {
	s := NewMonthSlice(vo.DomainEvent, "p#a#e", "#202401", 1)
	s.SetDay(12, &DaySlot{HasData: true})
	s.SetDay(3, &DaySlot{HasData: true})
	s.SetDay(7, &DaySlot{HasData: true})

	assert.Equal(t, []int{3, 7, 12}, s.DayNumbers())
	assert.Equal(t, "#202401", s.Month)
	assert.False(t, s.IsLatest())
}

func TestMonthSlice_CloneIsDeep(t *testing.T) {
	count := int64(4)
	s := NewMonthSlice(vo.DomainEvent, "p#a#e", "#202401", 1)
	s.SetDay(1, &DaySlot{HasData: true, Count: &count, Platform: vo.NewBoundedSet(1000, "IOS")})
	s.Summary.Platform = vo.NewBoundedSet(1000, "IOS")
	s.Summary.LatestCount = &count

	c := s.Clone()
	c.Days[1].Platform.Add("ANDROID")
	*c.Days[1].Count = 9
	c.Summary.Platform.Add("WEB")
	*c.Summary.LatestCount = 9
	c.Month = vo.LatestMonth

	day, ok := s.Day(1)
	require.True(t, ok)
	assert.Equal(t, []string{"IOS"}, day.Platform.Values())
	assert.Equal(t, int64(4), *day.Count)
	assert.Equal(t, []string{"IOS"}, s.Summary.Platform.Values())
	assert.Equal(t, int64(4), *s.Summary.LatestCount)
	assert.Equal(t, "#202401", s.Month)
}

func TestSliceSet_ReplaceKeepsPosition(t *testing.T) {
	set := NewSliceSet()
	a := NewMonthSlice(vo.DomainEvent, "p#a#a", "#202401", 1)
	b := NewMonthSlice(vo.DomainEvent, "p#a#b", "#202401", 1)
	set.Put(a)
	set.Put(b)

	replacement := a.Clone()
	replacement.Month = vo.LatestMonth
	set.Put(replacement)

	slices := set.Slices()
	require.Len(t, slices, 2)
	assert.Same(t, replacement, slices[0])
	assert.Same(t, b, slices[1])

	got, ok := set.Get("p#a#a", "#202401")
	require.True(t, ok)
	assert.True(t, got.IsLatest())

	_, ok = set.Get("p#a#a", "#202402")
	assert.False(t, ok)
}
