package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntityIDs(t *testing.T) {
	assert.Equal(t, "p#a#checkout", EventEntityID("p", "a", "checkout"))
	assert.Equal(t, "p#a#device#mobile_brand#string",
		PropertyEntityID("p", "a", "device", "mobile_brand", "string"))
}

func TestVersionedPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "appends missing version", prefix: "EVENT#p#a", want: "EVENT#p#a#v3"},
		{name: "keeps existing version", prefix: "EVENT#p#a#v3", want: "EVENT#p#a#v3"},
		{name: "other version is not recognised", prefix: "EVENT#p#a#v2", want: "EVENT#p#a#v2#v3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionedPrefix(tt.prefix, "v3"))
		})
	}

	assert.Equal(t, "EVENT#p#a", VersionedPrefix("EVENT#p#a", ""))
}

func TestCatalogPrefixAndDomain(t *testing.T) {
	prefix := CatalogPrefix(DomainUserAttribute, "p", "a", "v3")
	assert.Equal(t, "USER_ATTRIBUTE#p#a#v3", prefix)

	d, ok := DomainOfPrefix(prefix)
	assert.True(t, ok)
	assert.Equal(t, DomainUserAttribute, d)

	_, ok = DomainOfPrefix("NODE#x")
	assert.False(t, ok)
}

func TestMonthKeys(t *testing.T) {
	assert.Equal(t, "#202403", MonthOf(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)))
	assert.True(t, IsMonthKey("#202401"))
	assert.False(t, IsMonthKey(LatestMonth))
	assert.False(t, IsMonthKey("202401"))
	assert.True(t, "#202312" < "#202401")
}
