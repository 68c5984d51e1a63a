package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCategories(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Electronics, Tablets", []string{"Electronics", "Tablets"}},
		{"Home/Kitchen , Appliances", []string{"Home", "Kitchen", "Appliances"}},
		{" , / ", []string{}},
		{"A,A/ A", []string{"A"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCategories(tt.raw))
		})
	}
}

func TestNormalizeCategories(t *testing.T) {
	got := NormalizeCategories([]string{"Tablets, Electronics", "Electronics/Kindle", "", "tablets"})
	assert.Equal(t, []string{"Electronics", "Kindle", "Tablets", "tablets"}, got)
	assert.Equal(t, []string{}, NormalizeCategories(nil))
}

func TestAggregateCategoryCounts_FanOut(t *testing.T) {
	got := AggregateCategoryCounts([]RawCategoryCount{
		{Category: "A, B", Count: 3},
		{Category: "B/C", Count: 2},
	})

	assert.Equal(t, []CategoryCount{
		{Category: "B", ProductCount: 5},
		{Category: "A", ProductCount: 3},
		{Category: "C", ProductCount: 2},
	}, got)
}

func TestAggregateCategoryCounts_EqualCountsByLabel(t *testing.T) {
	got := AggregateCategoryCounts([]RawCategoryCount{
		{Category: "Zoo", Count: 1},
		{Category: "Apps", Count: 1},
		{Category: "", Count: 7},
	})

	assert.Equal(t, []CategoryCount{
		{Category: "Apps", ProductCount: 1},
		{Category: "Zoo", ProductCount: 1},
	}, got)
}
