package domain

import (
	"cmp"
	"slices"
	"strings"
)

// CategoryCount is a category label and the number of products in it.
type CategoryCount struct {
	Category     string `json:"category"`
	ProductCount int    `json:"product_count"`
}

// RawCategoryCount is a stored category string and how many products carry
// exactly that string.
type RawCategoryCount struct {
	Category string
	Count    int
}

// SplitCategories breaks a raw category string on commas and slashes. The
// labels are trimmed, empty ones dropped and duplicates removed, keeping the
// first occurrence.
func SplitCategories(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, "/", ","), ",")

	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || slices.Contains(labels, p) {
			continue
		}
		labels = append(labels, p)
	}
	return labels
}

// NormalizeCategories flattens raw category strings into a sorted set of
// labels. Comparison is case-sensitive.
func NormalizeCategories(raw []string) []string {
	seen := make(map[string]struct{})
	labels := []string{}
	for _, r := range raw {
		for _, label := range SplitCategories(r) {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	slices.Sort(labels)
	return labels
}

// AggregateCategoryCounts sums product counts per label. A product listed
// under several labels counts fully toward each of them. The result is
// ordered by count, highest first, then by label.
func AggregateCategoryCounts(raw []RawCategoryCount) []CategoryCount {
	totals := make(map[string]int)
	for _, rc := range raw {
		for _, label := range SplitCategories(rc.Category) {
			totals[label] += rc.Count
		}
	}

	counts := make([]CategoryCount, 0, len(totals))
	for label, n := range totals {
		counts = append(counts, CategoryCount{Category: label, ProductCount: n})
	}
	slices.SortFunc(counts, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.ProductCount, a.ProductCount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return counts
}
