package catalog

import (
	"slices"
	"strings"
)

// Group is one category section of a station view.
type Group struct {
	Category string
	Stations []Station
}

// GroupByCategory buckets stations by category, keeping catalog order inside
// each bucket. Pinned categories come first in the order given; the rest are
// sorted alphabetically.
func GroupByCategory(stations []Station, pinned []string) []Group {
	buckets := make(map[string][]Station)
	var names []string
	for _, s := range stations {
		cat := s.DisplayCategory()
		if _, ok := buckets[cat]; !ok {
			names = append(names, cat)
		}
		buckets[cat] = append(buckets[cat], s)
	}

	rank := func(name string) int {
		for i, p := range pinned {
			if strings.EqualFold(p, name) {
				return i
			}
		}
		return len(pinned)
	}
	slices.SortStableFunc(names, func(a, b string) int {
		ra, rb := rank(a), rank(b)
		if ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, Group{Category: name, Stations: buckets[name]})
	}
	return groups
}
