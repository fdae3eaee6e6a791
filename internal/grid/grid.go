// Package grid maps a station view, the favorite set and the playback state
// onto a render model. It does no I/O.
package grid

import (
	"github.com/five82/tuner/internal/catalog"
	"github.com/five82/tuner/internal/favorites"
	"github.com/five82/tuner/internal/playback"
)

// Card is one station tile.
type Card struct {
	Station  catalog.Station
	Favorite bool
	Current  bool
	Playing  bool
	Pending  bool
}

// Section is a category heading and its cards.
type Section struct {
	Category string
	Cards    []Card
}

// Model is the full grid. Cards lists every card in display order, which is
// section order, so a cursor can walk the grid as one list.
type Model struct {
	Sections []Section
	Cards    []Card
}

// Build renders view grouped by category with pinned categories first.
func Build(view []catalog.Station, favs favorites.Set, st playback.State, pinned []string) Model {
	groups := catalog.GroupByCategory(view, pinned)
	m := Model{
		Sections: make([]Section, 0, len(groups)),
		Cards:    make([]Card, 0, len(view)),
	}
	for _, g := range groups {
		sec := Section{Category: g.Category, Cards: make([]Card, 0, len(g.Stations))}
		for _, s := range g.Stations {
			current := st.Loaded && st.Station.ID == s.ID
			card := Card{
				Station:  s,
				Favorite: favs.Has(s.ID),
				Current:  current,
				Playing:  current && st.Playing,
				Pending:  current && st.Pending,
			}
			sec.Cards = append(sec.Cards, card)
			m.Cards = append(m.Cards, card)
		}
		m.Sections = append(m.Sections, sec)
	}
	return m
}

// Empty reports whether the view had no stations.
func (m Model) Empty() bool { return len(m.Cards) == 0 }

// Position returns the flat index of the card for station id, or -1.
func (m Model) Position(id int) int {
	for i, c := range m.Cards {
		if c.Station.ID == id {
			return i
		}
	}
	return -1
}

// SectionOf returns the section index and the offset inside it for a flat
// card position.
func (m Model) SectionOf(pos int) (section, offset int) {
	for i, sec := range m.Sections {
		if pos < len(sec.Cards) {
			return i, pos
		}
		pos -= len(sec.Cards)
	}
	return -1, -1
}
