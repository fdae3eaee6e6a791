// Package catalog holds the ordered, read-only list of radio stations.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStation reports a station record that cannot be played.
var ErrInvalidStation = errors.New("invalid station")

// Catalog is an immutable ordered sequence of stations.
type Catalog struct {
	stations []Station
	index    map[int]int
}

// New validates stations and builds a catalog preserving their order.
func New(stations []Station) (*Catalog, error) {
	c := &Catalog{
		stations: make([]Station, len(stations)),
		index:    make(map[int]int, len(stations)),
	}
	for i, s := range stations {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("%w: station %d has no name", ErrInvalidStation, s.ID)
		}
		if strings.TrimSpace(s.URL) == "" {
			return nil, fmt.Errorf("%w: station %d (%s) has no url", ErrInvalidStation, s.ID, s.Name)
		}
		if prev, dup := c.index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d (%s, %s)", ErrInvalidStation, s.ID, stations[prev].Name, s.Name)
		}
		c.stations[i] = s
		c.index[s.ID] = i
	}
	return c, nil
}

// Len returns the number of stations.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stations)
}

// At returns the station at position i. It panics when i is out of range.
func (c *Catalog) At(i int) Station {
	return c.stations[i]
}

// All returns a copy of every station in catalog order.
func (c *Catalog) All() []Station {
	if c == nil {
		return nil
	}
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// IndexOf resolves a station id to its position in the full catalog.
func (c *Catalog) IndexOf(id int) (int, bool) {
	if c == nil {
		return 0, false
	}
	i, ok := c.index[id]
	return i, ok
}

// ByID returns the station with the given id.
func (c *Catalog) ByID(id int) (Station, bool) {
	i, ok := c.IndexOf(id)
	if !ok {
		return Station{}, false
	}
	return c.stations[i], true
}

// Search returns the stations whose name or genre contains query,
// ignoring case. An empty query returns the whole catalog.
func (c *Catalog) Search(query string) []Station {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	var out []Station
	for _, s := range c.stations {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Genre), q) {
			out = append(out, s)
		}
	}
	return out
}
