// Package favorites persists the set of favorite station ids.
package favorites

import (
	"fmt"
	"slices"
	"sync"

	"github.com/five82/tuner/internal/prefs"
)

// Set is an unordered set of station ids.
type Set map[int]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...int) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is a favorite.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Store is simple get/set key-value persistence for the favorite set.
type Store interface {
	Get() (Set, error)
	Set(Set) error
}

// Toggle flips id's membership and persists the result. It returns the new
// set and whether id is now a favorite.
func Toggle(store Store, id int) (Set, bool, error) {
	current, err := store.Get()
	if err != nil {
		return nil, false, fmt.Errorf("load favorites: %w", err)
	}
	next := current.Clone()
	added := !next.Has(id)
	if added {
		next[id] = struct{}{}
	} else {
		delete(next, id)
	}
	if err := store.Set(next); err != nil {
		return current, !added, fmt.Errorf("save favorites: %w", err)
	}
	return next, added, nil
}

// PrefsStore keeps favorites in the prefs TOML file next to the other
// user preferences.
type PrefsStore struct {
	Path string
}

// Get implements Store.
func (s PrefsStore) Get() (Set, error) {
	p, err := prefs.Load(s.Path)
	if err != nil {
		return nil, err
	}
	return NewSet(p.Favorites...), nil
}

// Set implements Store.
func (s PrefsStore) Set(favs Set) error {
	_, err := prefs.Update(s.Path, func(p *prefs.Prefs) {
		p.Favorites = favs.IDs()
	})
	return err
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu  sync.Mutex
	set Set
}

// Get implements Store.
func (m *MemoryStore) Get() (Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone(), nil
}

// Set implements Store.
func (m *MemoryStore) Set(s Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = s.Clone()
	return nil
}
