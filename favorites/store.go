// Package favorites holds the user's favorite formulary ids and writes the
// full set to durable storage after every change.
package favorites

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
	"github.com/giygas/formulary-browser/metrics"
)

var _ interfaces.FavoritesStore = (*Store)(nil)

// Store is an insertion-ordered set of formulary ids. Ids that no longer
// exist in the formulary are kept; they simply never match.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	ids     []string
	set     map[string]struct{}
}

// NewStore loads the stored set. Unreadable or corrupt data starts an
// empty set; it is logged, never returned.
func NewStore(storage Storage) *Store {
	s := &Store{storage: storage, set: map[string]struct{}{}}
	s.Load()
	return s
}

// Load replaces the in-memory set with the stored one and returns its ids.
func (s *Store) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids, s.set = nil, map[string]struct{}{}

	data, err := s.storage.Read()
	if err != nil {
		logging.Warn("Failed to read favorites, starting empty", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	ids, err := decode(data)
	if err != nil {
		logging.Warn("Discarding corrupt favorites", "error", err)
		return nil
	}

	for _, id := range ids {
		s.addLocked(id)
	}
	metrics.FavoritesTotal.Set(float64(len(s.ids)))
	logging.Debug("Favorites loaded", "count", len(s.ids))

	return slices.Clone(s.ids)
}

// decode accepts a JSON array of ids; numeric ids become their decimal form.
func decode(data []byte) ([]string, error) {
	var raw []entities.ID
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id != "" {
			ids = append(ids, string(id))
		}
	}
	return ids, nil
}

func (s *Store) addLocked(id string) bool {
	if _, ok := s.set[id]; ok {
		return false
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Toggle flips membership of id, persists the full set and returns the new
// membership. Empty ids are ignored.
func (s *Store) Toggle(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member := s.addLocked(id)
	if !member {
		delete(s.set, id)
		s.ids = slices.DeleteFunc(s.ids, func(v string) bool { return v == id })
	}

	s.persistLocked()
	return member
}

// persistLocked writes the whole set. Failures are logged and counted; the
// in-memory set stays authoritative.
func (s *Store) persistLocked() {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}

	data, err := json.Marshal(ids)
	if err == nil {
		err = s.storage.Write(data)
	}

	metrics.RecordFavoritesWrite(err)
	metrics.FavoritesTotal.Set(float64(len(s.ids)))
	if err != nil {
		logging.Error("Failed to persist favorites", "error", err, "count", len(ids))
	}
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[id]
	return ok
}

// IDs returns the ids in insertion order, never nil.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.ids...)
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
