// Package store keeps the latest nowcast per fire in memory for the HTTP
// serving layer. Nowcasts are replaced wholesale on each pipeline cycle, so
// a mutex-guarded map is all the persistence the service needs.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// CatalogEntry is the list view of a stored nowcast.
type CatalogEntry struct {
	FireID      string                  `json:"fire_id"`
	NowcastID   string                  `json:"nowcast_id"`
	Status      string                  `json:"status"`
	GeneratedAt time.Time               `json:"generated_at"`
	Detections  int                     `json:"detections"`
	Summary     domain.NowcastSummary   `json:"summary"`
	Placement   domain.PlacementSummary `json:"placement"`
}

// Store holds the most recent nowcast per fire.
type Store struct {
	mu       sync.RWMutex
	nowcasts map[string]domain.Nowcast
}

// New creates an empty store.
func New() *Store {
	return &Store{nowcasts: make(map[string]domain.Nowcast)}
}

// Put replaces the stored nowcast for the given fire.
func (s *Store) Put(n domain.Nowcast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowcasts[n.FireID] = n
}

// Get returns the latest nowcast for a fire.
func (s *Store) Get(fireID string) (domain.Nowcast, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nowcasts[fireID]
	return n, ok
}

// List returns catalog entries for all stored nowcasts, sorted by fire ID.
func (s *Store) List() []CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]CatalogEntry, 0, len(s.nowcasts))
	for _, n := range s.nowcasts {
		entries = append(entries, CatalogEntry{
			FireID:      n.FireID,
			NowcastID:   n.ID,
			Status:      n.Status,
			GeneratedAt: n.GeneratedAt,
			Detections:  n.Detections,
			Summary:     n.Summary,
			Placement:   n.Placement,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FireID < entries[j].FireID })
	return entries
}

// Len returns the number of fires with a stored nowcast.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nowcasts)
}
