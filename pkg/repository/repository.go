// Package repository holds the session-scoped record stores, one per resource
// kind, keyed by canonical identifier.
//
// Presence of a key, populated or not, is the deduplication signal: Reserve
// checks and inserts a placeholder under a single lock so concurrent callers
// racing on the same id cannot both win the right to fetch it.
package repository

import (
	"sort"
	"sync"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

type slot[V any] struct {
	record V
	ready  bool
}

// Repository maps integer ids to records of one kind.
type Repository[V any] struct {
	kind  models.Kind
	mu    sync.RWMutex
	slots map[int]*slot[V]
}

// New creates an empty repository for kind.
func New[V any](kind models.Kind) *Repository[V] {
	return &Repository[V]{
		kind:  kind,
		slots: make(map[int]*slot[V]),
	}
}

// Kind returns the resource kind stored in the repository.
func (r *Repository[V]) Kind() models.Kind {
	return r.kind
}

// Has reports whether id is present, including reserved placeholders.
func (r *Repository[V]) Has(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slots[id]
	return ok
}

// Get returns the populated record for id. Placeholders report false.
func (r *Repository[V]) Get(id int) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	if !ok || !s.ready {
		var zero V
		return zero, false
	}
	return s.record, true
}

// Reserve inserts a placeholder for id if it is absent. It returns true when
// this call performed the insertion and the caller now owns fetching id.
func (r *Repository[V]) Reserve(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; ok {
		return false
	}
	r.slots[id] = &slot[V]{}
	return true
}

// Set stores the populated record for id, replacing any placeholder.
func (r *Repository[V]) Set(id int, record V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = &slot[V]{record: record, ready: true}
}

// Release drops an unpopulated placeholder so a later fetch can claim id
// again. Populated records are left alone.
func (r *Repository[V]) Release(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[id]; ok && !s.ready {
		delete(r.slots, id)
	}
}

// IDs returns the ids of populated records in ascending order.
func (r *Repository[V]) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.slots))
	for id, s := range r.slots {
		if s.ready {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// Len returns the number of populated records.
func (r *Repository[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.slots {
		if s.ready {
			n++
		}
	}
	return n
}

// Store bundles the per-kind repositories of one session.
type Store struct {
	Films     *Repository[models.Film]
	Starships *Repository[models.Starship]
}

// NewStore creates empty film and starship repositories.
func NewStore() *Store {
	return &Store{
		Films:     New[models.Film](models.KindFilm),
		Starships: New[models.Starship](models.KindStarship),
	}
}
