package repository

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

func TestRepository_ReserveOnce(t *testing.T) {
	repo := New[models.Starship](models.KindStarship)

	if !repo.Reserve(9) {
		t.Fatal("first Reserve(9) = false, want true")
	}
	if repo.Reserve(9) {
		t.Error("second Reserve(9) = true, want false")
	}
	if !repo.Has(9) {
		t.Error("Has(9) = false after reserve, want true")
	}
	if _, ok := repo.Get(9); ok {
		t.Error("Get(9) on placeholder should report not populated")
	}
}

func TestRepository_SetAndGet(t *testing.T) {
	repo := New[models.Starship](models.KindStarship)
	repo.Reserve(9)
	repo.Set(9, models.NewStarship(9, "Death Star", "DS-1", "Imperial", "342,953", "843,342", []int{1}))

	got, ok := repo.Get(9)
	if !ok {
		t.Fatal("Get(9) not populated after Set")
	}
	if got.Name != "Death Star" {
		t.Errorf("Name = %q, want %q", got.Name, "Death Star")
	}
	if repo.Reserve(9) {
		t.Error("Reserve on populated id should return false")
	}
}

func TestRepository_Release(t *testing.T) {
	repo := New[models.Film](models.KindFilm)

	repo.Reserve(1)
	repo.Release(1)
	if repo.Has(1) {
		t.Error("Has(1) = true after releasing placeholder")
	}
	if !repo.Reserve(1) {
		t.Error("Reserve(1) should succeed after release")
	}

	repo.Set(2, models.NewFilm("The Empire Strikes Back", 5, "1980-05-17", nil))
	repo.Release(2)
	if _, ok := repo.Get(2); !ok {
		t.Error("Release must not drop populated records")
	}
}

func TestRepository_IDsAndLen(t *testing.T) {
	repo := New[models.Film](models.KindFilm)
	repo.Set(6, models.Film{EpisodeID: 6})
	repo.Set(1, models.Film{EpisodeID: 1})
	repo.Set(4, models.Film{EpisodeID: 4})
	repo.Reserve(3)

	ids := repo.IDs()
	want := []int{1, 4, 6}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
	if repo.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (placeholders excluded)", repo.Len())
	}
}

func TestRepository_ConcurrentReserve(t *testing.T) {
	repo := New[models.Starship](models.KindStarship)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.Reserve(12) {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("concurrent Reserve winners = %d, want 1", got)
	}
}

func TestNewStore(t *testing.T) {
	store := NewStore()
	if store.Films.Kind() != models.KindFilm {
		t.Errorf("Films kind = %q, want %q", store.Films.Kind(), models.KindFilm)
	}
	if store.Starships.Kind() != models.KindStarship {
		t.Errorf("Starships kind = %q, want %q", store.Starships.Kind(), models.KindStarship)
	}
}
