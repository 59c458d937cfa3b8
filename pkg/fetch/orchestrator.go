// Package fetch turns film identifiers into a populated record graph.
//
// A film fetch discovers its starship references in locator order, reserves
// each one in the starship repository and fetches only the ones it won. It
// completes after every starship it spawned has settled, and fails with the
// first nested failure. FetchAll fans FetchFilm out over a set of films.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SobhanAbedi/swfleet/pkg/client"
	"github.com/SobhanAbedi/swfleet/pkg/ids"
	"github.com/SobhanAbedi/swfleet/pkg/models"
	"github.com/SobhanAbedi/swfleet/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swfleet_fetches_total",
		Help: "Resource fetches by kind and outcome",
	}, []string{"kind", "outcome"})

	dedupHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swfleet_dedup_hits_total",
		Help: "References satisfied by an existing reservation instead of a new fetch",
	}, []string{"kind"})

	aggregateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swfleet_aggregate_duration_seconds",
		Help:    "Wall time of FetchAll",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// DefaultFilmIDs is the request order for the six films.
var DefaultFilmIDs = []int{4, 5, 6, 1, 2, 3}

// Source retrieves decoded resources by id. *client.Client implements it.
type Source interface {
	GetFilm(ctx context.Context, id int) (client.FilmDocument, error)
	GetStarship(ctx context.Context, id int) (client.StarshipDocument, error)
}

// Orchestrator fetches films and starships into a repository.Store.
type Orchestrator struct {
	source Source
	store  *repository.Store
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[int]chan struct{} // starship id -> closed when its owner settles
	aliases map[int]int           // film request id -> episode id
}

// New creates an orchestrator writing into store. A nil store gets a fresh one.
func New(source Source, store *repository.Store, logger zerolog.Logger) *Orchestrator {
	if store == nil {
		store = repository.NewStore()
	}
	return &Orchestrator{
		source:  source,
		store:   store,
		logger:  logger,
		pending: make(map[int]chan struct{}),
		aliases: make(map[int]int),
	}
}

// Store returns the repositories the orchestrator populates.
func (o *Orchestrator) Store() *repository.Store {
	return o.store
}

// EpisodeFor returns the episode id a film request id resolved to, once that
// film has been fetched.
func (o *Orchestrator) EpisodeFor(filmID int) (int, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ep, ok := o.aliases[filmID]
	return ep, ok
}

// FetchFilm fetches one film by request id and every starship it references
// that no other fetch has claimed. The film is stored under its episode id.
func (o *Orchestrator) FetchFilm(ctx context.Context, input any) (models.Film, error) {
	id, err := ids.ValidateFilmID(input)
	if err != nil {
		return models.Film{}, err
	}

	logger := o.logger.With().Int("film_id", id).Logger()

	doc, err := o.source.GetFilm(ctx, id)
	if err != nil {
		fetchesTotal.WithLabelValues(string(models.KindFilm), "error").Inc()
		logger.Error().Err(err).Msg("Film fetch failed")
		return models.Film{}, fmt.Errorf("fetch film %d: %w", id, err)
	}

	var g errgroup.Group
	starshipIDs := make([]int, 0, len(doc.Starships))
	var discoverErr error

	for _, locator := range doc.Starships {
		sid, err := ids.ResolveID(locator)
		if err != nil {
			discoverErr = fmt.Errorf("film %d starship reference: %w", id, err)
			break
		}

		starshipIDs = append(starshipIDs, sid)

		owned, done := o.claimStarship(sid)
		if !owned {
			dedupHitsTotal.WithLabelValues(string(models.KindStarship)).Inc()
			logger.Debug().Int("starship_id", sid).Msg("Starship already claimed")
			continue
		}

		logger.Debug().Int("starship_id", sid).Msg("Starship reserved")
		g.Go(func() error {
			_, err := o.loadStarship(ctx, sid, done)
			return err
		})
	}

	// Nested fetches already started settle before the film does.
	waitErr := g.Wait()
	if discoverErr == nil {
		discoverErr = waitErr
	}
	if discoverErr != nil {
		fetchesTotal.WithLabelValues(string(models.KindFilm), "error").Inc()
		logger.Error().Err(discoverErr).Msg("Film fetch failed")
		return models.Film{}, discoverErr
	}

	film := models.NewFilm(doc.Title, doc.EpisodeID, doc.ReleaseDate, starshipIDs)
	o.store.Films.Set(film.EpisodeID, film)

	o.mu.Lock()
	o.aliases[id] = film.EpisodeID
	o.mu.Unlock()

	fetchesTotal.WithLabelValues(string(models.KindFilm), "ok").Inc()
	logger.Debug().
		Int("episode_id", film.EpisodeID).
		Int("starships", len(starshipIDs)).
		Msg("Film stored")

	return film, nil
}

// FetchStarship returns the starship with the given id, fetching it unless it
// is already stored. A fetch already in flight elsewhere is waited on rather
// than repeated.
func (o *Orchestrator) FetchStarship(ctx context.Context, input any) (models.Starship, error) {
	id, err := ids.ValidateStarshipID(input)
	if err != nil {
		return models.Starship{}, err
	}

	if ship, ok := o.store.Starships.Get(id); ok {
		return ship, nil
	}

	owned, done := o.claimStarship(id)
	if owned {
		return o.loadStarship(ctx, id, done)
	}

	dedupHitsTotal.WithLabelValues(string(models.KindStarship)).Inc()
	if done != nil {
		o.logger.Debug().Int("starship_id", id).Msg("Waiting for starship fetch in flight")
		select {
		case <-done:
		case <-ctx.Done():
			return models.Starship{}, fmt.Errorf("wait for starship %d: %w", id, ctx.Err())
		}
	}

	if ship, ok := o.store.Starships.Get(id); ok {
		return ship, nil
	}
	return models.Starship{}, fmt.Errorf("starship %d: concurrent fetch failed: %w", id, models.ErrNotFound)
}

// claimStarship reserves id. The owner gets true and the channel it must pass
// to settleStarship; others get the channel the current owner closes when it
// settles, or nil if nothing is in flight.
func (o *Orchestrator) claimStarship(id int) (bool, chan struct{}) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.store.Starships.Reserve(id) {
		done := make(chan struct{})
		o.pending[id] = done
		return true, done
	}
	return false, o.pending[id]
}

// settleStarship closes the channel handed out by the claim that owned id.
// A failed owner releases its reservation in the same critical section, so a
// later claim never observes the release without the settle.
func (o *Orchestrator) settleStarship(id int, done chan struct{}, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if failed {
		o.store.Starships.Release(id)
	}
	if o.pending[id] == done {
		delete(o.pending, id)
	}
	close(done)
}

// loadStarship fetches a starship the caller has reserved with done. On
// failure the reservation is released so a later fetch can claim it again.
func (o *Orchestrator) loadStarship(ctx context.Context, id int, done chan struct{}) (models.Starship, error) {
	logger := o.logger.With().Int("starship_id", id).Logger()

	fail := func(err error) (models.Starship, error) {
		o.settleStarship(id, done, true)
		fetchesTotal.WithLabelValues(string(models.KindStarship), "error").Inc()
		logger.Error().Err(err).Msg("Starship fetch failed")
		return models.Starship{}, err
	}

	doc, err := o.source.GetStarship(ctx, id)
	if err != nil {
		return fail(fmt.Errorf("fetch starship %d: %w", id, err))
	}

	filmIDs, err := ids.ResolveAll(doc.Films)
	if err != nil {
		return fail(fmt.Errorf("starship %d film reference: %w", id, err))
	}

	ship := models.NewStarship(id, doc.Name, doc.Model, doc.Manufacturer, doc.Crew, doc.Passengers, filmIDs)
	o.store.Starships.Set(id, ship)
	o.settleStarship(id, done, false)

	fetchesTotal.WithLabelValues(string(models.KindStarship), "ok").Inc()
	logger.Debug().Str("name", ship.Name).Msg("Starship stored")

	return ship, nil
}

// FetchAll fetches every film in filmIDs concurrently and returns them keyed
// by episode id. Films stored by an earlier call are reused. If any fetch
// fails, FetchAll waits for the others to settle and returns the first
// error; records that completed stay in the store.
func (o *Orchestrator) FetchAll(ctx context.Context, filmIDs []int) (map[int]models.Film, error) {
	start := time.Now()
	defer func() {
		aggregateDuration.Observe(time.Since(start).Seconds())
	}()

	o.logger.Info().Ints("film_ids", filmIDs).Msg("Fetching films")

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results = make(map[int]models.Film, len(filmIDs))
	)

	for _, id := range filmIDs {
		if ep, ok := o.EpisodeFor(id); ok {
			if film, ok := o.store.Films.Get(ep); ok {
				mu.Lock()
				results[ep] = film
				mu.Unlock()
				o.logger.Debug().Int("film_id", id).Int("episode_id", ep).Msg("Film already stored")
				continue
			}
		}

		g.Go(func() error {
			film, err := o.FetchFilm(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[film.EpisodeID] = film
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error().
			Err(err).
			Int("films_stored", o.store.Films.Len()).
			Int("starships_stored", o.store.Starships.Len()).
			Msg("Fetching films failed")
		return nil, err
	}

	o.logger.Info().
		Int("films", len(results)).
		Int("starships", o.store.Starships.Len()).
		Dur("duration", time.Since(start)).
		Msg("Fetched films")

	return results, nil
}
