// Package session owns the state one user works with: the populated record
// store, the selected film and the page over its starships.
package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SobhanAbedi/swfleet/pkg/fetch"
	"github.com/SobhanAbedi/swfleet/pkg/ids"
	"github.com/SobhanAbedi/swfleet/pkg/logging"
	"github.com/SobhanAbedi/swfleet/pkg/models"
	"github.com/SobhanAbedi/swfleet/pkg/pagination"
	"github.com/SobhanAbedi/swfleet/pkg/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds session configuration.
type Config struct {
	// PageSize is the number of starships per page.
	PageSize int

	// FilmIDs are the film request ids Load fetches.
	FilmIDs []int
}

// DefaultConfig returns pages of 10 over the six films.
func DefaultConfig() Config {
	return Config{
		PageSize: pagination.DefaultPageSize,
		FilmIDs:  append([]int(nil), fetch.DefaultFilmIDs...),
	}
}

// Page is one page of the selected film's starships.
type Page struct {
	Episode     int               `json:"episode"`
	PageIndex   int               `json:"page_index"`
	PageCount   int               `json:"page_count"`
	Total       int               `json:"total"`
	Items       []models.Starship `json:"items"`
	Missing     []int             `json:"missing,omitempty"`
	HasPrevious bool              `json:"has_previous"`
	HasNext     bool              `json:"has_next"`
}

// Session is safe for concurrent use.
type Session struct {
	id      string
	filmIDs []int
	orch    *fetch.Orchestrator
	store   *repository.Store
	logger  zerolog.Logger

	mu       sync.Mutex
	pager    *pagination.Pager
	selected int // episode id, 0 when nothing is selected
}

// New creates a session with empty repositories, page 0 and no film selected.
func New(source fetch.Source, cfg Config) (*Session, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	pager, err := pagination.New(cfg.PageSize)
	if err != nil {
		return nil, err
	}

	filmIDs := cfg.FilmIDs
	if len(filmIDs) == 0 {
		filmIDs = fetch.DefaultFilmIDs
	}
	for _, id := range filmIDs {
		if _, err := ids.ValidateFilmID(id); err != nil {
			return nil, fmt.Errorf("film ids: %w", err)
		}
	}

	id := uuid.NewString()
	logger := logging.WithSession(logging.NewLogger("session"), id)
	store := repository.NewStore()

	return &Session{
		id:      id,
		filmIDs: append([]int(nil), filmIDs...),
		orch:    fetch.New(source, store, logging.WithSession(logging.NewLogger("fetch"), id)),
		store:   store,
		logger:  logger,
		pager:   pager,
	}, nil
}

// ID returns the session id used in logs.
func (s *Session) ID() string {
	return s.id
}

// Orchestrator returns the orchestrator populating the session's store.
func (s *Session) Orchestrator() *fetch.Orchestrator {
	return s.orch
}

// Load fetches the configured films and their starships. Calling it again
// after a failure re-fetches only what is missing.
func (s *Session) Load(ctx context.Context) error {
	if _, err := s.orch.FetchAll(ctx, s.filmIDs); err != nil {
		return fmt.Errorf("load films: %w", err)
	}
	return nil
}

// GetFilms returns the stored films ordered by episode id.
func (s *Session) GetFilms() []models.Film {
	episodes := s.store.Films.IDs()
	films := make([]models.Film, 0, len(episodes))
	for _, ep := range episodes {
		if f, ok := s.store.Films.Get(ep); ok {
			films = append(films, f)
		}
	}
	return films
}

// SelectFilm makes the film with the given episode id the one being paged
// and returns to page 0. It fails with models.ErrNotFound if the film is not
// stored yet.
func (s *Session) SelectFilm(episode any) error {
	ep, err := ids.ValidateFilmID(episode)
	if err != nil {
		return err
	}

	film, ok := s.store.Films.Get(ep)
	if !ok {
		return fmt.Errorf("episode %d: %w", ep, models.ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = ep
	s.pager.Reset()
	s.pager.SetTotal(len(film.StarshipIDs))

	s.logger.Debug().Int("episode_id", ep).Int("starships", len(film.StarshipIDs)).Msg("Film selected")
	return nil
}

// Selected returns the selected film.
func (s *Session) Selected() (models.Film, bool) {
	s.mu.Lock()
	ep := s.selected
	s.mu.Unlock()
	if ep == 0 {
		return models.Film{}, false
	}
	return s.store.Films.Get(ep)
}

// GetPage returns the current page of the selected film's starships. With no
// film selected the page is empty. Ids on the page whose record is not stored,
// for instance after a partially failed Load, are listed in Missing instead of
// Items; Total and HasNext still count them.
func (s *Session) GetPage() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked()
}

// Next advances one page if there is a next page and returns the page shown.
func (s *Session) Next() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pager.Advance() {
		s.logger.Debug().Int("page", s.pager.PageIndex()).Msg("Advanced page")
	}
	return s.pageLocked()
}

// Previous steps back one page unless already on page 0.
func (s *Session) Previous() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pager.Retreat() {
		s.logger.Debug().Int("page", s.pager.PageIndex()).Msg("Retreated page")
	}
	return s.pageLocked()
}

func (s *Session) pageLocked() Page {
	page := Page{Items: []models.Starship{}}
	if s.selected == 0 {
		return page
	}
	film, ok := s.store.Films.Get(s.selected)
	if !ok {
		return page
	}

	s.pager.SetTotal(len(film.StarshipIDs))
	for _, sid := range s.pager.CurrentSlice(film.StarshipIDs) {
		if ship, ok := s.store.Starships.Get(sid); ok {
			page.Items = append(page.Items, ship)
		} else {
			page.Missing = append(page.Missing, sid)
		}
	}

	page.Episode = s.selected
	page.PageIndex = s.pager.PageIndex()
	page.PageCount = s.pager.PageCount()
	page.Total = s.pager.Total()
	page.HasPrevious = s.pager.HasPrevious()
	page.HasNext = s.pager.HasNext()
	return page
}

// GetStarship returns a stored starship.
func (s *Session) GetStarship(id int) (models.Starship, bool) {
	return s.store.Starships.Get(id)
}

// StarshipFilms returns the stored films a starship appears in, ordered by
// episode id. Film references are request ids; they are translated through
// the episodes the orchestrator observed while fetching.
func (s *Session) StarshipFilms(id int) ([]models.Film, error) {
	ship, ok := s.store.Starships.Get(id)
	if !ok {
		return nil, fmt.Errorf("starship %d: %w", id, models.ErrNotFound)
	}

	films := make([]models.Film, 0, len(ship.FilmIDs))
	for _, filmID := range ship.FilmIDs {
		ep, ok := s.orch.EpisodeFor(filmID)
		if !ok {
			continue
		}
		if f, ok := s.store.Films.Get(ep); ok {
			films = append(films, f)
		}
	}
	sort.Slice(films, func(i, j int) bool { return films[i].EpisodeID < films[j].EpisodeID })
	return films, nil
}
