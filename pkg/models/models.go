// Package models defines the records assembled from the Star Wars API and the
// error taxonomy shared by every swfleet package.
package models

import "fmt"

// Kind identifies a resource collection on the remote API.
type Kind string

const (
	// KindFilm is the films collection.
	KindFilm Kind = "films"

	// KindStarship is the starships collection.
	KindStarship Kind = "starships"
)

// Film is a fully populated film record. StarshipIDs holds identifiers in the
// order the film response listed them; the starships themselves live in the
// starship repository.
type Film struct {
	Title       string `json:"title"`
	EpisodeID   int    `json:"episode_id"`
	ReleaseDate string `json:"release_date"`
	StarshipIDs []int  `json:"starship_ids"`
}

// NewFilm returns a Film that owns its own copy of starshipIDs.
func NewFilm(title string, episodeID int, releaseDate string, starshipIDs []int) Film {
	return Film{
		Title:       title,
		EpisodeID:   episodeID,
		ReleaseDate: releaseDate,
		StarshipIDs: cloneIDs(starshipIDs),
	}
}

// String renders the film the way the listing shows it.
func (f Film) String() string {
	return fmt.Sprintf("Episode %d: %s (%s)", f.EpisodeID, f.Title, f.ReleaseDate)
}

// Starship is a fully populated starship record. FilmIDs are the resource ids
// of the films' locators, not episode numbers.
type Starship struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Crew         string `json:"crew"`
	Passengers   string `json:"passengers"`
	FilmIDs      []int  `json:"film_ids"`
}

// NewStarship returns a Starship that owns its own copy of filmIDs.
func NewStarship(id int, name, model, manufacturer, crew, passengers string, filmIDs []int) Starship {
	return Starship{
		ID:           id,
		Name:         name,
		Model:        model,
		Manufacturer: manufacturer,
		Crew:         crew,
		Passengers:   passengers,
		FilmIDs:      cloneIDs(filmIDs),
	}
}

func (s Starship) String() string {
	return fmt.Sprintf("%s by %s, crewed by %s can transport %s passengers",
		s.Model, s.Manufacturer, s.Crew, s.Passengers)
}

func cloneIDs(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}
