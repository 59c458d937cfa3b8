package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

// FilmDocument is the decoded body of GET {base}/films/{id}/.
type FilmDocument struct {
	Title       string
	EpisodeID   int
	ReleaseDate string
	Starships   []string
}

// StarshipDocument is the decoded body of GET {base}/starships/{id}/.
type StarshipDocument struct {
	Name         string
	Model        string
	Manufacturer string
	Crew         string
	Passengers   string
	Films        []string
}

type rawFilm struct {
	Title       *string   `json:"title"`
	EpisodeID   *int      `json:"episode_id"`
	ReleaseDate *string   `json:"release_date"`
	Starships   *[]string `json:"starships"`
}

type rawStarship struct {
	Name         *string   `json:"name"`
	Model        *string   `json:"model"`
	Manufacturer *string   `json:"manufacturer"`
	Crew         *string   `json:"crew"`
	Passengers   *string   `json:"passengers"`
	Films        *[]string `json:"films"`
}

// Get issues a GET for path resolved against the base address.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	ref, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &models.ParseError{Field: "path", Value: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON fetches path and decodes the body into v. Decoding failures are
// reported as *models.ParseError.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Class: ErrorClassNetwork, Path: path, Message: "read body", Err: err}
	}

	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &models.ParseError{Field: typeErr.Field, Value: path, Err: err}
		}
		return &models.ParseError{Field: "body", Value: path, Err: err}
	}
	return nil
}

// GetFilm fetches and decodes one film resource by request id.
func (c *Client) GetFilm(ctx context.Context, id int) (FilmDocument, error) {
	path := resourcePath(models.KindFilm, id)

	var raw rawFilm
	if err := c.GetJSON(ctx, path, &raw); err != nil {
		return FilmDocument{}, err
	}

	switch {
	case raw.Title == nil:
		return FilmDocument{}, missingField("title", path)
	case raw.EpisodeID == nil:
		return FilmDocument{}, missingField("episode_id", path)
	case raw.ReleaseDate == nil:
		return FilmDocument{}, missingField("release_date", path)
	case raw.Starships == nil:
		return FilmDocument{}, missingField("starships", path)
	}

	return FilmDocument{
		Title:       *raw.Title,
		EpisodeID:   *raw.EpisodeID,
		ReleaseDate: *raw.ReleaseDate,
		Starships:   *raw.Starships,
	}, nil
}

// GetStarship fetches and decodes one starship resource by id.
func (c *Client) GetStarship(ctx context.Context, id int) (StarshipDocument, error) {
	path := resourcePath(models.KindStarship, id)

	var raw rawStarship
	if err := c.GetJSON(ctx, path, &raw); err != nil {
		return StarshipDocument{}, err
	}

	switch {
	case raw.Name == nil:
		return StarshipDocument{}, missingField("name", path)
	case raw.Model == nil:
		return StarshipDocument{}, missingField("model", path)
	case raw.Manufacturer == nil:
		return StarshipDocument{}, missingField("manufacturer", path)
	case raw.Crew == nil:
		return StarshipDocument{}, missingField("crew", path)
	case raw.Passengers == nil:
		return StarshipDocument{}, missingField("passengers", path)
	case raw.Films == nil:
		return StarshipDocument{}, missingField("films", path)
	}

	return StarshipDocument{
		Name:         *raw.Name,
		Model:        *raw.Model,
		Manufacturer: *raw.Manufacturer,
		Crew:         *raw.Crew,
		Passengers:   *raw.Passengers,
		Films:        *raw.Films,
	}, nil
}

func resourcePath(kind models.Kind, id int) string {
	return fmt.Sprintf("%s/%d/", kind, id)
}

func missingField(field, path string) error {
	return &models.ParseError{Field: field, Value: path, Err: errors.New("missing required field")}
}
