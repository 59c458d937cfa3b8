// Package testutil provides testing utilities for the swfleet packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FilmFixture is the data served for one /films/{id}/ resource.
type FilmFixture struct {
	Title       string
	EpisodeID   int
	ReleaseDate string
	StarshipIDs []int
}

// StarshipFixture is the data served for one /starships/{id}/ resource.
// FilmIDs are film request ids.
type StarshipFixture struct {
	Name         string
	Model        string
	Manufacturer string
	Crew         string
	Passengers   string
	FilmIDs      []int
}

// MockResponse overrides the response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSWAPI is a configurable mock of the Star Wars API for testing.
// Resources are served under /api/ so the base address carries a path.
type MockSWAPI struct {
	server *httptest.Server
	mu     sync.RWMutex

	films     map[int]FilmFixture
	starships map[int]StarshipFixture
	overrides map[string]MockResponse
	delays    map[string]time.Duration

	quotaRemaining int
	quotaReset     int

	// Tracking
	requests         map[string]int
	conditionalCount int
}

// NewMockSWAPI creates a mock loaded with DefaultFilms and the starships they
// reference.
func NewMockSWAPI() *MockSWAPI {
	mock := &MockSWAPI{
		films:          make(map[int]FilmFixture),
		starships:      make(map[int]StarshipFixture),
		overrides:      make(map[string]MockResponse),
		delays:         make(map[string]time.Duration),
		requests:       make(map[string]int),
		quotaRemaining: -1,
	}
	for id, f := range DefaultFilms() {
		mock.films[id] = f
	}
	for id, s := range StarshipsFor(DefaultFilms()) {
		mock.starships[id] = s
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.serve))
	return mock
}

// URL returns the base address to configure clients with.
func (m *MockSWAPI) URL() string {
	return m.server.URL + "/api/"
}

// Close shuts down the mock server.
func (m *MockSWAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSWAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.conditionalCount = 0
}

// SetFilm replaces the fixture for a film request id.
func (m *MockSWAPI) SetFilm(id int, f FilmFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.films[id] = f
}

// SetStarship replaces the fixture for a starship id.
func (m *MockSWAPI) SetStarship(id int, s StarshipFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starships[id] = s
}

// SetResponse overrides the response for path, e.g. "/starships/9/".
func (m *MockSWAPI) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[path] = resp
}

// ClearResponse removes an override set with SetResponse or FailPath.
func (m *MockSWAPI) ClearResponse(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, path)
}

// FailPath makes path answer with status and a JSON error body.
func (m *MockSWAPI) FailPath(path string, status int) {
	m.SetResponse(path, MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"detail": %q}`, http.StatusText(status)),
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
}

// SetDelay delays every response for path by d.
func (m *MockSWAPI) SetDelay(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[path] = d
}

// SetQuota makes every response carry X-RateLimit headers. A negative
// remaining disables them.
func (m *MockSWAPI) SetQuota(remaining, resetSeconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotaRemaining = remaining
	m.quotaReset = resetSeconds
}

// RequestCount returns the number of requests made for path.
func (m *MockSWAPI) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests made to the server.
func (m *MockSWAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.requests {
		n += c
	}
	return n
}

// ConditionalCount returns the number of conditional requests.
func (m *MockSWAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// Locator returns the absolute URL the mock uses to reference a resource.
func (m *MockSWAPI) Locator(kind string, id int) string {
	return fmt.Sprintf("%s%s/%d/", m.URL(), kind, id)
}

func (m *MockSWAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	m.mu.Lock()
	m.requests[path]++
	if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
		m.conditionalCount++
	}
	delay := m.delays[path]
	override, hasOverride := m.overrides[path]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	m.writeQuota(w)

	if hasOverride {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		for key, value := range override.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			w.Write([]byte(override.Body))
		}
		return
	}

	kind, id, ok := splitResourcePath(path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, found := m.document(kind, id)
	if !found {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found"}`))
		return
	}

	etag := fmt.Sprintf(`"%s-%d"`, kind, id)
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (m *MockSWAPI) writeQuota(w http.ResponseWriter) {
	m.mu.RLock()
	remaining, reset := m.quotaRemaining, m.quotaReset
	m.mu.RUnlock()
	if remaining < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", "10000")
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(reset))
}

func (m *MockSWAPI) document(kind string, id int) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var doc any
	switch kind {
	case "films":
		f, ok := m.films[id]
		if !ok {
			return nil, false
		}
		doc = map[string]any{
			"title":        f.Title,
			"episode_id":   f.EpisodeID,
			"release_date": f.ReleaseDate,
			"starships":    m.locators("starships", f.StarshipIDs),
		}
	case "starships":
		s, ok := m.starships[id]
		if !ok {
			return nil, false
		}
		doc = map[string]any{
			"name":         s.Name,
			"model":        s.Model,
			"manufacturer": s.Manufacturer,
			"crew":         s.Crew,
			"passengers":   s.Passengers,
			"films":        m.locators("films", s.FilmIDs),
		}
	default:
		return nil, false
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, false
	}
	return body, true
}

func (m *MockSWAPI) locators(kind string, ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.Locator(kind, id))
	}
	return out
}

// splitResourcePath parses "/films/4/" into ("films", 4).
func splitResourcePath(path string) (string, int, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", 0, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, false
	}
	return parts[0], id, true
}

// DefaultFilms returns the six films keyed by request id.
func DefaultFilms() map[int]FilmFixture {
	return map[int]FilmFixture{
		1: {Title: "A New Hope", EpisodeID: 4, ReleaseDate: "1977-05-25", StarshipIDs: []int{2, 3, 5, 9, 10, 11, 12, 13}},
		2: {Title: "The Empire Strikes Back", EpisodeID: 5, ReleaseDate: "1980-05-17", StarshipIDs: []int{3, 10, 11, 12, 15, 17, 21, 22, 23}},
		3: {Title: "Return of the Jedi", EpisodeID: 6, ReleaseDate: "1983-05-25", StarshipIDs: []int{2, 3, 10, 11, 12, 15, 17, 22, 23, 27, 28, 29, 31, 39}},
		4: {Title: "The Phantom Menace", EpisodeID: 1, ReleaseDate: "1999-05-19", StarshipIDs: []int{31, 32, 39, 40, 41}},
		5: {Title: "Attack of the Clones", EpisodeID: 2, ReleaseDate: "2002-05-16", StarshipIDs: []int{21, 32, 39, 43, 47, 48, 49, 52, 58}},
		6: {Title: "Revenge of the Sith", EpisodeID: 3, ReleaseDate: "2005-05-19", StarshipIDs: []int{2, 32, 48, 59, 61, 63, 64, 65, 66, 68, 74, 75}},
	}
}

var knownStarships = map[int]StarshipFixture{
	2:  {Name: "CR90 corvette", Model: "CR90 corvette", Manufacturer: "Corellian Engineering Corporation", Crew: "30-165", Passengers: "600"},
	3:  {Name: "Star Destroyer", Model: "Imperial I-class Star Destroyer", Manufacturer: "Kuat Drive Yards", Crew: "47,060", Passengers: "n/a"},
	9:  {Name: "Death Star", Model: "DS-1 Orbital Battle Station", Manufacturer: "Imperial Department of Military Research, Sienar Fleet Systems", Crew: "342,953", Passengers: "843,342"},
	10: {Name: "Millennium Falcon", Model: "YT-1300 light freighter", Manufacturer: "Corellian Engineering Corporation", Crew: "4", Passengers: "6"},
	12: {Name: "X-wing", Model: "T-65 X-wing", Manufacturer: "Incom Corporation", Crew: "1", Passengers: "0"},
	13: {Name: "TIE Advanced x1", Model: "Twin Ion Engine Advanced x1", Manufacturer: "Sienar Fleet Systems", Crew: "1", Passengers: "0"},
}

// StarshipsFor builds a starship fixture for every id films reference, with
// FilmIDs back-linking to the referencing film request ids in ascending order.
func StarshipsFor(films map[int]FilmFixture) map[int]StarshipFixture {
	backLinks := make(map[int][]int)
	for filmID, f := range films {
		for _, sid := range f.StarshipIDs {
			backLinks[sid] = append(backLinks[sid], filmID)
		}
	}

	out := make(map[int]StarshipFixture, len(backLinks))
	for sid, filmIDs := range backLinks {
		sort.Ints(filmIDs)
		s, ok := knownStarships[sid]
		if !ok {
			s = StarshipFixture{
				Name:         fmt.Sprintf("Starship %d", sid),
				Model:        fmt.Sprintf("Model %d", sid),
				Manufacturer: "Kuat Drive Yards",
				Crew:         "1",
				Passengers:   "0",
			}
		}
		s.FilmIDs = filmIDs
		out[sid] = s
	}
	return out
}
