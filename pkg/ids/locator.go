package ids

import (
	"errors"
	"strconv"
	"strings"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

var errNoSegment = errors.New("no path segment")

// ResolveID returns the integer value of the last non-empty path segment of
// locator, e.g. "https://swapi.dev/api/starships/9/" resolves to 9. Query
// strings and fragments are ignored. The referenced record is never fetched.
func ResolveID(locator string) (int, error) {
	path := locator
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(path, "/")
	last := ""
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			last = segments[i]
			break
		}
	}
	if last == "" {
		return 0, &models.ParseError{Field: "locator", Value: locator, Err: errNoSegment}
	}

	id, err := strconv.Atoi(last)
	if err != nil {
		return 0, &models.ParseError{Field: "locator", Value: locator, Err: err}
	}
	return id, nil
}

// ResolveAll resolves every locator in order, failing on the first bad one.
func ResolveAll(locators []string) ([]int, error) {
	out := make([]int, 0, len(locators))
	for _, loc := range locators {
		id, err := ResolveID(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
