package cache

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written by the manager.
const KeyPrefix = "swapi"

// Key identifies a cached response.
type Key struct {
	// Path is the request path, e.g. "/api/films/1/".
	Path string

	// Query holds the request query parameters.
	Query url.Values
}

// KeyForRequest builds the key for req.
func KeyForRequest(req *http.Request) Key {
	return Key{
		Path:  req.URL.Path,
		Query: req.URL.Query(),
	}
}

// String renders a deterministic Redis key.
//
// Example:
//
//	swapi:api/films/1:format=json
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(KeyPrefix)

	if p := strings.Trim(k.Path, "/"); p != "" {
		b.WriteByte(':')
		b.WriteString(p)
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		values := append([]string(nil), k.Query[name]...)
		sort.Strings(values)
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}

	return b.String()
}
