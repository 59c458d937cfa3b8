package cache

import "time"

// Entry is a cached response body with its validators.
type Entry struct {
	Body         []byte    `json:"body"`
	ContentType  string    `json:"content_type"`
	StatusCode   int       `json:"status_code"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Expires      time.Time `json:"expires"`
	StoredAt     time.Time `json:"stored_at"`
}

// Fresh reports whether the entry can be served without contacting the API.
func (e *Entry) Fresh() bool {
	return time.Now().Before(e.Expires)
}

// TTL returns the remaining freshness lifetime, or 0 when stale.
func (e *Entry) TTL() time.Duration {
	if ttl := time.Until(e.Expires); ttl > 0 {
		return ttl
	}
	return 0
}

// Revalidatable reports whether a conditional request can be made for the entry.
func (e *Entry) Revalidatable() bool {
	return e.ETag != "" || !e.LastModified.IsZero()
}
