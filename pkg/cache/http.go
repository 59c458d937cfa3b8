package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotCacheable is returned by FromResponse for responses marked no-store.
var ErrNotCacheable = errors.New("response is not cacheable")

// FromResponse reads resp into an Entry and restores resp.Body for the caller.
func FromResponse(resp *http.Response, defaultTTL time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	expires, cacheable := freshUntil(resp.Header, time.Now(), defaultTTL)
	if !cacheable {
		return nil, ErrNotCacheable
	}

	entry := &Entry{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		ETag:        resp.Header.Get("ETag"),
		Expires:     expires,
		StoredAt:    time.Now(),
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			entry.LastModified = t
		}
	}

	return entry, nil
}

// FreshUntil returns the expiry implied by the headers of a 304 response.
func FreshUntil(headers http.Header, defaultTTL time.Duration) time.Time {
	expires, _ := freshUntil(headers, time.Now(), defaultTTL)
	return expires
}

// freshUntil resolves Cache-Control max-age, then Expires, then defaultTTL.
// The boolean is false when the response must not be stored.
func freshUntil(headers http.Header, now time.Time, defaultTTL time.Duration) (time.Time, bool) {
	for _, directive := range strings.Split(headers.Get("Cache-Control"), ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		switch {
		case directive == "no-store":
			return time.Time{}, false
		case directive == "no-cache":
			return now, true
		case strings.HasPrefix(directive, "max-age="):
			if secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && secs >= 0 {
				return now.Add(time.Duration(secs) * time.Second), true
			}
		}
	}

	if exp := headers.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil {
			if t.Before(now) {
				return now, true
			}
			return t, true
		}
	}

	return now.Add(defaultTTL), true
}

// AddConditionalHeaders sets If-None-Match, or If-Modified-Since when the
// entry has no ETag. It reports whether a header was added.
func AddConditionalHeaders(req *http.Request, entry *Entry) bool {
	if req == nil || entry == nil {
		return false
	}
	switch {
	case entry.ETag != "":
		req.Header.Set("If-None-Match", entry.ETag)
	case !entry.LastModified.IsZero():
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	default:
		return false
	}
	ConditionalRequests.Inc()
	return true
}

// ToResponse rebuilds an HTTP response for req from a cached entry.
func ToResponse(entry *Entry, req *http.Request) *http.Response {
	header := make(http.Header)
	if entry.ContentType != "" {
		header.Set("Content-Type", entry.ContentType)
	}
	if entry.ETag != "" {
		header.Set("ETag", entry.ETag)
	}
	header.Set("X-Cache", "HIT")

	status := entry.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}
