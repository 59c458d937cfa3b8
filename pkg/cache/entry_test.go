package cache

import (
	"testing"
	"time"
)

func TestEntry_Fresh(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{name: "future expiry", expires: time.Now().Add(time.Hour), want: true},
		{name: "past expiry", expires: time.Now().Add(-time.Second), want: false},
		{name: "zero expiry", expires: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.Fresh(); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	fresh := &Entry{Expires: time.Now().Add(time.Hour)}
	if ttl := fresh.TTL(); ttl < 59*time.Minute || ttl > time.Hour {
		t.Errorf("TTL() = %v, want about 1h", ttl)
	}

	stale := &Entry{Expires: time.Now().Add(-time.Hour)}
	if ttl := stale.TTL(); ttl != 0 {
		t.Errorf("TTL() on stale entry = %v, want 0", ttl)
	}
}

func TestEntry_Revalidatable(t *testing.T) {
	if (&Entry{}).Revalidatable() {
		t.Error("entry without validators should not be revalidatable")
	}
	if !(&Entry{ETag: `W/"abc"`}).Revalidatable() {
		t.Error("entry with ETag should be revalidatable")
	}
	if !(&Entry{LastModified: time.Now()}).Revalidatable() {
		t.Error("entry with Last-Modified should be revalidatable")
	}
}
