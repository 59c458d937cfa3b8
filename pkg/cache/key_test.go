package cache

import (
	"net/http"
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "film path",
			key:  Key{Path: "/api/films/1/"},
			want: "swapi:api/films/1",
		},
		{
			name: "empty path",
			key:  Key{},
			want: "swapi",
		},
		{
			name: "query params sorted",
			key: Key{
				Path: "/api/starships/9/",
				Query: url.Values{
					"format": []string{"json"},
					"a":      []string{"2", "1"},
				},
			},
			want: "swapi:api/starships/9:a=1,2:format=json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyForRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://swapi.dev/api/films/2/?format=json", nil)
	if err != nil {
		t.Fatal(err)
	}

	key := KeyForRequest(req)
	if got, want := key.String(), "swapi:api/films/2:format=json"; got != want {
		t.Errorf("KeyForRequest().String() = %q, want %q", got, want)
	}
}
