package models

import (
	"errors"
	"strconv"
	"testing"
)

func TestNewFilm_CopiesStarshipIDs(t *testing.T) {
	ids := []int{2, 3, 5}
	film := NewFilm("A New Hope", 4, "1977-05-25", ids)

	ids[0] = 99
	if film.StarshipIDs[0] != 2 {
		t.Errorf("StarshipIDs[0] = %d, want 2 (factory must copy)", film.StarshipIDs[0])
	}
}

func TestFilm_String(t *testing.T) {
	film := NewFilm("A New Hope", 4, "1977-05-25", nil)

	want := "Episode 4: A New Hope (1977-05-25)"
	if got := film.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStarship_String(t *testing.T) {
	ship := NewStarship(9, "Death Star", "DS-1 Orbital Battle Station",
		"Imperial Department of Military Research", "342,953", "843,342", []int{1})

	want := "DS-1 Orbital Battle Station by Imperial Department of Military Research, crewed by 342,953 can transport 843,342 passengers"
	if got := ship.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	cause := &strconv.NumError{Func: "Atoi", Num: "abc", Err: strconv.ErrSyntax}
	err := &ParseError{Field: "locator", Value: "https://swapi.dev/api/starships/abc/", Err: cause}

	if !errors.Is(err, ErrParse) {
		t.Error("ParseError should match ErrParse")
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Error("ParseError should unwrap to its cause")
	}
	if errors.Is(err, ErrNetwork) {
		t.Error("ParseError should not match ErrNetwork")
	}

	bare := &ParseError{Field: "title", Value: ""}
	if got, want := bare.Error(), `parse title ""`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
