// Package ids validates resource identifiers and resolves cross-reference
// locators into repository keys.
package ids

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/SobhanAbedi/swfleet/pkg/models"
)

// Identifier windows. Text and numeric inputs are checked against the same bounds.
const (
	MinFilmID     = 1
	MaxFilmID     = 6
	MinStarshipID = 1
	MaxStarshipID = 99
)

var (
	filmIDPattern     = regexp.MustCompile(`^[1-6]$`)
	starshipIDPattern = regexp.MustCompile(`^[1-9][0-9]?$`)
	digitsPattern     = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateFilmID accepts a single ASCII digit 1-6 as text, or an integral
// number in [1,6].
func ValidateFilmID(input any) (int, error) {
	return validate(input, "film", filmIDPattern, MinFilmID, MaxFilmID)
}

// ValidateStarshipID accepts one or two ASCII digits without a leading zero
// as text, or an integral number in [1,99].
func ValidateStarshipID(input any) (int, error) {
	return validate(input, "starship", starshipIDPattern, MinStarshipID, MaxStarshipID)
}

func validate(input any, kind string, pattern *regexp.Regexp, lo, hi int) (int, error) {
	switch v := input.(type) {
	case string:
		return validateText(v, kind, pattern, lo, hi)
	case json.Number:
		return validateText(v.String(), kind, pattern, lo, hi)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s id %v is not an integer", models.ErrInvalidIDType, kind, v)
		}
		if v < float64(lo) || v > float64(hi) {
			return 0, rangeError(kind, fmt.Sprint(v), lo, hi)
		}
		return int(v), nil
	}

	n, ok := asInt64(input)
	if !ok {
		return 0, fmt.Errorf("%w: %s id must be text or a number, got %T", models.ErrInvalidIDType, kind, input)
	}
	if n < int64(lo) || n > int64(hi) {
		return 0, rangeError(kind, strconv.FormatInt(n, 10), lo, hi)
	}
	return int(n), nil
}

func validateText(s, kind string, pattern *regexp.Regexp, lo, hi int) (int, error) {
	if pattern.MatchString(s) {
		n, _ := strconv.Atoi(s)
		return n, nil
	}
	if digitsPattern.MatchString(s) {
		return 0, rangeError(kind, strconv.Quote(s), lo, hi)
	}
	return 0, fmt.Errorf("%w: %s id %q is not a decimal number", models.ErrInvalidIDType, kind, s)
}

func rangeError(kind, value string, lo, hi int) error {
	return fmt.Errorf("%w: %s id %s outside [%d,%d]", models.ErrInvalidIDRange, kind, value, lo, hi)
}

func asInt64(input any) (int64, bool) {
	switch v := input.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(v), true
	default:
		return 0, false
	}
}
