// Package filter holds the dashboard's three interdependent selections: the
// country, the single year, and the comparison year range.
package filter

import (
	"errors"
	"fmt"
)

// AllCountries is the country sentinel that disables location filtering.
const AllCountries = "All"

// ErrUnknownEndpoint is returned by ParseEndpoint for anything other than
// "start" or "end".
var ErrUnknownEndpoint = errors.New("unknown range endpoint")

// Endpoint names the end of the comparison range an edit applies to.
type Endpoint int

const (
	RangeStart Endpoint = iota
	RangeEnd
)

func (e Endpoint) String() string {
	if e == RangeEnd {
		return "end"
	}
	return "start"
}

// ParseEndpoint maps "start" and "end" to an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	switch s {
	case "start":
		return RangeStart, nil
	case "end":
		return RangeEnd, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEndpoint, s)
	}
}

// Selection is an immutable snapshot of the filter state handed to the
// aggregator. RangeStart <= RangeEnd always holds for snapshots taken from a
// State.
type Selection struct {
	Country    string `json:"country"`
	Year       int    `json:"year"`
	RangeStart int    `json:"range_start"`
	RangeEnd   int    `json:"range_end"`
}

// IsAllCountries reports whether the selection spans every location.
func (s Selection) IsAllCountries() bool { return s.Country == AllCountries }

// MatchesCountry reports whether a location passes the country filter.
func (s Selection) MatchesCountry(location string) bool {
	return s.Country == AllCountries || s.Country == location
}

// State is the mutable filter state. Its fields are only reachable through
// the mutators, which keep every year inside [min, max] and the range ordered.
// A State is not safe for concurrent use; its owner serializes access.
type State struct {
	country    string
	year       int
	rangeStart int
	rangeEnd   int
	minYear    int
	maxYear    int
}

// New returns a State bounded by the dataset's year span. Defaults are every
// country, the latest year, and the full span as the comparison range.
func New(minYear, maxYear int) *State {
	if minYear > maxYear {
		minYear, maxYear = maxYear, minYear
	}
	return &State{
		country:    AllCountries,
		year:       maxYear,
		rangeStart: minYear,
		rangeEnd:   maxYear,
		minYear:    minYear,
		maxYear:    maxYear,
	}
}

// SetCountry accepts any value, including AllCountries. A name that matches no
// observation simply yields empty views.
func (s *State) SetCountry(name string) {
	s.country = name
}

// SetYear sets the single year, clamped into the bounds.
func (s *State) SetYear(y int) {
	s.year = s.clamp(y)
}

// SetRange moves one endpoint of the comparison range. The value is clamped
// into the bounds; if the edit would invert the range, the endpoint that was
// not edited is pulled to the new value.
func (s *State) SetRange(which Endpoint, y int) {
	y = s.clamp(y)
	switch which {
	case RangeEnd:
		s.rangeEnd = y
		if s.rangeStart > s.rangeEnd {
			s.rangeStart = s.rangeEnd
		}
	default:
		s.rangeStart = y
		if s.rangeStart > s.rangeEnd {
			s.rangeEnd = s.rangeStart
		}
	}
}

// Selection returns a snapshot of the current state.
func (s *State) Selection() Selection {
	return Selection{
		Country:    s.country,
		Year:       s.year,
		RangeStart: s.rangeStart,
		RangeEnd:   s.rangeEnd,
	}
}

// Bounds returns the inclusive year bounds.
func (s *State) Bounds() (minYear, maxYear int) {
	return s.minYear, s.maxYear
}

func (s *State) clamp(y int) int {
	return min(max(y, s.minYear), s.maxYear)
}
