package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	s := New(1950, 2025)

	assert.Equal(t, Selection{Country: AllCountries, Year: 2025, RangeStart: 1950, RangeEnd: 2025}, s.Selection())
	minYear, maxYear := s.Bounds()
	assert.Equal(t, 1950, minYear)
	assert.Equal(t, 2025, maxYear)
}

func TestNew_SwapsReversedBounds(t *testing.T) {
	s := New(2025, 1950)
	minYear, maxYear := s.Bounds()
	assert.Equal(t, 1950, minYear)
	assert.Equal(t, 2025, maxYear)
}

func TestSetCountry(t *testing.T) {
	s := New(1950, 2025)

	s.SetCountry("Testland")
	assert.Equal(t, "Testland", s.Selection().Country)

	s.SetCountry("Nowhere at all")
	assert.Equal(t, "Nowhere at all", s.Selection().Country)

	s.SetCountry(AllCountries)
	assert.True(t, s.Selection().IsAllCountries())
}

func TestSetYear(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		expected int
	}{
		{"inside", 2000, 2000},
		{"lower bound", 1950, 1950},
		{"upper bound", 2025, 2025},
		{"below", 1800, 1950},
		{"above", 2300, 2025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1950, 2025)
			s.SetYear(tt.year)
			assert.Equal(t, tt.expected, s.Selection().Year)
		})
	}
}

func TestSetRange(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		end       int
		which     Endpoint
		year      int
		wantStart int
		wantEnd   int
	}{
		{"start inside", 1990, 2000, RangeStart, 1995, 1995, 2000},
		{"end inside", 1990, 2000, RangeEnd, 1995, 1990, 1995},
		{"start past end pulls end up", 1990, 2000, RangeStart, 2025, 2025, 2025},
		{"end before start pulls start down", 1990, 2000, RangeEnd, 1960, 1960, 1960},
		{"start clamped", 1990, 2000, RangeStart, 1000, 1950, 2000},
		{"end clamped", 1990, 2000, RangeEnd, 3000, 1990, 2025},
		{"start clamped then repaired", 1990, 2000, RangeStart, 3000, 2025, 2025},
		{"start equal to end", 1990, 2000, RangeStart, 2000, 2000, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1950, 2025)
			s.SetRange(RangeStart, tt.start)
			s.SetRange(RangeEnd, tt.end)
			require.Equal(t, tt.start, s.Selection().RangeStart)
			require.Equal(t, tt.end, s.Selection().RangeEnd)

			s.SetRange(tt.which, tt.year)

			sel := s.Selection()
			assert.Equal(t, tt.wantStart, sel.RangeStart)
			assert.Equal(t, tt.wantEnd, sel.RangeEnd)
		})
	}
}

func TestSetRange_InvariantHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := New(1950, 2100)

	for i := 0; i < 10000; i++ {
		which := RangeStart
		if rng.Intn(2) == 1 {
			which = RangeEnd
		}
		s.SetRange(which, rng.Intn(600)+1700)

		sel := s.Selection()
		require.LessOrEqual(t, sel.RangeStart, sel.RangeEnd, "step %d", i)
		require.GreaterOrEqual(t, sel.RangeStart, 1950)
		require.LessOrEqual(t, sel.RangeEnd, 2100)
	}
}

func TestSetRange_DoesNotTouchOtherSelections(t *testing.T) {
	s := New(1950, 2025)
	s.SetCountry("Testland")
	s.SetYear(2000)

	s.SetRange(RangeStart, 2010)

	sel := s.Selection()
	assert.Equal(t, "Testland", sel.Country)
	assert.Equal(t, 2000, sel.Year)
}

func TestParseEndpoint(t *testing.T) {
	e, err := ParseEndpoint("start")
	require.NoError(t, err)
	assert.Equal(t, RangeStart, e)

	e, err = ParseEndpoint("end")
	require.NoError(t, err)
	assert.Equal(t, RangeEnd, e)
	assert.Equal(t, "end", e.String())

	_, err = ParseEndpoint("middle")
	require.ErrorIs(t, err, ErrUnknownEndpoint)
}

func TestSelection_MatchesCountry(t *testing.T) {
	all := Selection{Country: AllCountries}
	assert.True(t, all.MatchesCountry("Testland"))
	assert.True(t, all.MatchesCountry(""))

	one := Selection{Country: "Testland"}
	assert.True(t, one.MatchesCountry("Testland"))
	assert.False(t, one.MatchesCountry("Aland"))
}
