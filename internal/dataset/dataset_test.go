package dataset

import (
	"testing"
	"time"

	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObservations() []domain.Observation {
	return []domain.Observation{
		{Location: "Testland", Year: 2020, Sex: domain.SexBoth, AgeRangeLabel: "0-17", Category: domain.Minor, Value: 10},
		{Location: "Aland", Year: 1990, Sex: domain.SexMale, AgeRangeLabel: "0-17", Category: domain.Minor, Value: 3},
		{Location: "Testland", Year: 2025, Sex: domain.SexFemale, AgeRangeLabel: "18-44", Category: domain.YoungAdult, Value: 7},
		{Location: "", Year: 2000, Sex: domain.SexBoth, AgeRangeLabel: "Total", Category: domain.Unclassified, Value: 1},
	}
}

func TestNew(t *testing.T) {
	loaded := time.Date(2025, 6, 4, 13, 49, 16, 0, time.UTC)
	ds, err := New(sampleObservations(), clockwork.NewFakeClockAt(loaded))
	require.NoError(t, err)

	minYear, maxYear := ds.YearBounds()
	assert.Equal(t, 1990, minYear)
	assert.Equal(t, 2025, maxYear)
	assert.Equal(t, []string{"Aland", "Testland"}, ds.Countries())
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, loaded, ds.LoadedAt())
	assert.Len(t, ds.Version(), 16)
}

func TestNew_Empty(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestCountries_ReturnsCopy(t *testing.T) {
	ds, err := New(sampleObservations(), nil)
	require.NoError(t, err)

	c := ds.Countries()
	c[0] = "mutated"
	assert.Equal(t, "Aland", ds.Countries()[0])
}

func TestVersion(t *testing.T) {
	a, err := New(sampleObservations(), nil)
	require.NoError(t, err)
	b, err := New(sampleObservations(), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version())

	changed := sampleObservations()
	changed[0].Value = 11
	c, err := New(changed, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestCheckReadiness(t *testing.T) {
	ds, err := New(sampleObservations(), nil)
	require.NoError(t, err)
	require.NoError(t, ds.CheckReadiness(t.Context()))

	var missing *Dataset
	require.ErrorIs(t, missing.CheckReadiness(t.Context()), ErrEmpty)
}
