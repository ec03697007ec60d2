// Package dataset holds the canonical observation set for the lifetime of the
// process. A Dataset is built once at startup and is read-only afterwards, so
// it can be shared by every session without locking.
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ErrEmpty is returned when no observation survives normalization. The
// dashboard refuses to start without data.
var ErrEmpty = errors.New("dataset has no observations")

// Dataset is the immutable, session-wide observation set together with the
// facts derived from it once at load time.
type Dataset struct {
	observations []domain.Observation
	countries    []string
	minYear      int
	maxYear      int
	version      string
	loadedAt     time.Time
}

// New builds a Dataset from canonical observations. The slice is owned by the
// Dataset afterwards and must not be modified by the caller.
func New(obs []domain.Observation, clock clockwork.Clock) (*Dataset, error) {
	if len(obs) == 0 {
		return nil, ErrEmpty
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	ds := &Dataset{
		observations: obs,
		minYear:      obs[0].Year,
		maxYear:      obs[0].Year,
		loadedAt:     clock.Now(),
	}

	seen := make(map[string]bool)
	for i := range obs {
		o := &obs[i]
		if o.Year < ds.minYear {
			ds.minYear = o.Year
		}
		if o.Year > ds.maxYear {
			ds.maxYear = o.Year
		}
		if o.Location != "" && !seen[o.Location] {
			seen[o.Location] = true
			ds.countries = append(ds.countries, o.Location)
		}
	}
	sort.Strings(ds.countries)
	ds.version = fingerprint(obs)

	return ds, nil
}

// Observations returns the shared canonical set. Callers must treat it as
// read-only; derived filtering always builds new slices.
func (d *Dataset) Observations() []domain.Observation { return d.observations }

// Countries returns the distinct non-empty locations, sorted.
func (d *Dataset) Countries() []string {
	out := make([]string, len(d.countries))
	copy(out, d.countries)
	return out
}

// YearBounds returns the earliest and latest year in the set.
func (d *Dataset) YearBounds() (minYear, maxYear int) { return d.minYear, d.maxYear }

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.observations) }

// Version is a content fingerprint of the observation set. Two datasets with
// the same rows in the same order share a version.
func (d *Dataset) Version() string { return d.version }

// LoadedAt is when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// CheckReadiness reports whether the dataset can serve dashboards. A nil
// Dataset is not ready.
func (d *Dataset) CheckReadiness(_ context.Context) error {
	if d == nil || len(d.observations) == 0 {
		return ErrEmpty
	}
	return nil
}

// fingerprint hashes every field of every observation. Only the first 8 bytes
// are kept; the value identifies a load, it is not a security boundary.
func fingerprint(obs []domain.Observation) string {
	h := sha256.New()
	for i := range obs {
		o := &obs[i]
		fmt.Fprintf(h, "%s|%d|%s|%s|%s|%v|%v|%d|%g\n",
			o.Location, o.Year, o.Sex, o.Age, o.AgeRangeLabel,
			deref(o.AgeStart), deref(o.AgeEnd), o.Category, o.Value)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

func deref(v *float64) any {
	if v == nil {
		return "nil"
	}
	return *v
}
