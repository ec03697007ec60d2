package domain

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeReport counts what happened to the input rows. The counts are
// informational; dropped rows are never surfaced as errors.
type NormalizeReport struct {
	Read         int
	Kept         int
	DroppedSex   int
	DroppedYear  int
	DroppedValue int
}

// Dropped returns the total number of rows excluded from the canonical set.
func (r NormalizeReport) Dropped() int {
	return r.DroppedSex + r.DroppedYear + r.DroppedValue
}

// Normalize converts raw rows into canonical observations. Rows with an
// unrecognized sex, an unusable year, or a missing or negative value are
// dropped. Output order follows input order; duplicates are kept.
func Normalize(rows []RawRecord) ([]Observation, NormalizeReport) {
	report := NormalizeReport{Read: len(rows)}
	out := make([]Observation, 0, len(rows))

	for _, row := range rows {
		obs, reason := normalizeRecord(row)
		switch reason {
		case dropSex:
			report.DroppedSex++
			continue
		case dropYear:
			report.DroppedYear++
			continue
		case dropValue:
			report.DroppedValue++
			continue
		}
		out = append(out, obs)
	}

	report.Kept = len(out)
	return out, report
}

// Renormalize passes already-canonical observations through Normalize again.
// The output equals the input for any set Normalize produced.
func Renormalize(obs []Observation) ([]Observation, NormalizeReport) {
	raws := make([]RawRecord, len(obs))
	for i := range obs {
		raws[i] = obs[i].Raw()
	}
	return Normalize(raws)
}

type dropReason int

const (
	keep dropReason = iota
	dropSex
	dropYear
	dropValue
)

func normalizeRecord(row RawRecord) (Observation, dropReason) {
	sex, ok := parseSex(strings.TrimSpace(row.Sex))
	if !ok {
		return Observation{}, dropSex
	}

	year, ok := parseYear(row.Time)
	if !ok {
		return Observation{}, dropYear
	}

	value := parseNumber(row.Value)
	if value == nil || math.IsInf(*value, 0) || *value < 0 {
		return Observation{}, dropValue
	}

	ageStart := parseNumber(row.AgeStart)
	ageEnd := parseNumber(row.AgeEnd)

	return Observation{
		Location:      strings.TrimSpace(row.Location),
		Year:          year,
		Sex:           sex,
		Age:           strings.TrimSpace(row.Age),
		AgeRangeLabel: ageRangeLabel(row.Age, ageStart, ageEnd),
		AgeStart:      ageStart,
		AgeEnd:        ageEnd,
		Category:      Classify(ageStart, ageEnd),
		Value:         *value,
	}, keep
}

// parseNumber coerces a column to a float. Empty, unparseable, and NaN values
// become nil.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

// parseYear accepts integral values ("2020" or "2020.0") inside the valid
// window.
func parseYear(s string) (int, bool) {
	v := parseNumber(s)
	if v == nil || *v != math.Trunc(*v) {
		return 0, false
	}
	if *v < MinValidYear || *v > MaxValidYear {
		return 0, false
	}
	return int(*v), true
}

// ageRangeLabel prefers the explicit Age label, otherwise "{start}-{end}" with
// a missing bound left blank.
func ageRangeLabel(age string, start, end *float64) string {
	if age = strings.TrimSpace(age); age != "" {
		return age
	}
	return formatBound(start) + "-" + formatBound(end)
}
