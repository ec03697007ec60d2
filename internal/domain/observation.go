package domain

import (
	"strconv"
)

// Year bounds accepted by the normalizer. UN World Population Prospects covers
// 1950-2100; the window is wider so historical reconstructions still load.
const (
	MinValidYear = 1800
	MaxValidYear = 2200
)

// Sex identifies which population a row counts.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexBoth   Sex = "Both sexes"
)

// parseSex maps a raw Sex column to a recognized value. "Both" is accepted as
// an alias of the UN portal's "Both sexes".
func parseSex(s string) (Sex, bool) {
	switch s {
	case "Male":
		return SexMale, true
	case "Female":
		return SexFemale, true
	case "Both sexes", "Both":
		return SexBoth, true
	default:
		return "", false
	}
}

// RawRecord is one row of the UN population data portal export, kept as the
// untyped column strings. Only the columns the dashboard consumes are mapped.
type RawRecord struct {
	Location string `json:"Location"`
	Time     string `json:"Time"`
	Sex      string `json:"Sex"`
	Age      string `json:"Age"`
	AgeStart string `json:"AgeStart"`
	AgeEnd   string `json:"AgeEnd"`
	Value    string `json:"Value"`
}

// Observation is the canonical record held in memory for a session and
// written to the intermediate JSON artifact. The JSON names are the artifact
// contract read back by the dashboard.
type Observation struct {
	Location      string   `json:"Location"`
	Year          int      `json:"Year"`
	Sex           Sex      `json:"Sex"`
	Age           string   `json:"Age"`
	AgeRangeLabel string   `json:"rango_edad"`
	AgeStart      *float64 `json:"AgeStart"`
	AgeEnd        *float64 `json:"AgeEnd"`
	Category      Category `json:"categoria_edad"`
	Value         float64  `json:"Value"`
}

// Raw converts an observation back into its column form. Normalizing the
// result yields the same observation.
func (o Observation) Raw() RawRecord {
	return RawRecord{
		Location: o.Location,
		Time:     strconv.Itoa(o.Year),
		Sex:      string(o.Sex),
		Age:      o.Age,
		AgeStart: formatBound(o.AgeStart),
		AgeEnd:   formatBound(o.AgeEnd),
		Value:    strconv.FormatFloat(o.Value, 'g', -1, 64),
	}
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
