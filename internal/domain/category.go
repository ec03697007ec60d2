package domain

import "math"

// Category is a demographic age band. The declaration order is the display
// order used by every category-based view.
type Category int

const (
	Minor Category = iota
	YoungAdult
	MiddleAdult
	OlderAdult
	Elderly
	LongevousElderly
	Unclassified
)

var categoryLabels = [...]string{
	Minor:            "Minor (0-17)",
	YoungAdult:       "Young adult (18-44)",
	MiddleAdult:      "Middle adult (45-59)",
	OlderAdult:       "Older adult (60-74)",
	Elderly:          "Elderly (75-89)",
	LongevousElderly: "Longevous elderly (90+)",
	Unclassified:     "Unclassified",
}

// Categories lists the six classified bands in order. Unclassified is not
// included.
func Categories() []Category {
	return []Category{Minor, YoungAdult, MiddleAdult, OlderAdult, Elderly, LongevousElderly}
}

func (c Category) String() string {
	if c < Minor || c > Unclassified {
		return categoryLabels[Unclassified]
	}
	return categoryLabels[c]
}

// Classified reports whether c is one of the six bands.
func (c Category) Classified() bool {
	return c >= Minor && c < Unclassified
}

// ParseCategory returns the category with the given label. Unknown labels map
// to Unclassified.
func ParseCategory(label string) Category {
	for i, l := range categoryLabels {
		if l == label {
			return Category(i)
		}
	}
	return Unclassified
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// Classify maps an age interval to a category. Rules are checked in order and
// the first match wins:
//
//	ageEnd <= 17                  Minor
//	ageStart >= 18, ageEnd <= 44  YoungAdult
//	ageStart >= 45, ageEnd <= 59  MiddleAdult
//	ageStart >= 60, ageEnd <= 74  OlderAdult
//	ageStart >= 75, ageEnd <= 89  Elderly
//	ageStart >= 90                LongevousElderly
//
// A nil or NaN bound fails every comparison that reads it, so open intervals
// and "Total" rows fall through to Unclassified.
func Classify(ageStart, ageEnd *float64) Category {
	start, hasStart := bound(ageStart)
	end, hasEnd := bound(ageEnd)

	switch {
	case hasEnd && end <= 17:
		return Minor
	case hasStart && hasEnd && start >= 18 && end <= 44:
		return YoungAdult
	case hasStart && hasEnd && start >= 45 && end <= 59:
		return MiddleAdult
	case hasStart && hasEnd && start >= 60 && end <= 74:
		return OlderAdult
	case hasStart && hasEnd && start >= 75 && end <= 89:
		return Elderly
	case hasStart && start >= 90:
		return LongevousElderly
	default:
		return Unclassified
	}
}

func bound(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) {
		return 0, false
	}
	return *v, true
}
