// Package aggregate derives the dashboard's six views from the canonical
// observation set and a filter selection.
//
// Aggregate is a pure function: it never mutates its inputs, and every call
// recomputes all views from scratch. Empty subsets and zero denominators
// produce zero or empty results rather than errors.
package aggregate

import (
	"math"
	"sort"

	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/couchcryptid/population-dashboard/internal/filter"
)

const (
	defaultPercentCategories = 3
	defaultVariationRanges   = 5
)

// Options tunes the views whose size is a presentation choice.
type Options struct {
	// PercentCategories caps how many categories the percentage trend shows,
	// taken in category order.
	PercentCategories int
	// VariationRanges caps how many age-range labels the range variation
	// view compares.
	VariationRanges int
}

// DefaultOptions returns three percentage-trend categories and five
// variation ranges.
func DefaultOptions() Options {
	return Options{
		PercentCategories: defaultPercentCategories,
		VariationRanges:   defaultVariationRanges,
	}
}

func (o Options) withDefaults() Options {
	if o.PercentCategories <= 0 {
		o.PercentCategories = defaultPercentCategories
	}
	if o.VariationRanges <= 0 {
		o.VariationRanges = defaultVariationRanges
	}
	return o
}

// Views is the full set of datasets for one render cycle.
type Views struct {
	Pyramid             Pyramid
	Distribution        Distribution
	TrendAbsolute       Trend
	TrendPercent        Trend
	VariationByRange    Comparison
	VariationByCategory Comparison
	Summary             Summary
}

// Aggregate computes every view for the selection.
func Aggregate(obs []domain.Observation, sel filter.Selection, opts Options) Views {
	opts = opts.withDefaults()

	yearRows := subset(obs, func(o *domain.Observation) bool {
		return o.Year == sel.Year && sel.MatchesCountry(o.Location)
	})
	bothRows := subset(obs, func(o *domain.Observation) bool {
		return o.Sex == domain.SexBoth && sel.MatchesCountry(o.Location)
	})

	distribution := buildDistribution(yearRows)

	return Views{
		Pyramid:             buildPyramid(yearRows),
		Distribution:        distribution,
		TrendAbsolute:       buildTrend(bothRows),
		TrendPercent:        buildTrendPercent(bothRows, opts.PercentCategories),
		VariationByRange:    buildRangeVariation(bothRows, sel.RangeStart, sel.RangeEnd, opts.VariationRanges),
		VariationByCategory: buildCategoryVariation(bothRows, sel.RangeStart, sel.RangeEnd),
		Summary: Summary{
			Country:      sel.Country,
			Year:         sel.Year,
			Total:        distribution.Total,
			Observations: len(yearRows),
		},
	}
}

// Summary is the headline figure for the selected year and country.
type Summary struct {
	Country      string  `json:"country"`
	Year         int     `json:"year"`
	Total        float64 `json:"total"`
	Observations int     `json:"observations"`
}

// subset copies the observations that satisfy keep into a new slice.
func subset(obs []domain.Observation, keep func(*domain.Observation) bool) []domain.Observation {
	out := make([]domain.Observation, 0)
	for i := range obs {
		if keep(&obs[i]) {
			out = append(out, obs[i])
		}
	}
	return out
}

// sumWhere totals the value of rows that satisfy keep.
func sumWhere(rows []domain.Observation, keep func(*domain.Observation) bool) float64 {
	var total float64
	for i := range rows {
		if keep == nil || keep(&rows[i]) {
			total += rows[i].Value
		}
	}
	return total
}

// share returns part as a percentage of whole, or 0 when whole is zero.
func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * part / whole
}

// presentCategories returns the classified categories that occur in rows, in
// category order.
func presentCategories(rows []domain.Observation) []domain.Category {
	var seen [domain.Unclassified]bool
	for i := range rows {
		if c := rows[i].Category; c.Classified() {
			seen[c] = true
		}
	}
	out := make([]domain.Category, 0, len(seen))
	for _, c := range domain.Categories() {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// firstSeenLabels returns the distinct non-empty age-range labels in rows in
// the order they first appear.
func firstSeenLabels(rows []domain.Observation) []string {
	seen := make(map[string]bool)
	var labels []string
	for i := range rows {
		label := rows[i].AgeRangeLabel
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// orderedLabels returns the distinct non-empty age-range labels in rows,
// youngest band first. Labels are ordered by the smallest AgeStart observed
// for them; labels without a start sort last, ties break lexically.
func orderedLabels(rows []domain.Observation) []string {
	starts := make(map[string]float64)
	for i := range rows {
		label := rows[i].AgeRangeLabel
		if label == "" {
			continue
		}
		start := math.Inf(1)
		if s := rows[i].AgeStart; s != nil {
			start = *s
		}
		if cur, ok := starts[label]; !ok || start < cur {
			starts[label] = start
		}
	}

	labels := make([]string, 0, len(starts))
	for l := range starts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		si, sj := starts[labels[i]], starts[labels[j]]
		if si != sj {
			return si < sj
		}
		return labels[i] < labels[j]
	})
	return labels
}
