package aggregate

import (
	"sort"

	"github.com/couchcryptid/population-dashboard/internal/domain"
)

// Pyramid holds male and female totals per age-range label for one year.
// Male values are negated so the two sides mirror around zero; the totals are
// positive.
type Pyramid struct {
	Labels      []string  `json:"labels"`
	Male        []float64 `json:"male"`
	Female      []float64 `json:"female"`
	MaleTotal   float64   `json:"male_total"`
	FemaleTotal float64   `json:"female_total"`
}

// buildPyramid groups Male and Female rows by age range. Both-sexes rows are
// ignored because they already contain the other two.
func buildPyramid(yearRows []domain.Observation) Pyramid {
	rows := subset(yearRows, func(o *domain.Observation) bool {
		return o.Sex == domain.SexMale || o.Sex == domain.SexFemale
	})

	male := make(map[string]float64)
	female := make(map[string]float64)
	for i := range rows {
		switch rows[i].Sex {
		case domain.SexMale:
			male[rows[i].AgeRangeLabel] += rows[i].Value
		case domain.SexFemale:
			female[rows[i].AgeRangeLabel] += rows[i].Value
		}
	}

	labels := orderedLabels(rows)
	p := Pyramid{
		Labels: labels,
		Male:   make([]float64, len(labels)),
		Female: make([]float64, len(labels)),
	}
	for i, l := range labels {
		if m := male[l]; m != 0 {
			p.Male[i] = -m
		}
		p.Female[i] = female[l]
		p.MaleTotal += male[l]
		p.FemaleTotal += female[l]
	}
	return p
}

// CategoryTotal is one slice of the distribution.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Value    float64         `json:"value"`
}

// Distribution splits the both-sexes population of one year by category.
type Distribution struct {
	Slices []CategoryTotal `json:"slices"`
	Total  float64         `json:"total"`
}

// Empty reports whether there is nothing to draw.
func (d Distribution) Empty() bool { return d.Total == 0 }

// Value returns the total for c, or 0 when c is absent.
func (d Distribution) Value(c domain.Category) float64 {
	for _, s := range d.Slices {
		if s.Category == c {
			return s.Value
		}
	}
	return 0
}

func buildDistribution(yearRows []domain.Observation) Distribution {
	rows := subset(yearRows, func(o *domain.Observation) bool {
		return o.Sex == domain.SexBoth && o.Category.Classified()
	})

	var d Distribution
	for _, c := range presentCategories(rows) {
		v := sumWhere(rows, func(o *domain.Observation) bool { return o.Category == c })
		d.Slices = append(d.Slices, CategoryTotal{Category: c, Value: v})
		d.Total += v
	}
	return d
}

// CategorySeries is one line of a trend, aligned with Trend.Years.
type CategorySeries struct {
	Category domain.Category `json:"category"`
	Values   []float64       `json:"values"`
}

// Trend is a per-year series for each category.
type Trend struct {
	Years  []int            `json:"years"`
	Series []CategorySeries `json:"series"`
}

func distinctYears(rows []domain.Observation) []int {
	seen := make(map[int]bool)
	var years []int
	for i := range rows {
		if y := rows[i].Year; !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// totalsByYearCategory sums classified rows into year -> category buckets.
func totalsByYearCategory(rows []domain.Observation) map[int]map[domain.Category]float64 {
	totals := make(map[int]map[domain.Category]float64)
	for i := range rows {
		o := &rows[i]
		if !o.Category.Classified() {
			continue
		}
		if totals[o.Year] == nil {
			totals[o.Year] = make(map[domain.Category]float64)
		}
		totals[o.Year][o.Category] += o.Value
	}
	return totals
}

// buildTrend sums both-sexes rows per year and category across all years.
func buildTrend(bothRows []domain.Observation) Trend {
	years := distinctYears(bothRows)
	totals := totalsByYearCategory(bothRows)

	t := Trend{Years: years}
	for _, c := range presentCategories(bothRows) {
		values := make([]float64, len(years))
		for i, y := range years {
			values[i] = totals[y][c]
		}
		t.Series = append(t.Series, CategorySeries{Category: c, Values: values})
	}
	return t
}

// buildTrendPercent expresses the first n present categories as a share of
// each year's classified total.
func buildTrendPercent(bothRows []domain.Observation, n int) Trend {
	years := distinctYears(bothRows)
	totals := totalsByYearCategory(bothRows)

	categories := presentCategories(bothRows)
	if len(categories) > n {
		categories = categories[:n]
	}

	grand := make(map[int]float64, len(years))
	for y, byCat := range totals {
		for _, v := range byCat {
			grand[y] += v
		}
	}

	t := Trend{Years: years}
	for _, c := range categories {
		values := make([]float64, len(years))
		for i, y := range years {
			values[i] = share(totals[y][c], grand[y])
		}
		t.Series = append(t.Series, CategorySeries{Category: c, Values: values})
	}
	return t
}

// Variation is the change in one group's share of the population between the
// two comparison years, in percentage points.
type Variation struct {
	Label      string  `json:"label"`
	StartShare float64 `json:"start_share"`
	EndShare   float64 `json:"end_share"`
	Change     float64 `json:"change"`
}

// Comparison holds the variations between two years.
type Comparison struct {
	StartYear int         `json:"start_year"`
	EndYear   int         `json:"end_year"`
	Items     []Variation `json:"items"`
}

// comparisonCategories are the broad bands compared by the category variation
// view.
var comparisonCategories = []domain.Category{domain.Minor, domain.YoungAdult, domain.MiddleAdult}

func rowsInYear(rows []domain.Observation, year int) []domain.Observation {
	return subset(rows, func(o *domain.Observation) bool { return o.Year == year })
}

// buildRangeVariation compares up to limit age-range labels, taken in the
// order they first appear in the start year and then the end year. Shares are
// computed against each year's grand total, unclassified rows included.
func buildRangeVariation(bothRows []domain.Observation, startYear, endYear, limit int) Comparison {
	start := rowsInYear(bothRows, startYear)
	end := rowsInYear(bothRows, endYear)
	startTotal := sumWhere(start, nil)
	endTotal := sumWhere(end, nil)

	labels := firstSeenLabels(append(append([]domain.Observation(nil), start...), end...))
	if len(labels) > limit {
		labels = labels[:limit]
	}

	cmp := Comparison{StartYear: startYear, EndYear: endYear, Items: make([]Variation, 0, len(labels))}
	for _, l := range labels {
		byLabel := func(o *domain.Observation) bool { return o.AgeRangeLabel == l }
		cmp.Items = append(cmp.Items, variation(l,
			share(sumWhere(start, byLabel), startTotal),
			share(sumWhere(end, byLabel), endTotal),
		))
	}
	return cmp
}

// buildCategoryVariation compares Minor, YoungAdult, and MiddleAdult against
// each year's grand total.
func buildCategoryVariation(bothRows []domain.Observation, startYear, endYear int) Comparison {
	start := rowsInYear(bothRows, startYear)
	end := rowsInYear(bothRows, endYear)
	startTotal := sumWhere(start, nil)
	endTotal := sumWhere(end, nil)

	cmp := Comparison{StartYear: startYear, EndYear: endYear, Items: make([]Variation, 0, len(comparisonCategories))}
	for _, c := range comparisonCategories {
		byCategory := func(o *domain.Observation) bool { return o.Category == c }
		cmp.Items = append(cmp.Items, variation(c.String(),
			share(sumWhere(start, byCategory), startTotal),
			share(sumWhere(end, byCategory), endTotal),
		))
	}
	return cmp
}

func variation(label string, startShare, endShare float64) Variation {
	return Variation{
		Label:      label,
		StartShare: startShare,
		EndShare:   endShare,
		Change:     endShare - startShare,
	}
}
