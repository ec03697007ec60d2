package chart

import (
	"fmt"
	"strconv"

	"github.com/couchcryptid/population-dashboard/internal/aggregate"
	"github.com/couchcryptid/population-dashboard/internal/filter"
)

// BuildAll adapts every view, in dashboard order.
func BuildAll(v aggregate.Views, sel filter.Selection) []Descriptor {
	return []Descriptor{
		Pyramid(v.Pyramid, sel),
		Distribution(v.Distribution, sel),
		TrendAbsolute(v.TrendAbsolute, sel),
		TrendPercent(v.TrendPercent, sel),
		VariationByRange(v.VariationByRange, sel),
		VariationByCategory(v.VariationByCategory, sel),
	}
}

// Pyramid draws males to the left of the axis and females to the right.
func Pyramid(p aggregate.Pyramid, sel filter.Selection) Descriptor {
	return Descriptor{
		View:  ViewPyramid,
		Title: fmt.Sprintf("Population pyramid for %s in %d", CountryName(sel), sel.Year),
		Mode:  ModeHorizontalBar,
		XAxis: "Population",
		YAxis: "Age range",
		Series: []Series{
			{Name: "Male", Labels: p.Labels, Values: roundAll(p.Male), Colors: []string{colorMale}},
			{Name: "Female", Labels: p.Labels, Values: roundAll(p.Female), Colors: []string{colorFemale}},
		},
	}
}

// Distribution draws a pie of category totals. A zero total draws a single
// "No data" slice instead of an empty chart.
func Distribution(d aggregate.Distribution, sel filter.Selection) Descriptor {
	if d.Empty() {
		return Descriptor{
			View:        ViewDistribution,
			Title:       "No data available for this filter",
			Mode:        ModePie,
			Series:      []Series{{Name: "No data", Labels: []string{"No data"}, Values: []float64{1}}},
			Placeholder: true,
		}
	}

	s := Series{Name: "Population"}
	for _, slice := range d.Slices {
		s.Labels = append(s.Labels, slice.Category.String())
		s.Values = append(s.Values, roundTo2(slice.Value))
		s.Colors = append(s.Colors, paletteColor(int(slice.Category)))
	}

	return Descriptor{
		View:   ViewDistribution,
		Title:  fmt.Sprintf("Population distribution by age category for %d in %s", sel.Year, CountryName(sel)),
		Mode:   ModePie,
		Series: []Series{s},
	}
}

// TrendAbsolute draws one stacked line per category across every year.
func TrendAbsolute(t aggregate.Trend, sel filter.Selection) Descriptor {
	return Descriptor{
		View:   ViewTrendAbsolute,
		Title:  fmt.Sprintf("Population trend by age category in %s", CountryName(sel)),
		Mode:   ModeStackedLine,
		XAxis:  "Year",
		YAxis:  "Population",
		Series: trendSeries(t),
	}
}

// TrendPercent draws category shares per year.
func TrendPercent(t aggregate.Trend, sel filter.Selection) Descriptor {
	return Descriptor{
		View:   ViewTrendPercent,
		Title:  fmt.Sprintf("Percentage population trend in %s", CountryName(sel)),
		Mode:   ModeStackedLine,
		XAxis:  "Year",
		YAxis:  "Percentage (%)",
		Series: trendSeries(t),
	}
}

func trendSeries(t aggregate.Trend) []Series {
	years := make([]string, len(t.Years))
	for i, y := range t.Years {
		years[i] = strconv.Itoa(y)
	}

	series := make([]Series, 0, len(t.Series))
	for i, s := range t.Series {
		series = append(series, Series{
			Name:   s.Category.String(),
			Labels: years,
			Values: roundAll(s.Values),
			Colors: []string{paletteColor(i)},
		})
	}
	return series
}

// VariationByRange draws the share change per age range between the two
// comparison years.
func VariationByRange(c aggregate.Comparison, sel filter.Selection) Descriptor {
	return Descriptor{
		View:   ViewVariationRange,
		Title:  fmt.Sprintf("Population variation by age range (%d vs %d) - %s", c.StartYear, c.EndYear, CountryName(sel)),
		Mode:   ModeHorizontalBar,
		XAxis:  "Percentage difference (%)",
		YAxis:  "Age range",
		Series: []Series{variationSeries(c)},
	}
}

// VariationByCategory draws the share change for the broad categories.
func VariationByCategory(c aggregate.Comparison, sel filter.Selection) Descriptor {
	return Descriptor{
		View:   ViewVariationCategory,
		Title:  fmt.Sprintf("Population variation by category (%d vs %d) - %s", c.StartYear, c.EndYear, CountryName(sel)),
		Mode:   ModeHorizontalBar,
		XAxis:  "Percentage difference (%)",
		YAxis:  "Age category",
		Series: []Series{variationSeries(c)},
	}
}

// variationSeries colours each bar by the sign of its change.
func variationSeries(c aggregate.Comparison) Series {
	s := Series{
		Name:   "Change",
		Labels: make([]string, 0, len(c.Items)),
		Values: make([]float64, 0, len(c.Items)),
		Colors: make([]string, 0, len(c.Items)),
	}
	for _, item := range c.Items {
		s.Labels = append(s.Labels, item.Label)
		s.Values = append(s.Values, roundTo2(item.Change))
		if item.Change >= 0 {
			s.Colors = append(s.Colors, colorPositive)
		} else {
			s.Colors = append(s.Colors, colorNegative)
		}
	}
	return s
}
