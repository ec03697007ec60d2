package render

import (
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/population-dashboard/internal/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
)

func drawPie(w io.Writer, d chart.Descriptor, width, height int) error {
	s := d.Series[0]
	values := make([]gochart.Value, 0, len(s.Values))
	for i, v := range s.Values {
		values = append(values, gochart.Value{
			Label: s.Labels[i],
			Value: v,
			Style: gochart.Style{FillColor: seriesColor(s, i)},
		})
	}

	pie := gochart.PieChart{
		Title:  d.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pie.Render(gochart.PNG, w)
}

// drawBars draws every series as one bar chart around a zero baseline. With
// two series, the bars of each label sit side by side.
func drawBars(w io.Writer, d chart.Descriptor, width, height int) error {
	var bars []gochart.Value
	multi := len(d.Series) > 1
	for _, s := range d.Series {
		for i, v := range s.Values {
			label := s.Labels[i]
			if multi {
				label += " " + s.Name
			}
			bars = append(bars, gochart.Value{
				Label: label,
				Value: v,
				Style: gochart.Style{FillColor: seriesColor(s, i), StrokeColor: seriesColor(s, i)},
			})
		}
	}
	if multi {
		bars = interleave(bars, len(d.Series))
	}

	lo, hi := valueRange(bars)
	bc := gochart.BarChart{
		Title:        d.Title,
		Width:        width,
		Height:       height,
		BarWidth:     max(4, (width-120)/(2*len(bars))),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:  d.XAxis,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

// interleave reorders bars grouped by series into bars grouped by label.
func interleave(bars []gochart.Value, series int) []gochart.Value {
	per := len(bars) / series
	out := make([]gochart.Value, 0, len(bars))
	for i := range per {
		for s := range series {
			out = append(out, bars[s*per+i])
		}
	}
	return out
}

// valueRange spans every value and zero, widened when flat so the axis is
// never degenerate.
func valueRange(bars []gochart.Value) (lo, hi float64) {
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

// drawStackedLines draws each series as a filled area stacked on the ones
// before it. Labels are the x values.
func drawStackedLines(w io.Writer, d chart.Descriptor, width, height int) error {
	xs := xValues(d.Series[0].Labels)
	if len(xs) == 1 {
		// go-chart needs a non-empty x range.
		xs = append(xs, xs[0]+1)
	}

	cumulative := make([]float64, len(xs))
	stacked := make([]gochart.Series, 0, len(d.Series))
	peak := 0.0
	for _, s := range d.Series {
		ys := make([]float64, len(xs))
		for i := range xs {
			v := 0.0
			if i < len(s.Values) {
				v = s.Values[i]
			} else if len(s.Values) == 1 {
				v = s.Values[0]
			}
			cumulative[i] += v
			ys[i] = cumulative[i]
			peak = math.Max(peak, ys[i])
		}
		c := seriesColor(s, 0)
		stacked = append(stacked, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				FillColor:   c.WithAlpha(160),
			},
		})
	}

	// Paint the tallest layer first so lower layers stay visible.
	for i, j := 0, len(stacked)-1; i < j; i, j = i+1, j-1 {
		stacked[i], stacked[j] = stacked[j], stacked[i]
	}

	if peak == 0 {
		peak = 1
	}
	ch := gochart.Chart{
		Title:      d.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: d.XAxis, Ticks: yearTicks(d.Series[0].Labels, xs)},
		YAxis:      gochart.YAxis{Name: d.YAxis, Range: &gochart.ContinuousRange{Min: 0, Max: peak}},
		Series:     stacked,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

// xValues parses numeric labels. Non-numeric labels fall back to their index.
func xValues(labels []string) []float64 {
	xs := make([]float64, len(labels))
	for i, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			v = float64(i)
		}
		xs[i] = v
	}
	return xs
}

// yearTicks labels every step-th year. go-chart derives the x range from the
// ticks, so the last x value, including the padding added for a single year,
// always gets a tick.
func yearTicks(labels []string, xs []float64) []gochart.Tick {
	ticks := make([]gochart.Tick, 0, len(xs))
	step := max(1, len(labels)/10)
	last := -1
	for i := 0; i < len(labels) && i < len(xs); i += step {
		ticks = append(ticks, gochart.Tick{Value: xs[i], Label: labels[i]})
		last = i
	}
	if end := len(xs) - 1; end > last {
		label := ""
		if end < len(labels) {
			label = labels[end]
		}
		ticks = append(ticks, gochart.Tick{Value: xs[end], Label: label})
	}
	return ticks
}
