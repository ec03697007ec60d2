package render

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/population-dashboard/internal/aggregate"
	"github.com/couchcryptid/population-dashboard/internal/chart"
	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/couchcryptid/population-dashboard/internal/filter"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var testSel = filter.Selection{Country: "Testland", Year: 2000, RangeStart: 1990, RangeEnd: 2000}

func testViews() aggregate.Views {
	return aggregate.Views{
		Pyramid: aggregate.Pyramid{
			Labels: []string{"0-4", "5-9", "10-14"},
			Male:   []float64{-120, -110, -90},
			Female: []float64{115, 108, 95},
		},
		Distribution: aggregate.Distribution{
			Slices: []aggregate.CategoryTotal{
				{Category: domain.Minor, Value: 300},
				{Category: domain.YoungAdult, Value: 500},
			},
			Total: 800,
		},
		TrendAbsolute: aggregate.Trend{
			Years: []int{1990, 2000},
			Series: []aggregate.CategorySeries{
				{Category: domain.Minor, Values: []float64{250, 300}},
				{Category: domain.YoungAdult, Values: []float64{400, 500}},
			},
		},
		TrendPercent: aggregate.Trend{
			Years: []int{1990, 2000},
			Series: []aggregate.CategorySeries{
				{Category: domain.Minor, Values: []float64{38.46, 37.5}},
			},
		},
		VariationByRange: aggregate.Comparison{
			StartYear: 1990,
			EndYear:   2000,
			Items: []aggregate.Variation{
				{Label: "0-4", Change: -1.5},
				{Label: "5-9", Change: 0.75},
			},
		},
		VariationByCategory: aggregate.Comparison{
			StartYear: 1990,
			EndYear:   2000,
			Items: []aggregate.Variation{
				{Label: "Minor (0-17)", Change: -0.96},
				{Label: "Young adult (18-44)", Change: 0.96},
			},
		},
	}
}

func TestDraw_EveryViewProducesPNG(t *testing.T) {
	for _, d := range chart.BuildAll(testViews(), testSel) {
		t.Run(string(d.View), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Draw(&buf, d))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestDraw_Placeholder(t *testing.T) {
	d := chart.Distribution(aggregate.Distribution{}, testSel)

	var buf bytes.Buffer
	require.NoError(t, Draw(&buf, d))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestDraw_SingleYearTrend(t *testing.T) {
	d := chart.TrendAbsolute(aggregate.Trend{
		Years:  []int{2000},
		Series: []aggregate.CategorySeries{{Category: domain.Minor, Values: []float64{10}}},
	}, testSel)

	var buf bytes.Buffer
	require.NoError(t, Draw(&buf, d))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestDraw_NothingToRender(t *testing.T) {
	d := chart.Pyramid(aggregate.Pyramid{}, testSel)

	err := Draw(&bytes.Buffer{}, d)
	require.ErrorIs(t, err, ErrNothingToRender)
}

func TestRenderer_StoresLatestImages(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	r := New(metrics)

	_, err := r.PNG(chart.ViewPyramid)
	require.ErrorIs(t, err, ErrNotRendered)

	views := testViews()
	views.Pyramid = aggregate.Pyramid{}
	require.NoError(t, r.Render(t.Context(), chart.BuildAll(views, testSel)))

	img, err := r.PNG(chart.ViewDistribution)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = r.PNG(chart.ViewPyramid)
	require.ErrorIs(t, err, ErrNothingToRender)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ChartRenders.WithLabelValues("distribution", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ChartRenders.WithLabelValues("pyramid", "empty")), 0)
}

func TestRenderer_UnsupportedModeFails(t *testing.T) {
	r := New(nil)

	err := r.Render(t.Context(), []chart.Descriptor{{
		View:   chart.ViewPyramid,
		Mode:   "radar",
		Series: []chart.Series{{Name: "x", Labels: []string{"a"}, Values: []float64{1}}},
	}})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNothingToRender)
}

func TestInterleave(t *testing.T) {
	bars := []gochart.Value{{Label: "a M"}, {Label: "b M"}, {Label: "a F"}, {Label: "b F"}}

	got := interleave(bars, 2)

	labels := make([]string, len(got))
	for i, b := range got {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"a M", "a F", "b M", "b F"}, labels)
}

func TestValueRange(t *testing.T) {
	lo, hi := valueRange([]gochart.Value{{Value: -3}, {Value: 5}})
	assert.InDelta(t, -3, lo, 0)
	assert.InDelta(t, 5, hi, 0)

	lo, hi = valueRange([]gochart.Value{{Value: 0}})
	assert.InDelta(t, -1, lo, 0)
	assert.InDelta(t, 1, hi, 0)
}

func TestRenderer_SingleYearTrends(t *testing.T) {
	r := New(nil)
	trend := aggregate.Trend{
		Years:  []int{2020},
		Series: []aggregate.CategorySeries{{Category: domain.Minor, Values: []float64{40}}},
	}

	require.NoError(t, r.Render(t.Context(), []chart.Descriptor{
		chart.TrendAbsolute(trend, testSel),
		chart.TrendPercent(trend, testSel),
	}))

	for _, view := range []chart.ViewID{chart.ViewTrendAbsolute, chart.ViewTrendPercent} {
		img, err := r.PNG(view)
		require.NoError(t, err, view)
		assert.True(t, bytes.HasPrefix(img, pngMagic))
	}
}

func TestYearTicks(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		xs     []float64
		want   []gochart.Tick
	}{
		{
			name:   "single year padded",
			labels: []string{"2020"},
			xs:     []float64{2020, 2021},
			want:   []gochart.Tick{{Value: 2020, Label: "2020"}, {Value: 2021}},
		},
		{
			name:   "every year",
			labels: []string{"1990", "2000"},
			xs:     []float64{1990, 2000},
			want:   []gochart.Tick{{Value: 1990, Label: "1990"}, {Value: 2000, Label: "2000"}},
		},
		{
			name:   "stepped keeps last year",
			labels: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
			xs:     []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			want: []gochart.Tick{
				{Value: 1, Label: "1"}, {Value: 2, Label: "2"}, {Value: 3, Label: "3"},
				{Value: 4, Label: "4"}, {Value: 5, Label: "5"}, {Value: 6, Label: "6"},
				{Value: 7, Label: "7"}, {Value: 8, Label: "8"}, {Value: 9, Label: "9"},
				{Value: 10, Label: "10"}, {Value: 11, Label: "11"}, {Value: 12, Label: "12"},
			},
		},
		{
			name:   "stepped appends last year",
			labels: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14", "15", "16", "17", "18", "19", "20"},
			xs:     []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
			want: []gochart.Tick{
				{Value: 1, Label: "1"}, {Value: 3, Label: "3"}, {Value: 5, Label: "5"},
				{Value: 7, Label: "7"}, {Value: 9, Label: "9"}, {Value: 11, Label: "11"},
				{Value: 13, Label: "13"}, {Value: 15, Label: "15"}, {Value: 17, Label: "17"},
				{Value: 19, Label: "19"}, {Value: 20, Label: "20"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yearTicks(tt.labels, tt.xs))
		})
	}
}
