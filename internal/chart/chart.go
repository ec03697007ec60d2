// Package chart adapts aggregated views into declarative chart descriptors.
// A descriptor names its series, values, render mode, and colours; drawing it
// is left to a renderer.
package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/population-dashboard/internal/filter"
)

// ErrUnknownView is returned by ParseView for an unrecognized view ID.
var ErrUnknownView = errors.New("unknown chart view")

// ViewID identifies one of the six dashboard charts.
type ViewID string

const (
	ViewPyramid           ViewID = "pyramid"
	ViewDistribution      ViewID = "distribution"
	ViewTrendAbsolute     ViewID = "trend-absolute"
	ViewTrendPercent      ViewID = "trend-percent"
	ViewVariationRange    ViewID = "variation-range"
	ViewVariationCategory ViewID = "variation-category"
)

// Views lists the view IDs in dashboard order.
func Views() []ViewID {
	return []ViewID{
		ViewPyramid,
		ViewDistribution,
		ViewTrendAbsolute,
		ViewTrendPercent,
		ViewVariationRange,
		ViewVariationCategory,
	}
}

// ParseView validates a view ID.
func ParseView(s string) (ViewID, error) {
	for _, v := range Views() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Mode is how a series is drawn.
type Mode string

const (
	ModeHorizontalBar Mode = "horizontal-bar"
	ModePie           Mode = "pie"
	ModeStackedLine   Mode = "stacked-line"
)

// Descriptor is a render-ready chart.
type Descriptor struct {
	View        ViewID   `json:"view"`
	Title       string   `json:"title"`
	Mode        Mode     `json:"mode"`
	XAxis       string   `json:"x_axis,omitempty"`
	YAxis       string   `json:"y_axis,omitempty"`
	Series      []Series `json:"series"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

// Series is one named set of points. Labels and Values are parallel. Colors
// holds a single entry when the whole series shares a colour and one entry
// per point otherwise.
type Series struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// Colour assignments.
const (
	colorMale     = "#3B82F6"
	colorFemale   = "#EC4899"
	colorPositive = "#7DDC65"
	colorNegative = "#ED5855"
)

var categoryPalette = []string{"#1077FF", "#EE805E", "#59A5DA", "#EEE852", "#7DDC65", "#FF6B6B"}

func paletteColor(i int) string {
	return categoryPalette[i%len(categoryPalette)]
}

// CountryName is the display name used in titles. The all-countries sentinel
// reads as "the world".
func CountryName(sel filter.Selection) string {
	if sel.IsAllCountries() {
		return "the world"
	}
	return sel.Country
}

// roundTo2 rounds to 2 decimal places.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = roundTo2(v)
	}
	return out
}
