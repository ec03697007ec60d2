// Package render draws chart descriptors as PNG images with go-chart.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/couchcryptid/population-dashboard/internal/chart"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrNothingToRender is returned for a descriptor without any points.
	ErrNothingToRender = errors.New("chart has nothing to render")
	// ErrNotRendered is returned by PNG for a view that has not been drawn yet.
	ErrNotRendered = errors.New("chart not rendered")
)

const (
	defaultWidth  = 1024
	defaultHeight = 576
)

// Draw renders d as a PNG into w.
func Draw(w io.Writer, d chart.Descriptor) error {
	return drawSized(w, d, defaultWidth, defaultHeight)
}

func drawSized(w io.Writer, d chart.Descriptor, width, height int) error {
	if !hasPoints(d) {
		return fmt.Errorf("%s: %w", d.View, ErrNothingToRender)
	}

	var err error
	switch d.Mode {
	case chart.ModePie:
		err = drawPie(w, d, width, height)
	case chart.ModeHorizontalBar:
		err = drawBars(w, d, width, height)
	case chart.ModeStackedLine:
		err = drawStackedLines(w, d, width, height)
	default:
		return fmt.Errorf("%s: unsupported mode %q", d.View, d.Mode)
	}
	if err != nil {
		return fmt.Errorf("draw %s: %w", d.View, err)
	}
	return nil
}

func hasPoints(d chart.Descriptor) bool {
	for _, s := range d.Series {
		if len(s.Values) > 0 {
			return true
		}
	}
	return false
}

// Renderer draws every chart of a dashboard and keeps the latest image per
// view. It is safe for concurrent use.
type Renderer struct {
	width   int
	height  int
	metrics *observability.Metrics

	mu     sync.RWMutex
	images map[chart.ViewID]image
}

type image struct {
	png []byte
	err error
}

// New creates a Renderer producing images of the default size.
func New(metrics *observability.Metrics) *Renderer {
	return &Renderer{
		width:   defaultWidth,
		height:  defaultHeight,
		metrics: metrics,
		images:  make(map[chart.ViewID]image),
	}
}

// Render draws each descriptor and replaces the stored images. Views with no
// points are stored as ErrNothingToRender and do not fail the call; any other
// drawing failure is joined into the returned error.
func (r *Renderer) Render(ctx context.Context, charts []chart.Descriptor) error {
	next := make(map[chart.ViewID]image, len(charts))
	var errs []error

	for _, d := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}

		var buf bytes.Buffer
		err := drawSized(&buf, d, r.width, r.height)
		switch {
		case err == nil:
			next[d.View] = image{png: buf.Bytes()}
			r.count(d.View, "success")
		case errors.Is(err, ErrNothingToRender):
			next[d.View] = image{err: err}
			r.count(d.View, "empty")
		default:
			next[d.View] = image{err: err}
			r.count(d.View, "error")
			errs = append(errs, err)
		}
	}

	r.mu.Lock()
	r.images = next
	r.mu.Unlock()

	return errors.Join(errs...)
}

// PNG returns the latest image for view.
func (r *Renderer) PNG(view chart.ViewID) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.images[view]
	if !ok {
		return nil, fmt.Errorf("%s: %w", view, ErrNotRendered)
	}
	return img.png, img.err
}

func (r *Renderer) count(view chart.ViewID, outcome string) {
	if r.metrics != nil {
		r.metrics.ChartRenders.WithLabelValues(string(view), outcome).Inc()
	}
}

// color parses a "#RRGGBB" descriptor colour.
func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// seriesColor returns the colour for point i of s. A single colour applies to
// the whole series.
func seriesColor(s chart.Series, i int) drawing.Color {
	switch {
	case len(s.Colors) == 0:
		return gochart.ColorBlue
	case len(s.Colors) == 1:
		return color(s.Colors[0])
	default:
		return color(s.Colors[i%len(s.Colors)])
	}
}
