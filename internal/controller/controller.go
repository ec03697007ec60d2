// Package controller owns the filter state of one dashboard session. Each
// control event mutates the state, then the controller re-aggregates the
// dataset, adapts the views into chart descriptors, and hands them to a
// Renderer. Events on one Controller are serialized.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/population-dashboard/internal/aggregate"
	"github.com/couchcryptid/population-dashboard/internal/chart"
	"github.com/couchcryptid/population-dashboard/internal/dataset"
	"github.com/couchcryptid/population-dashboard/internal/filter"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrUnknownEvent is returned by Apply for an event kind it does not handle.
var ErrUnknownEvent = errors.New("unknown filter event")

// EventKind names the control that changed.
type EventKind string

const (
	EventCountry EventKind = "country"
	EventYear    EventKind = "year"
	EventRange   EventKind = "range"
)

// Event is one user control change. Country is read for EventCountry, Year for
// EventYear and EventRange, and Endpoint for EventRange.
type Event struct {
	Kind     EventKind
	Country  string
	Year     int
	Endpoint filter.Endpoint
}

// Renderer receives the chart descriptors of every refreshed dashboard.
type Renderer interface {
	Render(ctx context.Context, charts []chart.Descriptor) error
}

// Dashboard is the output of one refresh. Revision increases with every
// applied event.
type Dashboard struct {
	Revision   uint64             `json:"revision"`
	RenderedAt time.Time          `json:"rendered_at"`
	Selection  filter.Selection   `json:"selection"`
	Summary    aggregate.Summary  `json:"summary"`
	Charts     []chart.Descriptor `json:"charts"`
}

// Chart returns the descriptor for view, if present.
func (d Dashboard) Chart(view chart.ViewID) (chart.Descriptor, bool) {
	for _, c := range d.Charts {
		if c.View == view {
			return c, true
		}
	}
	return chart.Descriptor{}, false
}

// Controls describes the inputs a client can offer: the country options, the
// year bounds, and the initial selection.
type Controls struct {
	Countries []string         `json:"countries"`
	MinYear   int              `json:"min_year"`
	MaxYear   int              `json:"max_year"`
	Defaults  filter.Selection `json:"defaults"`
}

// Controller serializes filter events for one session.
type Controller struct {
	ds       *dataset.Dataset
	aggOpts  aggregate.Options
	renderer Renderer
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock

	mu       sync.Mutex
	state    *filter.State
	revision uint64
	current  *Dashboard
}

// Option configures a Controller.
type Option func(*Controller)

// WithRenderer sets the sink for refreshed chart descriptors.
func WithRenderer(r Renderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMetrics sets the metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithClock sets the clock used to stamp dashboards.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithAggregateOptions overrides the aggregation tuning.
func WithAggregateOptions(o aggregate.Options) Option {
	return func(c *Controller) { c.aggOpts = o }
}

// New creates a Controller over ds with the default filter selection.
func New(ds *dataset.Dataset, opts ...Option) *Controller {
	minYear, maxYear := ds.YearBounds()
	c := &Controller{
		ds:       ds,
		aggOpts:  aggregate.DefaultOptions(),
		renderer: nopRenderer{},
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
		state:    filter.New(minYear, maxYear),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Controls returns the control options derived from the dataset.
func (c *Controller) Controls() Controls {
	minYear, maxYear := c.ds.YearBounds()
	countries := append([]string{filter.AllCountries}, c.ds.Countries()...)
	return Controls{
		Countries: countries,
		MinYear:   minYear,
		MaxYear:   maxYear,
		Defaults:  filter.New(minYear, maxYear).Selection(),
	}
}

// Current returns the latest dashboard, building it on first use.
func (c *Controller) Current(ctx context.Context) (Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return *c.current, nil
	}
	return c.refresh(ctx)
}

// Apply mutates the filter state and refreshes the dashboard. A renderer
// failure is returned together with the refreshed dashboard; the state change
// is kept either way.
func (c *Controller) Apply(ctx context.Context, ev Event) (Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case EventCountry:
		c.state.SetCountry(ev.Country)
	case EventYear:
		c.state.SetYear(ev.Year)
	case EventRange:
		if ev.Endpoint != filter.RangeStart && ev.Endpoint != filter.RangeEnd {
			return c.last(), fmt.Errorf("%w: %d", filter.ErrUnknownEndpoint, ev.Endpoint)
		}
		c.state.SetRange(ev.Endpoint, ev.Year)
	default:
		return c.last(), fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}

	c.revision++
	if c.metrics != nil {
		c.metrics.FilterEvents.WithLabelValues(string(ev.Kind)).Inc()
	}
	return c.refresh(ctx)
}

// last returns the latest dashboard without refreshing. The zero Dashboard is
// returned before the first refresh.
func (c *Controller) last() Dashboard {
	if c.current == nil {
		return Dashboard{Revision: c.revision, Selection: c.state.Selection()}
	}
	return *c.current
}

// refresh must be called with mu held.
func (c *Controller) refresh(ctx context.Context) (Dashboard, error) {
	start := c.clock.Now()
	sel := c.state.Selection()

	views := aggregate.Aggregate(c.ds.Observations(), sel, c.aggOpts)
	d := Dashboard{
		Revision:   c.revision,
		RenderedAt: c.clock.Now(),
		Selection:  sel,
		Summary:    views.Summary,
		Charts:     chart.BuildAll(views, sel),
	}
	c.current = &d

	if c.metrics != nil {
		c.metrics.AggregationDuration.Observe(c.clock.Since(start).Seconds())
	}

	if err := c.renderer.Render(ctx, d.Charts); err != nil {
		c.logger.Error("render dashboard failed",
			"error", err,
			"revision", d.Revision,
			"country", sel.Country,
			"year", sel.Year,
		)
		return d, fmt.Errorf("render revision %d: %w", d.Revision, err)
	}

	c.logger.Debug("dashboard refreshed",
		"revision", d.Revision,
		"country", sel.Country,
		"year", sel.Year,
		"range_start", sel.RangeStart,
		"range_end", sel.RangeEnd,
	)
	return d, nil
}

type nopRenderer struct{}

func (nopRenderer) Render(context.Context, []chart.Descriptor) error { return nil }
