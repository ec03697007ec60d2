package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/population-dashboard/internal/adapter/render"
	"github.com/couchcryptid/population-dashboard/internal/chart"
	"github.com/couchcryptid/population-dashboard/internal/controller"
	"github.com/couchcryptid/population-dashboard/internal/filter"
	"github.com/couchcryptid/population-dashboard/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds control event bodies.
const maxBodyBytes = 4 << 10

// Sessions creates and looks up dashboard sessions.
type Sessions interface {
	Create() *session.Session
	Get(id string) (*session.Session, bool)
}

// Handler serves the dashboard API.
type Handler struct {
	sessions Sessions
	controls controller.Controls
	logger   *slog.Logger
}

// NewHandler creates a Handler. Controls are fixed for the process lifetime
// because the dataset is.
func NewHandler(sessions Sessions, controls controller.Controls, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, controls: controls, logger: logger}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/controls", h.handleControls)
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/dashboard", h.handleDashboard)
		r.Put("/country", h.handleCountry)
		r.Put("/year", h.handleYear)
		r.Put("/range", h.handleRange)
		r.Get("/charts/{view}.png", h.handleChart)
	})
}

type createSessionResponse struct {
	SessionID string              `json:"session_id"`
	Dashboard controller.Dashboard `json:"dashboard"`
}

type countryRequest struct {
	Country string `json:"country"`
}

type yearRequest struct {
	Year *int `json:"year"`
}

type rangeRequest struct {
	Endpoint string `json:"endpoint"`
	Year     *int   `json:"year"`
}

func (h *Handler) handleControls(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, h.controls)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	d, err := sess.Controller.Current(r.Context())
	if err != nil {
		h.logger.Warn("initial render failed", "session_id", sess.ID, "error", err)
	}
	h.logger.Info("session created", "session_id", sess.ID)
	sharedobs.WriteJSON(w, http.StatusCreated, createSessionResponse{SessionID: sess.ID, Dashboard: d})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	d, err := sess.Controller.Current(r.Context())
	if err != nil {
		h.logger.Warn("render failed", "session_id", sess.ID, "error", err)
	}
	sharedobs.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleCountry(w http.ResponseWriter, r *http.Request) {
	var req countryRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	h.apply(w, r, controller.Event{Kind: controller.EventCountry, Country: req.Country})
}

func (h *Handler) handleYear(w http.ResponseWriter, r *http.Request) {
	var req yearRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Year == nil {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	h.apply(w, r, controller.Event{Kind: controller.EventYear, Year: *req.Year})
}

func (h *Handler) handleRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !decode(w, r, &req) {
		return
	}
	endpoint, err := filter.ParseEndpoint(req.Endpoint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Year == nil {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	h.apply(w, r, controller.Event{Kind: controller.EventRange, Endpoint: endpoint, Year: *req.Year})
}

// apply runs ev on the session's controller. A render failure still answers
// with the updated dashboard; the images are what failed, not the state.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, ev controller.Event) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	d, err := sess.Controller.Apply(r.Context(), ev)
	switch {
	case errors.Is(err, controller.ErrUnknownEvent), errors.Is(err, filter.ErrUnknownEndpoint):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Warn("render failed", "session_id", sess.ID, "revision", d.Revision, "error", err)
	}

	h.logger.Info("filter event applied",
		"session_id", sess.ID,
		"kind", ev.Kind,
		"revision", d.Revision,
	)
	sharedobs.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	view, err := chart.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	// Make sure the first dashboard has been rendered.
	if _, err := sess.Controller.Current(r.Context()); err != nil {
		h.logger.Warn("render failed", "session_id", sess.ID, "error", err)
	}

	img, err := sess.Images.PNG(view)
	switch {
	case errors.Is(err, render.ErrNothingToRender):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("chart unavailable", "session_id", sess.ID, "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, "chart unavailable")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img) //nolint:errcheck // client may have gone away
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}
