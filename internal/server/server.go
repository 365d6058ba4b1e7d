package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/seriesheat/seriesheat/internal/apperrors"
	"github.com/seriesheat/seriesheat/internal/config"
	"github.com/seriesheat/seriesheat/internal/heatmap"
	"github.com/seriesheat/seriesheat/internal/models"
	"github.com/seriesheat/seriesheat/internal/services"
)

const (
	// minInches and maxInches bound the w/h query parameters on the
	// heatmap endpoints.
	minInches = 1.0
	maxInches = 32.0
)

// Server exposes the ratings and heatmap operations over HTTP.
type Server struct {
	service services.HeatmapService
	router  *mux.Router
	logger  zerolog.Logger
}

// NewServer creates a new HTTP server instance backed by the given service.
func NewServer(service services.HeatmapService) *Server {
	s := &Server{
		service: service,
		logger:  config.GetLogger().With().Str("component", "http-server").Logger(),
	}

	router := mux.NewRouter()
	router.Use(s.requestMiddleware)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)
	router.HandleFunc(`/api/shows/{id:tt\d+}/ratings`, s.handleRatings).Methods(http.MethodGet)
	router.HandleFunc(`/api/shows/{id:tt\d+}/heatmap.png`, s.handleHeatmapPNG).Methods(http.MethodGet)
	router.HandleFunc(`/api/shows/{id:tt\d+}/heatmap.svg`, s.handleHeatmapSVG).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	s.router = router

	return s
}

// Handler returns the root handler for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// searchResponse is the payload of GET /api/search.
type searchResponse struct {
	Query string        `json:"query"`
	Shows []models.Show `json:"shows"`
}

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	s.logger.Debug().Str("query", query).Msg("Search called")
	shows, err := s.service.SearchShows(r.Context(), query)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	if len(shows) == 0 {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no shows found for %q", query))
		return
	}

	s.logger.Debug().Str("query", query).Int("show_count", len(shows)).Msg("Search completed")
	s.writeJSON(w, http.StatusOK, searchResponse{Query: query, Shows: shows})
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	showID := mux.Vars(r)["id"]
	refresh := parseRefresh(r)

	s.logger.Debug().Str("show_id", showID).Bool("refresh", refresh).Msg("Ratings called")
	series, err := s.service.GetSeriesRatings(r.Context(), showID, refresh)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.logger.Debug().
		Str("show_id", showID).
		Int("season_count", len(series.Seasons)).
		Int("episode_count", series.EpisodeCount()).
		Msg("Ratings completed")
	s.writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleHeatmapPNG(w http.ResponseWriter, r *http.Request) {
	s.handleHeatmap(w, r, heatmap.FormatPNG)
}

func (s *Server) handleHeatmapSVG(w http.ResponseWriter, r *http.Request) {
	s.handleHeatmap(w, r, heatmap.FormatSVG)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request, format string) {
	showID := mux.Vars(r)["id"]

	width, err := parseInches(r, "w")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseInches(r, "h")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	refresh := parseRefresh(r)

	opts := heatmap.Options{
		WidthInches:  width,
		HeightInches: height,
		Format:       format,
	}

	s.logger.Debug().Str("show_id", showID).Str("format", format).Msg("Heatmap called")
	rendered, err := s.service.RenderHeatmap(r.Context(), showID, opts, refresh)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rendered.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rendered.Content); err != nil {
		s.logger.Error().Err(err).Str("show_id", showID).Msg("Failed to write heatmap response")
		return
	}

	s.logger.Debug().
		Str("show_id", showID).
		Str("format", format).
		Int("bytes", len(rendered.Content)).
		Msg("Heatmap completed")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
}

// handleServiceError maps service errors onto HTTP statuses. Unknown shows
// are 404, resolvable shows without a single rated episode are 422, and
// everything else counts as an upstream scrape failure.
func (s *Server) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, &apperrors.ErrNotFound{}):
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Resource not found")
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, &apperrors.ErrNoRatings{}):
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Show has no rated episodes")
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream fetch failed")
		sentry.CaptureException(err)
		s.writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// parseInches reads an optional dimension query parameter. An absent
// parameter maps to zero so the renderer falls back to its default size.
func parseInches(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", name, raw)
	}
	if value < minInches || value > maxInches {
		return 0, fmt.Errorf("%s must be between %g and %g inches", name, minInches, maxInches)
	}

	return value, nil
}

func parseRefresh(r *http.Request) bool {
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		return true
	default:
		return false
	}
}
