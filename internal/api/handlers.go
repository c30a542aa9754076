package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/moviemex/moviemex/internal/apperrors"
	"github.com/moviemex/moviemex/internal/auth"
	"github.com/moviemex/moviemex/internal/catalog"
	"github.com/moviemex/moviemex/internal/database"
	"github.com/moviemex/moviemex/internal/models"
)

// Store interfaces consumed by the handlers. The database package provides
// the Postgres-backed implementations; tests substitute fakes.

type CustomMovieStore interface {
	Create(ctx context.Context, movie *models.CustomMovie) (string, error)
	List(ctx context.Context) ([]*models.CustomMovie, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type CustomSeriesStore interface {
	Create(ctx context.Context, series *models.CustomSeries) (string, error)
	List(ctx context.Context) ([]*models.CustomSeries, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type MovieDownloadStore interface {
	Set(ctx context.Context, download *models.MovieDownload) error
	Delete(ctx context.Context, id string) error
}

type SeriesDownloadStore interface {
	Set(ctx context.Context, download *models.SeriesDownload) error
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	Authenticate(ctx context.Context, username, password string) (*database.User, error)
}

// DiscoverClient is the external catalog surface the public discover
// endpoints proxy.
type DiscoverClient interface {
	DiscoverMovies(ctx context.Context, page int, genre string) (*models.ExternalPage, error)
	DiscoverSeries(ctx context.Context, page int) (*models.ExternalPage, error)
	DiscoverUpcoming(ctx context.Context, page int, sortBy string) (*models.ExternalPage, error)
}

// TokenIssuer issues and checks admin session tokens.
type TokenIssuer interface {
	Generate(userID int, username string, isAdmin bool) (string, error)
	Validate(tokenString string) (*auth.Claims, error)
}

type Handler struct {
	catalog         *catalog.Service
	discover        DiscoverClient
	customMovies    CustomMovieStore
	customSeries    CustomSeriesStore
	movieDownloads  MovieDownloadStore
	seriesDownloads SeriesDownloadStore
	users           UserStore
	tokens          TokenIssuer
	log             zerolog.Logger
}

func NewHandler(
	catalogService *catalog.Service,
	discover DiscoverClient,
	customMovies CustomMovieStore,
	customSeries CustomSeriesStore,
	movieDownloads MovieDownloadStore,
	seriesDownloads SeriesDownloadStore,
	users UserStore,
	tokens TokenIssuer,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		catalog:         catalogService,
		discover:        discover,
		customMovies:    customMovies,
		customSeries:    customSeries,
		movieDownloads:  movieDownloads,
		seriesDownloads: seriesDownloads,
		users:           users,
		tokens:          tokens,
		log:             log,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps the error taxonomy onto HTTP statuses so callers can
// tell "not found" from "upstream broken".
func respondAppError(w http.ResponseWriter, err error) {
	var upstream *apperrors.ErrUpstream
	switch {
	case errors.Is(err, &apperrors.ErrValidation{}):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, &apperrors.ErrNotFound{}):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, &apperrors.ErrUnauthorized{}):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &upstream):
		status := http.StatusBadGateway
		if upstream.StatusCode >= 400 {
			status = upstream.StatusCode
		}
		respondError(w, status, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// queryPage parses a 1-indexed page parameter, defaulting to 1.
func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// HealthCheck handles GET /api/v1/health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DiscoverMovies handles GET /api/v1/discover/movies
func (h *Handler) DiscoverMovies(w http.ResponseWriter, r *http.Request) {
	page, err := h.discover.DiscoverMovies(r.Context(), queryPage(r), r.URL.Query().Get("genre"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// DiscoverSeries handles GET /api/v1/discover/tv
func (h *Handler) DiscoverSeries(w http.ResponseWriter, r *http.Request) {
	page, err := h.discover.DiscoverSeries(r.Context(), queryPage(r))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// DiscoverUpcoming handles GET /api/v1/discover/upcoming
func (h *Handler) DiscoverUpcoming(w http.ResponseWriter, r *http.Request) {
	page, err := h.discover.DiscoverUpcoming(r.Context(), queryPage(r), r.URL.Query().Get("sortBy"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Search handles GET /api/v1/search?query=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query, ok := r.URL.Query()["query"]
	if !ok || len(query) == 0 {
		respondError(w, http.StatusBadRequest, "missing query parameter")
		return
	}

	response, err := h.catalog.Search(r.Context(), query[0])
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// GetTitle handles GET /api/v1/movies/{movieId}
func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["movieId"]

	detail, err := h.catalog.Resolve(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// GetRecommendations handles GET /api/v1/movies/{movieId}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["movieId"]

	titles, err := h.catalog.Recommendations(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":       titles,
		"total_results": len(titles),
	})
}

// GetMovieDownloads handles GET /api/v1/downloads/movie/{movieId}
func (h *Handler) GetMovieDownloads(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["movieId"]

	download, err := h.catalog.MovieDownloads(r.Context(), id)
	if errors.Is(err, &apperrors.ErrNotFound{}) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"message": "No download links found for this movie",
		})
		return
	}
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"links": download.Links,
		"title": download.Title,
		"id":    download.MovieID,
	})
}

// GetSeriesDownloads handles GET /api/v1/downloads/series/{seriesId}
func (h *Handler) GetSeriesDownloads(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["seriesId"]

	download, err := h.catalog.SeriesDownloads(r.Context(), id)
	if errors.Is(err, &apperrors.ErrNotFound{}) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"message": "No download links found for this series",
		})
		return
	}
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"episodes": download.Episodes,
		"title":    download.Title,
		"id":       download.SeriesID,
	})
}
