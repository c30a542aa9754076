package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/moviemex/moviemex/internal/models"
)

// Admin handlers. Every route here sits behind the bearer-token middleware;
// request field names mirror the admin panel forms and are contract.

// decodeTwice unmarshals a request body into a typed struct and, from the
// same bytes, into a raw field map. The map records which keys the client
// actually sent, so updates only touch fields present in the request.
func decodeTwice(r *http.Request, dst interface{}, raw map[string]json.RawMessage) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	return json.Unmarshal(data, &raw)
}

type customMovieRequest struct {
	Title       string                `json:"title"`
	Overview    string                `json:"overview"`
	ReleaseDate string                `json:"releaseDate"`
	PosterURL   string                `json:"posterUrl"`
	BackdropURL string                `json:"backdropUrl"`
	Rating      float64               `json:"rating"`
	Links       []models.DownloadLink `json:"links"`
}

// CreateCustomMovie handles POST /api/v1/admin/movies/custom
func (h *Handler) CreateCustomMovie(w http.ResponseWriter, r *http.Request) {
	var req customMovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	movie := &models.CustomMovie{
		Title:        req.Title,
		Overview:     req.Overview,
		ReleaseDate:  req.ReleaseDate,
		PosterPath:   req.PosterURL,
		BackdropPath: req.BackdropURL,
		VoteAverage:  req.Rating,
		Links:        req.Links,
	}

	id, err := h.customMovies.Create(r.Context(), movie)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Custom movie added successfully",
		"movieId": id,
	})
}

// ListCustomMovies handles GET /api/v1/admin/movies/custom
func (h *Handler) ListCustomMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.customMovies.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"customMovies": movies})
}

// UpdateCustomMovie handles PUT /api/v1/admin/movies/custom
func (h *Handler) UpdateCustomMovie(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieID string `json:"movieId"`
		customMovieRequest
	}
	body := map[string]json.RawMessage{}
	if err := decodeTwice(r, &req, body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MovieID == "" {
		respondError(w, http.StatusBadRequest, "missing movieId")
		return
	}

	// Merge-write: only the fields present in the request body change.
	fields := map[string]interface{}{}
	if _, ok := body["title"]; ok {
		fields["title"] = req.Title
	}
	if _, ok := body["overview"]; ok {
		fields["overview"] = req.Overview
	}
	if _, ok := body["releaseDate"]; ok {
		fields["release_date"] = req.ReleaseDate
	}
	if _, ok := body["posterUrl"]; ok {
		fields["poster_path"] = req.PosterURL
	}
	if _, ok := body["backdropUrl"]; ok {
		fields["backdrop_path"] = req.BackdropURL
	}
	if _, ok := body["rating"]; ok {
		fields["vote_average"] = req.Rating
	}
	if _, ok := body["links"]; ok {
		fields["links"] = req.Links
	}

	if err := h.customMovies.Update(r.Context(), req.MovieID, fields); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Custom movie updated successfully",
	})
}

// DeleteCustomMovie handles DELETE /api/v1/admin/movies/custom?movieId=
func (h *Handler) DeleteCustomMovie(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("movieId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing movieId parameter")
		return
	}

	if err := h.customMovies.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Custom movie deleted successfully",
	})
}

type customSeriesRequest struct {
	Title        string           `json:"title"`
	Overview     string           `json:"overview"`
	ReleaseDate  string           `json:"releaseDate"`
	PosterURL    string           `json:"posterUrl"`
	BackdropURL  string           `json:"backdropUrl"`
	Rating       float64          `json:"rating"`
	TotalSeasons int              `json:"totalSeasons"`
	Episodes     []models.Episode `json:"episodes"`
}

// CreateCustomSeries handles POST /api/v1/admin/series/custom
func (h *Handler) CreateCustomSeries(w http.ResponseWriter, r *http.Request) {
	var req customSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	series := &models.CustomSeries{
		Title:        req.Title,
		Overview:     req.Overview,
		ReleaseDate:  req.ReleaseDate,
		PosterPath:   req.PosterURL,
		BackdropPath: req.BackdropURL,
		VoteAverage:  req.Rating,
		TotalSeasons: req.TotalSeasons,
		Episodes:     req.Episodes,
	}

	id, err := h.customSeries.Create(r.Context(), series)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Custom series added successfully",
		"seriesId": id,
	})
}

// ListCustomSeries handles GET /api/v1/admin/series/custom
func (h *Handler) ListCustomSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.customSeries.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"customSeries": series})
}

// UpdateCustomSeries handles PUT /api/v1/admin/series/custom
func (h *Handler) UpdateCustomSeries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeriesID string `json:"seriesId"`
		customSeriesRequest
	}
	body := map[string]json.RawMessage{}
	if err := decodeTwice(r, &req, body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SeriesID == "" {
		respondError(w, http.StatusBadRequest, "missing seriesId")
		return
	}

	fields := map[string]interface{}{}
	if _, ok := body["title"]; ok {
		fields["title"] = req.Title
	}
	if _, ok := body["overview"]; ok {
		fields["overview"] = req.Overview
	}
	if _, ok := body["releaseDate"]; ok {
		fields["release_date"] = req.ReleaseDate
	}
	if _, ok := body["posterUrl"]; ok {
		fields["poster_path"] = req.PosterURL
	}
	if _, ok := body["backdropUrl"]; ok {
		fields["backdrop_path"] = req.BackdropURL
	}
	if _, ok := body["rating"]; ok {
		fields["vote_average"] = req.Rating
	}
	if _, ok := body["totalSeasons"]; ok {
		fields["total_seasons"] = req.TotalSeasons
	}
	if _, ok := body["episodes"]; ok {
		fields["episodes"] = req.Episodes
	}

	if err := h.customSeries.Update(r.Context(), req.SeriesID, fields); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Custom series updated successfully",
	})
}

// DeleteCustomSeries handles DELETE /api/v1/admin/series/custom?seriesId=
func (h *Handler) DeleteCustomSeries(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("seriesId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing seriesId parameter")
		return
	}

	if err := h.customSeries.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Custom series deleted successfully",
	})
}

// SetMovieDownloads handles POST /api/v1/admin/downloads/movie
func (h *Handler) SetMovieDownloads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovieID models.TitleID        `json:"movieId"`
		Title   string                `json:"title"`
		Links   []models.DownloadLink `json:"links"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	download := &models.MovieDownload{
		MovieID: req.MovieID,
		Title:   req.Title,
		Links:   req.Links,
	}
	if err := h.movieDownloads.Set(r.Context(), download); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Movie download links updated successfully",
	})
}

// DeleteMovieDownloads handles DELETE /api/v1/admin/downloads/movie?movieId=
func (h *Handler) DeleteMovieDownloads(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("movieId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing movieId parameter")
		return
	}

	if err := h.movieDownloads.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Movie download links deleted successfully",
	})
}

// SetSeriesDownloads handles POST /api/v1/admin/downloads/series
func (h *Handler) SetSeriesDownloads(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeriesID models.TitleID   `json:"seriesId"`
		Title    string           `json:"title"`
		Episodes []models.Episode `json:"episodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	download := &models.SeriesDownload{
		SeriesID: req.SeriesID,
		Title:    req.Title,
		Episodes: req.Episodes,
	}
	if err := h.seriesDownloads.Set(r.Context(), download); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Series download links updated successfully",
	})
}

// DeleteSeriesDownloads handles DELETE /api/v1/admin/downloads/series?seriesId=
func (h *Handler) DeleteSeriesDownloads(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("seriesId")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing seriesId parameter")
		return
	}

	if err := h.seriesDownloads.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Series download links deleted successfully",
	})
}
