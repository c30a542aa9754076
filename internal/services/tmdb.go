package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/moviemex/moviemex/internal/apperrors"
	"github.com/moviemex/moviemex/internal/models"
)

const (
	tmdbBaseURL = "https://api.themoviedb.org/3"

	// Upcoming sort modes accepted by DiscoverUpcoming.
	SortReleaseDateAsc = "release_date.asc"
	SortPopularityDesc = "popularity.desc"
)

// TMDBClient is a stateless read-only client for the external metadata
// provider. It performs no retries and no caching; a failed call surfaces
// immediately and the caller decides whether to degrade.
type TMDBClient struct {
	readToken  string
	baseURL    string
	httpClient *http.Client
}

func NewTMDBClient(readToken string) *TMDBClient {
	return &TMDBClient{
		readToken: readToken,
		baseURL:   tmdbBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Provider response shapes.
type tmdbMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbTV struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	FirstAirDate string  `json:"first_air_date"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
}

type tmdbMoviePage struct {
	Page         int         `json:"page"`
	Results      []tmdbMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type tmdbTVPage struct {
	Page         int      `json:"page"`
	Results      []tmdbTV `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type tmdbMovieDetail struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	Budget       int64   `json:"budget"`
	Tagline      string  `json:"tagline"`
	Status       string  `json:"status"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Genres       []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// DiscoverMovies returns one page of movies ordered by provider popularity.
// A genre of "" or "all" omits the genre filter.
func (c *TMDBClient) DiscoverMovies(ctx context.Context, page int, genre string) (*models.ExternalPage, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("sort_by", SortPopularityDesc)
	if genre != "" && genre != "all" {
		params.Set("with_genres", genre)
	}

	data, err := c.makeRequest(ctx, "/discover/movie", params)
	if err != nil {
		return nil, err
	}

	var result tmdbMoviePage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discover results: %w", err)
	}
	return convertMoviePage(&result), nil
}

// DiscoverSeries returns one page of TV series ordered by provider
// popularity.
func (c *TMDBClient) DiscoverSeries(ctx context.Context, page int) (*models.ExternalPage, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("sort_by", SortPopularityDesc)

	data, err := c.makeRequest(ctx, "/discover/tv", params)
	if err != nil {
		return nil, err
	}

	var result tmdbTVPage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discover results: %w", err)
	}
	return convertTVPage(&result), nil
}

// DiscoverUpcoming returns one page of upcoming movies. sortBy is one of
// SortReleaseDateAsc (default) or SortPopularityDesc.
func (c *TMDBClient) DiscoverUpcoming(ctx context.Context, page int, sortBy string) (*models.ExternalPage, error) {
	params := url.Values{}
	params.Set("page", fmt.Sprintf("%d", page))
	if sortBy == SortPopularityDesc {
		params.Set("sort_by", SortPopularityDesc)
	} else {
		params.Set("sort_by", SortReleaseDateAsc)
	}

	data, err := c.makeRequest(ctx, "/movie/upcoming", params)
	if err != nil {
		return nil, err
	}

	var result tmdbMoviePage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal upcoming results: %w", err)
	}
	return convertMoviePage(&result), nil
}

// SearchMovies searches movies by free text.
func (c *TMDBClient) SearchMovies(ctx context.Context, query string, page int) (*models.ExternalPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", fmt.Sprintf("%d", page))

	data, err := c.makeRequest(ctx, "/search/movie", params)
	if err != nil {
		return nil, err
	}

	var result tmdbMoviePage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search results: %w", err)
	}
	return convertMoviePage(&result), nil
}

// GetMovieDetail retrieves the extended record of a single provider title.
func (c *TMDBClient) GetMovieDetail(ctx context.Context, id string) (*models.ExternalDetail, error) {
	data, err := c.makeRequest(ctx, fmt.Sprintf("/movie/%s", url.PathEscape(id)), url.Values{})
	if err != nil {
		return nil, err
	}

	var detail tmdbMovieDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie detail: %w", err)
	}

	genres := make([]string, len(detail.Genres))
	for i, g := range detail.Genres {
		genres[i] = g.Name
	}

	return &models.ExternalDetail{
		ID:           detail.ID,
		Title:        detail.Title,
		Overview:     detail.Overview,
		PosterPath:   detail.PosterPath,
		BackdropPath: detail.BackdropPath,
		ReleaseDate:  detail.ReleaseDate,
		Runtime:      detail.Runtime,
		Budget:       detail.Budget,
		Tagline:      detail.Tagline,
		Status:       detail.Status,
		Genres:       genres,
		VoteAverage:  detail.VoteAverage,
		VoteCount:    detail.VoteCount,
	}, nil
}

// GetRecommendations returns the provider's recommendations for a title.
func (c *TMDBClient) GetRecommendations(ctx context.Context, id string) ([]models.ExternalTitle, error) {
	params := url.Values{}
	params.Set("page", "1")

	data, err := c.makeRequest(ctx, fmt.Sprintf("/movie/%s/recommendations", url.PathEscape(id)), params)
	if err != nil {
		return nil, err
	}

	var result tmdbMoviePage
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	return convertMoviePage(&result).Results, nil
}

// makeRequest performs an authenticated GET against the provider. A 404
// maps to not-found, any other non-2xx to an upstream error carrying the
// provider's status code.
func (c *TMDBClient) makeRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("language", "en-US")

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint %s: %w", endpoint, err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.readToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamTransportError("tmdb", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamTransportError("tmdb", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError("title", endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstreamError("tmdb", resp.StatusCode)
	}

	return data, nil
}

func convertMoviePage(page *tmdbMoviePage) *models.ExternalPage {
	results := make([]models.ExternalTitle, 0, len(page.Results))
	for _, m := range page.Results {
		results = append(results, models.ExternalTitle{
			ID:           m.ID,
			Title:        m.Title,
			Overview:     m.Overview,
			PosterPath:   m.PosterPath,
			BackdropPath: m.BackdropPath,
			ReleaseDate:  m.ReleaseDate,
			GenreIDs:     m.GenreIDs,
			VoteAverage:  m.VoteAverage,
		})
	}
	return &models.ExternalPage{
		Page:         page.Page,
		Results:      results,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	}
}

func convertTVPage(page *tmdbTVPage) *models.ExternalPage {
	results := make([]models.ExternalTitle, 0, len(page.Results))
	for _, tv := range page.Results {
		results = append(results, models.ExternalTitle{
			ID:           tv.ID,
			Title:        tv.Name,
			Overview:     tv.Overview,
			PosterPath:   tv.PosterPath,
			BackdropPath: tv.BackdropPath,
			ReleaseDate:  tv.FirstAirDate,
			GenreIDs:     tv.GenreIDs,
			VoteAverage:  tv.VoteAverage,
		})
	}
	return &models.ExternalPage{
		Page:         page.Page,
		Results:      results,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	}
}
