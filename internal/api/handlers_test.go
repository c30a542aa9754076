package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviemex/moviemex/internal/apperrors"
	"github.com/moviemex/moviemex/internal/auth"
	"github.com/moviemex/moviemex/internal/catalog"
	"github.com/moviemex/moviemex/internal/database"
	"github.com/moviemex/moviemex/internal/models"
)

// Fakes. Each store fake backs both the catalog read interfaces and the
// admin write interfaces so one wiring serves the whole router.

type fakeMovies struct {
	items        map[string]*models.CustomMovie
	createErr    error
	createdID    string
	lastCreated  *models.CustomMovie
	lastUpdateID string
	lastFields   map[string]interface{}
	deletedID    string
}

func (f *fakeMovies) Get(ctx context.Context, id string) (*models.CustomMovie, error) {
	if m, ok := f.items[id]; ok {
		return m, nil
	}
	return nil, apperrors.NewNotFoundError("movie", id)
}

func (f *fakeMovies) List(ctx context.Context) ([]*models.CustomMovie, error) {
	out := []*models.CustomMovie{}
	for _, m := range f.items {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMovies) Create(ctx context.Context, movie *models.CustomMovie) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.lastCreated = movie
	return f.createdID, nil
}

func (f *fakeMovies) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NewNotFoundError("movie", id)
	}
	f.lastUpdateID = id
	f.lastFields = fields
	return nil
}

func (f *fakeMovies) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return nil
}

type fakeSeries struct {
	items       map[string]*models.CustomSeries
	createdID   string
	lastCreated *models.CustomSeries
	lastFields  map[string]interface{}
	deletedID   string
}

func (f *fakeSeries) Get(ctx context.Context, id string) (*models.CustomSeries, error) {
	if s, ok := f.items[id]; ok {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("series", id)
}

func (f *fakeSeries) List(ctx context.Context) ([]*models.CustomSeries, error) {
	out := []*models.CustomSeries{}
	for _, s := range f.items {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSeries) Create(ctx context.Context, series *models.CustomSeries) (string, error) {
	f.lastCreated = series
	return f.createdID, nil
}

func (f *fakeSeries) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NewNotFoundError("series", id)
	}
	f.lastFields = fields
	return nil
}

func (f *fakeSeries) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return nil
}

type fakeMovieDL struct {
	items   map[string]*models.MovieDownload
	lastSet *models.MovieDownload
}

func (f *fakeMovieDL) Get(ctx context.Context, id string) (*models.MovieDownload, error) {
	if d, ok := f.items[id]; ok {
		return d, nil
	}
	return nil, apperrors.NewNotFoundError("movie download", id)
}

func (f *fakeMovieDL) Set(ctx context.Context, download *models.MovieDownload) error {
	f.lastSet = download
	return nil
}

func (f *fakeMovieDL) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeSeriesDL struct {
	items map[string]*models.SeriesDownload
}

func (f *fakeSeriesDL) Get(ctx context.Context, id string) (*models.SeriesDownload, error) {
	if d, ok := f.items[id]; ok {
		return d, nil
	}
	return nil, apperrors.NewNotFoundError("series download", id)
}

func (f *fakeSeriesDL) Set(ctx context.Context, download *models.SeriesDownload) error {
	return nil
}

func (f *fakeSeriesDL) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeMetadata struct {
	searchPage *models.ExternalPage
	detail     *models.ExternalDetail
	recs       []models.ExternalTitle
}

func (f *fakeMetadata) SearchMovies(ctx context.Context, query string, page int) (*models.ExternalPage, error) {
	if f.searchPage == nil {
		return &models.ExternalPage{Page: 1, Results: []models.ExternalTitle{}}, nil
	}
	return f.searchPage, nil
}

func (f *fakeMetadata) GetMovieDetail(ctx context.Context, id string) (*models.ExternalDetail, error) {
	if f.detail == nil {
		return nil, apperrors.NewNotFoundError("title", id)
	}
	return f.detail, nil
}

func (f *fakeMetadata) GetRecommendations(ctx context.Context, id string) ([]models.ExternalTitle, error) {
	return f.recs, nil
}

type fakeDiscover struct {
	page *models.ExternalPage
	err  error
}

func (f *fakeDiscover) DiscoverMovies(ctx context.Context, page int, genre string) (*models.ExternalPage, error) {
	return f.page, f.err
}

func (f *fakeDiscover) DiscoverSeries(ctx context.Context, page int) (*models.ExternalPage, error) {
	return f.page, f.err
}

func (f *fakeDiscover) DiscoverUpcoming(ctx context.Context, page int, sortBy string) (*models.ExternalPage, error) {
	return f.page, f.err
}

type fakeUsers struct{}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (*database.User, error) {
	if username == "admin" && password == "correct-horse" {
		return &database.User{ID: 1, Username: "admin", Role: "admin"}, nil
	}
	if username == "viewer" && password == "correct-horse" {
		return &database.User{ID: 2, Username: "viewer", Role: "viewer"}, nil
	}
	return nil, apperrors.NewUnauthorizedError("invalid username or password")
}

type testEnv struct {
	server   *httptest.Server
	tokens   *auth.Manager
	movies   *fakeMovies
	series   *fakeSeries
	movieDL  *fakeMovieDL
	seriesDL *fakeSeriesDL
	discover *fakeDiscover
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens: auth.NewManager("test-secret"),
		movies: &fakeMovies{
			items:     map[string]*models.CustomMovie{},
			createdID: "custom_1700000000000_ab12cd34",
		},
		series: &fakeSeries{
			items:     map[string]*models.CustomSeries{},
			createdID: "custom_series_1700000000000_ab12cd34",
		},
		movieDL:  &fakeMovieDL{items: map[string]*models.MovieDownload{}},
		seriesDL: &fakeSeriesDL{items: map[string]*models.SeriesDownload{}},
		discover: &fakeDiscover{page: &models.ExternalPage{Page: 1, Results: []models.ExternalTitle{}}},
	}

	log := zerolog.Nop()
	catalogService := catalog.NewService(env.movies, env.series, env.movieDL, env.seriesDL, &fakeMetadata{}, log)
	handler := NewHandler(catalogService, env.discover, env.movies, env.series, env.movieDL, env.seriesDL, &fakeUsers{}, env.tokens, log)

	env.server = httptest.NewServer(SetupRoutes(handler, env.tokens, log))
	t.Cleanup(env.server.Close)
	return env
}

func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := env.tokens.Generate(1, "admin", true)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, env.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	decoded := map[string]json.RawMessage{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func rawString(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", rawString(t, body["status"]))
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/admin/movies/custom", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRejectsNonAdminToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Generate(2, "viewer", false)
	require.NoError(t, err)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/admin/movies/custom", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token := rawString(t, body["token"])
	require.NotEmpty(t, token)

	resp, body = env.do(t, http.MethodGet, "/api/v1/auth/verify", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", rawString(t, body["username"]))
	assert.Equal(t, "true", string(body["is_admin"]))
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginMissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchMissingQueryParam(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEmptyQueryAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.movies.items["custom_1"] = &models.CustomMovie{ID: "custom_1", Title: "Home Video", IsCustom: true}

	resp, body := env.do(t, http.MethodGet, "/api/v1/search?query=", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", string(body["total_results"]))
}

func TestGetTitleCustomMovie(t *testing.T) {
	env := newTestEnv(t)
	env.movies.items["custom_1"] = &models.CustomMovie{ID: "custom_1", Title: "Home Video", IsCustom: true}

	resp, body := env.do(t, http.MethodGet, "/api/v1/movies/custom_1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Home Video", rawString(t, body["title"]))
	assert.Equal(t, "true", string(body["isCustom"]))
}

func TestGetTitleNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/movies/custom_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMovieDownloads(t *testing.T) {
	env := newTestEnv(t)
	env.movieDL.items["603"] = &models.MovieDownload{
		MovieID: "603",
		Title:   "The Matrix",
		Links:   []models.DownloadLink{{Quality: models.Quality1080p, URL: "http://x"}},
	}

	resp, body := env.do(t, http.MethodGet, "/api/v1/downloads/movie/603", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "The Matrix", rawString(t, body["title"]))
	assert.Equal(t, "603", string(body["id"]))

	var links []models.DownloadLink
	require.NoError(t, json.Unmarshal(body["links"], &links))
	require.Len(t, links, 1)
}

func TestGetMovieDownloadsNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/downloads/movie/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No download links found for this movie", rawString(t, body["message"]))
}

func TestGetSeriesDownloadsNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/downloads/series/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No download links found for this series", rawString(t, body["message"]))
}

func TestCreateCustomMovie(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/movies/custom", token, map[string]interface{}{
		"title":       "Home Video",
		"overview":    "A movie we host ourselves.",
		"releaseDate": "2024-01-01",
		"posterUrl":   "http://img/poster.jpg",
		"rating":      7.5,
		"links": []map[string]string{
			{"quality": "1080p", "url": "http://dl/movie.mkv"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, env.movies.createdID, rawString(t, body["movieId"]))

	require.NotNil(t, env.movies.lastCreated)
	assert.Equal(t, "Home Video", env.movies.lastCreated.Title)
	assert.Equal(t, "http://img/poster.jpg", env.movies.lastCreated.PosterPath)
}

func TestCreateCustomMovieValidationError(t *testing.T) {
	env := newTestEnv(t)
	env.movies.createErr = apperrors.NewValidationError("title is required")
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/movies/custom", token, map[string]interface{}{
		"overview": "no title",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateCustomMovieOnlyTouchesSentFields(t *testing.T) {
	env := newTestEnv(t)
	env.movies.items["custom_1"] = &models.CustomMovie{ID: "custom_1", Title: "Old"}
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodPut, "/api/v1/admin/movies/custom", token, map[string]interface{}{
		"movieId": "custom_1",
		"title":   "New",
		"rating":  8.1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "custom_1", env.movies.lastUpdateID)
	assert.Equal(t, map[string]interface{}{
		"title":        "New",
		"vote_average": 8.1,
	}, env.movies.lastFields)
}

func TestUpdateCustomMovieNotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodPut, "/api/v1/admin/movies/custom", token, map[string]interface{}{
		"movieId": "custom_missing",
		"title":   "New",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteCustomMovieMissingParam(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodDelete, "/api/v1/admin/movies/custom", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteCustomMovie(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodDelete, "/api/v1/admin/movies/custom?movieId=custom_1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "custom_1", env.movies.deletedID)
}

func TestCreateCustomSeries(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/series/custom", token, map[string]interface{}{
		"title":        "Home Show",
		"overview":     "A series we host ourselves.",
		"releaseDate":  "2024-01-01",
		"posterUrl":    "http://img/poster.jpg",
		"totalSeasons": 2,
		"episodes": []map[string]interface{}{
			{
				"episodeNumber": 1,
				"episodeName":   "Pilot",
				"links":         []map[string]string{{"quality": "720p", "url": "http://dl/e1.mkv"}},
			},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, env.series.createdID, rawString(t, body["seriesId"]))

	require.NotNil(t, env.series.lastCreated)
	assert.Equal(t, 2, env.series.lastCreated.TotalSeasons)
	require.Len(t, env.series.lastCreated.Episodes, 1)
}

func TestSetMovieDownloads(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/downloads/movie", token, map[string]interface{}{
		"movieId": 603,
		"title":   "The Matrix",
		"links":   []map[string]string{{"quality": "1080p", "url": "http://dl/matrix.mkv"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, env.movieDL.lastSet)
	assert.Equal(t, models.TitleID("603"), env.movieDL.lastSet.MovieID)
}

func TestDiscoverMoviesProxiesUpstreamStatus(t *testing.T) {
	env := newTestEnv(t)
	env.discover.err = apperrors.NewUpstreamError("tmdb", http.StatusTooManyRequests)

	resp, _ := env.do(t, http.MethodGet, "/api/v1/discover/movies", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestDiscoverMovies(t *testing.T) {
	env := newTestEnv(t)
	env.discover.page = &models.ExternalPage{
		Page:         1,
		Results:      []models.ExternalTitle{{ID: 603, Title: "The Matrix"}},
		TotalPages:   1,
		TotalResults: 1,
	}

	resp, body := env.do(t, http.MethodGet, "/api/v1/discover/movies?page=1&genre=28", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", string(body["total_results"]))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/api/v1/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecommendationsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/movies/custom_1/recommendations", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(body["total_results"]))
}
