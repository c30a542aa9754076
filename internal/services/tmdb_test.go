package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviemex/moviemex/internal/apperrors"
)

func newTestClient(handler http.Handler) (*TMDBClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewTMDBClient("test-token")
	c.baseURL = srv.URL
	return c, srv
}

func TestDiscoverMovies(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		assert.Equal(t, "/discover/movie", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"page": 2,
			"results": [
				{"id": 603, "title": "The Matrix", "release_date": "1999-03-31", "vote_average": 8.2}
			],
			"total_pages": 10,
			"total_results": 200
		}`))
	}))
	defer srv.Close()

	page, err := c.DiscoverMovies(context.Background(), 2, "28")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"28"}, gotQuery["with_genres"])
	assert.Equal(t, []string{SortPopularityDesc}, gotQuery["sort_by"])
	assert.Equal(t, []string{"en-US"}, gotQuery["language"])

	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, 603, page.Results[0].ID)
	assert.Equal(t, "The Matrix", page.Results[0].Title)
	assert.Equal(t, 200, page.TotalResults)
}

func TestDiscoverMoviesOmitsGenreAll(t *testing.T) {
	var gotQuery map[string][]string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"page": 1, "results": [], "total_pages": 0, "total_results": 0}`))
	}))
	defer srv.Close()

	_, err := c.DiscoverMovies(context.Background(), 1, "all")
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, "with_genres")
}

func TestDiscoverSeriesMapsTVFields(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/tv", r.URL.Path)
		w.Write([]byte(`{
			"page": 1,
			"results": [
				{"id": 1399, "name": "Game of Thrones", "first_air_date": "2011-04-17"}
			],
			"total_pages": 1,
			"total_results": 1
		}`))
	}))
	defer srv.Close()

	page, err := c.DiscoverSeries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Game of Thrones", page.Results[0].Title)
	assert.Equal(t, "2011-04-17", page.Results[0].ReleaseDate)
}

func TestDiscoverUpcomingSortMapping(t *testing.T) {
	tests := []struct {
		name   string
		sortBy string
		want   string
	}{
		{"default", "", SortReleaseDateAsc},
		{"unknown falls back", "bogus", SortReleaseDateAsc},
		{"popularity", SortPopularityDesc, SortPopularityDesc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSort string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSort = r.URL.Query().Get("sort_by")
				assert.Equal(t, "/movie/upcoming", r.URL.Path)
				w.Write([]byte(`{"page": 1, "results": [], "total_pages": 0, "total_results": 0}`))
			}))
			defer srv.Close()

			_, err := c.DiscoverUpcoming(context.Background(), 1, tt.sortBy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotSort)
		})
	}
}

func TestSearchMovies(t *testing.T) {
	var gotQuery string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "/search/movie", r.URL.Path)
		w.Write([]byte(`{"page": 1, "results": [{"id": 438631, "title": "Dune"}], "total_pages": 1, "total_results": 1}`))
	}))
	defer srv.Close()

	page, err := c.SearchMovies(context.Background(), "dune", 1)
	require.NoError(t, err)
	assert.Equal(t, "dune", gotQuery)
	require.Len(t, page.Results, 1)
	assert.Equal(t, 438631, page.Results[0].ID)
}

func TestGetMovieDetail(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		w.Write([]byte(`{
			"id": 603,
			"title": "The Matrix",
			"runtime": 136,
			"budget": 63000000,
			"tagline": "Welcome to the Real World",
			"status": "Released",
			"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]
		}`))
	}))
	defer srv.Close()

	detail, err := c.GetMovieDetail(context.Background(), "603")
	require.NoError(t, err)
	assert.Equal(t, 603, detail.ID)
	assert.Equal(t, 136, detail.Runtime)
	assert.Equal(t, []string{"Action", "Science Fiction"}, detail.Genres)
}

func TestGetMovieDetailNotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_message": "The resource you requested could not be found."}`))
	}))
	defer srv.Close()

	_, err := c.GetMovieDetail(context.Background(), "999999999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &apperrors.ErrNotFound{}))
}

func TestMakeRequestUpstreamError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := c.DiscoverMovies(context.Background(), 1, "")
	require.Error(t, err)

	var upstream *apperrors.ErrUpstream
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Equal(t, "tmdb", upstream.Service)
}

func TestMakeRequestTransportError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := c.DiscoverMovies(context.Background(), 1, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, &apperrors.ErrUpstream{}))
}

func TestGetRecommendations(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603/recommendations", r.URL.Path)
		w.Write([]byte(`{"page": 1, "results": [{"id": 604, "title": "The Matrix Reloaded"}], "total_pages": 1, "total_results": 1}`))
	}))
	defer srv.Close()

	results, err := c.GetRecommendations(context.Background(), "603")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 604, results[0].ID)
}
