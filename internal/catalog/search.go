package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/moviemex/moviemex/internal/models"
)

// Search merges provider results with substring matches from both curated
// collections. Result order is: external hits, then custom movies, then
// custom series. Same-named collisions between external and custom entries
// are kept on purpose; they are addressed by different identifiers and may
// carry different download links, and the detail page disambiguates by id.
//
// A provider failure degrades to zero external results; the local
// collections are still scanned. An empty query matches every local record.
func (s *Service) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	results := []models.SearchResult{}

	page, err := s.metadata.SearchMovies(ctx, query, 1)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("external search failed, continuing with local stores")
	} else {
		for _, ext := range page.Results {
			results = append(results, models.SearchResult{
				ID:           models.TitleID(strconv.Itoa(ext.ID)),
				Title:        ext.Title,
				Overview:     ext.Overview,
				PosterPath:   ext.PosterPath,
				BackdropPath: ext.BackdropPath,
				ReleaseDate:  ext.ReleaseDate,
				VoteAverage:  ext.VoteAverage,
			})
		}
	}

	needle := strings.ToLower(query)

	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, movie := range movies {
		if !strings.Contains(strings.ToLower(movie.Title), needle) {
			continue
		}
		results = append(results, models.SearchResult{
			ID:           models.TitleID(movie.ID),
			Title:        movie.Title,
			Overview:     movie.Overview,
			PosterPath:   movie.PosterPath,
			BackdropPath: movie.BackdropPath,
			ReleaseDate:  movie.ReleaseDate,
			VoteAverage:  movie.VoteAverage,
			IsCustom:     true,
		})
	}

	series, err := s.series.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, sr := range series {
		if !strings.Contains(strings.ToLower(sr.Title), needle) {
			continue
		}
		results = append(results, models.SearchResult{
			ID:           models.TitleID(sr.ID),
			Title:        sr.Title,
			Overview:     sr.Overview,
			PosterPath:   sr.PosterPath,
			BackdropPath: sr.BackdropPath,
			ReleaseDate:  sr.ReleaseDate,
			VoteAverage:  sr.VoteAverage,
			IsCustom:     true,
			IsSeries:     true,
		})
	}

	return &models.SearchResponse{
		Results:      results,
		TotalResults: len(results),
	}, nil
}
