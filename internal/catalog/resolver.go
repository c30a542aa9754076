package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/moviemex/moviemex/internal/apperrors"
	"github.com/moviemex/moviemex/internal/models"
)

// Resolve classifies an identifier, fetches the matching record and
// normalizes it into the shared TitleDetail shape. Lookup misses at the
// terminal branch become not-found; transport failures keep their upstream
// kind so callers can distinguish the two.
func (s *Service) Resolve(ctx context.Context, id string) (*models.TitleDetail, error) {
	switch Classify(id) {
	case KindCustomSeries:
		series, err := s.series.Get(ctx, id)
		if err == nil {
			return detailFromSeries(series), nil
		}
		if !errors.Is(err, &apperrors.ErrNotFound{}) {
			return nil, err
		}
		// Defensive: a "series"-tagged id may have been mis-generated for a
		// movie record.
		movie, merr := s.movies.Get(ctx, id)
		if merr == nil {
			return detailFromMovie(movie), nil
		}
		if !errors.Is(merr, &apperrors.ErrNotFound{}) {
			return nil, merr
		}
		if ext, ok := externalID(id); ok {
			return s.resolveExternal(ctx, ext)
		}
		return nil, apperrors.NewNotFoundError("title", id)

	case KindCustomMovie:
		movie, err := s.movies.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return detailFromMovie(movie), nil

	default:
		return s.resolveExternal(ctx, id)
	}
}

// Recommendations returns provider recommendations for an external title.
// Best-effort: failures degrade to an empty list so the primary detail
// still renders, and custom titles have none by definition.
func (s *Service) Recommendations(ctx context.Context, id string) ([]models.ExternalTitle, error) {
	if Classify(id) != KindExternal {
		return []models.ExternalTitle{}, nil
	}

	titles, err := s.metadata.GetRecommendations(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("recommendations fetch failed, degrading to empty list")
		return []models.ExternalTitle{}, nil
	}
	return titles, nil
}

// MovieDownloads resolves the download links for a movie id. Custom ids
// consult the customMovies collection first and fall through to the
// provider-keyed documents on a miss, matching the id discipline the
// frontend relies on.
func (s *Service) MovieDownloads(ctx context.Context, id string) (*models.MovieDownload, error) {
	if Classify(id) != KindExternal {
		movie, err := s.movies.Get(ctx, id)
		if err == nil {
			return &models.MovieDownload{
				MovieID: models.TitleID(movie.ID),
				Title:   movie.Title,
				Links:   movie.Links,
			}, nil
		}
		if !errors.Is(err, &apperrors.ErrNotFound{}) {
			return nil, err
		}
	}

	return s.movieDownloads.Get(ctx, id)
}

// SeriesDownloads resolves the episode list for a series id, consulting the
// customSeries collection first for custom ids.
func (s *Service) SeriesDownloads(ctx context.Context, id string) (*models.SeriesDownload, error) {
	if Classify(id) != KindExternal {
		series, err := s.series.Get(ctx, id)
		if err == nil {
			return &models.SeriesDownload{
				SeriesID: models.TitleID(series.ID),
				Title:    series.Title,
				Episodes: series.Episodes,
			}, nil
		}
		if !errors.Is(err, &apperrors.ErrNotFound{}) {
			return nil, err
		}
	}

	return s.seriesDownloads.Get(ctx, id)
}

func (s *Service) resolveExternal(ctx context.Context, id string) (*models.TitleDetail, error) {
	detail, err := s.metadata.GetMovieDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	titleID := models.TitleID(strconv.Itoa(detail.ID))
	return &models.TitleDetail{
		Kind:         models.KindExternal,
		ID:           titleID,
		Title:        detail.Title,
		Overview:     detail.Overview,
		ReleaseDate:  detail.ReleaseDate,
		PosterPath:   detail.PosterPath,
		BackdropPath: detail.BackdropPath,
		VoteAverage:  detail.VoteAverage,
		Runtime:      detail.Runtime,
		Budget:       detail.Budget,
		Tagline:      detail.Tagline,
		Status:       detail.Status,
		Genres:       detail.Genres,
		VoteCount:    detail.VoteCount,
		Downloads:    &models.DownloadsRef{Type: "movie", ID: titleID},
	}, nil
}

func detailFromMovie(movie *models.CustomMovie) *models.TitleDetail {
	id := models.TitleID(movie.ID)
	return &models.TitleDetail{
		Kind:         models.KindCustomMovie,
		ID:           id,
		Title:        movie.Title,
		Overview:     movie.Overview,
		ReleaseDate:  movie.ReleaseDate,
		PosterPath:   movie.PosterPath,
		BackdropPath: movie.BackdropPath,
		VoteAverage:  movie.VoteAverage,
		IsCustom:     true,
		Downloads:    &models.DownloadsRef{Type: "movie", ID: id},
	}
}

func detailFromSeries(series *models.CustomSeries) *models.TitleDetail {
	id := models.TitleID(series.ID)
	return &models.TitleDetail{
		Kind:         models.KindCustomSeries,
		ID:           id,
		Title:        series.Title,
		Overview:     series.Overview,
		ReleaseDate:  series.ReleaseDate,
		PosterPath:   series.PosterPath,
		BackdropPath: series.BackdropPath,
		VoteAverage:  series.VoteAverage,
		TotalSeasons: series.TotalSeasons,
		IsCustom:     true,
		IsSeries:     true,
		Downloads:    &models.DownloadsRef{Type: "series", ID: id},
	}
}
