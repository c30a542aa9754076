package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moviemex/moviemex/internal/models"
)

// MovieStore is the slice of the customMovies collection the catalog reads.
type MovieStore interface {
	Get(ctx context.Context, id string) (*models.CustomMovie, error)
	List(ctx context.Context) ([]*models.CustomMovie, error)
}

// SeriesStore is the slice of the customSeries collection the catalog reads.
type SeriesStore interface {
	Get(ctx context.Context, id string) (*models.CustomSeries, error)
	List(ctx context.Context) ([]*models.CustomSeries, error)
}

// MovieDownloadSource reads admin-pushed link documents keyed by provider
// movie id.
type MovieDownloadSource interface {
	Get(ctx context.Context, id string) (*models.MovieDownload, error)
}

// SeriesDownloadSource reads admin-pushed episode documents keyed by
// provider series id.
type SeriesDownloadSource interface {
	Get(ctx context.Context, id string) (*models.SeriesDownload, error)
}

// MetadataClient is the read-only external catalog surface the service
// consumes.
type MetadataClient interface {
	SearchMovies(ctx context.Context, query string, page int) (*models.ExternalPage, error)
	GetMovieDetail(ctx context.Context, id string) (*models.ExternalDetail, error)
	GetRecommendations(ctx context.Context, id string) ([]models.ExternalTitle, error)
}

// Service answers "what is this title, and where do its downloads live"
// across the external provider and the two curated collections. It holds no
// state of its own; every call is a pure request/response.
type Service struct {
	movies          MovieStore
	series          SeriesStore
	movieDownloads  MovieDownloadSource
	seriesDownloads SeriesDownloadSource
	metadata        MetadataClient
	log             zerolog.Logger
}

func NewService(
	movies MovieStore,
	series SeriesStore,
	movieDownloads MovieDownloadSource,
	seriesDownloads SeriesDownloadSource,
	metadata MetadataClient,
	log zerolog.Logger,
) *Service {
	return &Service{
		movies:          movies,
		series:          series,
		movieDownloads:  movieDownloads,
		seriesDownloads: seriesDownloads,
		metadata:        metadata,
		log:             log,
	}
}
