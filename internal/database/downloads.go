package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/moviemex/moviemex/internal/apperrors"
	"github.com/moviemex/moviemex/internal/models"
)

// MovieDownloadStore owns the movies collection: admin-pushed download-link
// documents keyed by the provider's movie id.
type MovieDownloadStore struct {
	db *sql.DB
}

func NewMovieDownloadStore(db *sql.DB) *MovieDownloadStore {
	return &MovieDownloadStore{db: db}
}

// Set writes or merge-updates the link document for a provider movie id.
// Links with an empty url are filtered out before persistence.
func (s *MovieDownloadStore) Set(ctx context.Context, download *models.MovieDownload) error {
	if download.MovieID == "" || download.Title == "" {
		return apperrors.NewValidationError("missing required fields: movieId, title, links")
	}
	download.Links = models.FilterLinks(download.Links)
	if len(download.Links) == 0 {
		return apperrors.NewValidationError("at least one download link with a url is required")
	}

	now := time.Now().UnixMilli()
	download.CreatedAt = now
	download.UpdatedAt = now

	doc, err := json.Marshal(download)
	if err != nil {
		return fmt.Errorf("failed to marshal movie downloads: %w", err)
	}

	// Merge-write keeps any extra fields an earlier document carried, and
	// preserves the original createdAt.
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO movie_downloads (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = movie_downloads.data || EXCLUDED.data
				|| jsonb_build_object('createdAt', movie_downloads.data->'createdAt'),
			updated_at = EXCLUDED.updated_at
	`, string(download.MovieID), doc, now)
	if err != nil {
		return fmt.Errorf("failed to upsert movie downloads: %w", err)
	}
	return nil
}

// Get retrieves the link document for a provider movie id.
func (s *MovieDownloadStore) Get(ctx context.Context, id string) (*models.MovieDownload, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM movie_downloads WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("movie downloads", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie downloads: %w", err)
	}

	download := &models.MovieDownload{}
	if err := json.Unmarshal(doc, download); err != nil {
		return nil, fmt.Errorf("failed to unmarshal movie downloads: %w", err)
	}
	return download, nil
}

// Delete removes the link document. Idempotent.
func (s *MovieDownloadStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM movie_downloads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete movie downloads: %w", err)
	}
	return nil
}

// SeriesDownloadStore owns the series collection: admin-pushed episode-link
// documents keyed by the provider's series id.
type SeriesDownloadStore struct {
	db *sql.DB
}

func NewSeriesDownloadStore(db *sql.DB) *SeriesDownloadStore {
	return &SeriesDownloadStore{db: db}
}

// Set writes or merge-updates the episode document for a provider series id.
func (s *SeriesDownloadStore) Set(ctx context.Context, download *models.SeriesDownload) error {
	if download.SeriesID == "" || download.Title == "" {
		return apperrors.NewValidationError("missing required fields: seriesId, title, episodes")
	}
	episodes, err := filterEpisodes(download.Episodes)
	if err != nil {
		return err
	}
	download.Episodes = episodes

	now := time.Now().UnixMilli()
	download.CreatedAt = now
	download.UpdatedAt = now

	doc, err := json.Marshal(download)
	if err != nil {
		return fmt.Errorf("failed to marshal series downloads: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO series_downloads (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			data = series_downloads.data || EXCLUDED.data
				|| jsonb_build_object('createdAt', series_downloads.data->'createdAt'),
			updated_at = EXCLUDED.updated_at
	`, string(download.SeriesID), doc, now)
	if err != nil {
		return fmt.Errorf("failed to upsert series downloads: %w", err)
	}
	return nil
}

// Get retrieves the episode document for a provider series id.
func (s *SeriesDownloadStore) Get(ctx context.Context, id string) (*models.SeriesDownload, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM series_downloads WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("series downloads", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query series downloads: %w", err)
	}

	download := &models.SeriesDownload{}
	if err := json.Unmarshal(doc, download); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series downloads: %w", err)
	}
	return download, nil
}

// Delete removes the episode document. Idempotent.
func (s *SeriesDownloadStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM series_downloads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete series downloads: %w", err)
	}
	return nil
}
