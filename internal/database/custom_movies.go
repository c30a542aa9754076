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

// CustomMovieStore owns the customMovies collection. Each record is a whole
// JSONB document keyed by its generated identifier; no other component
// mutates these rows.
type CustomMovieStore struct {
	db *sql.DB
}

func NewCustomMovieStore(db *sql.DB) *CustomMovieStore {
	return &CustomMovieStore{db: db}
}

// Create validates the record, generates its identifier and persists it.
// Links with an empty url are filtered out first; the remaining set must be
// non-empty.
func (s *CustomMovieStore) Create(ctx context.Context, movie *models.CustomMovie) (string, error) {
	if movie.Title == "" || movie.Overview == "" || movie.ReleaseDate == "" || movie.PosterPath == "" {
		return "", apperrors.NewValidationError("missing required fields: title, overview, releaseDate, posterUrl, links")
	}

	movie.Links = models.FilterLinks(movie.Links)
	if len(movie.Links) == 0 {
		return "", apperrors.NewValidationError("at least one download link with a url is required")
	}

	now := time.Now().UnixMilli()
	movie.ID = newDocumentID(CustomMoviePrefix)
	movie.IsCustom = true
	movie.CreatedAt = now
	movie.UpdatedAt = now

	doc, err := json.Marshal(movie)
	if err != nil {
		return "", fmt.Errorf("failed to marshal custom movie: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_movies (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, movie.ID, doc, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert custom movie: %w", err)
	}

	return movie.ID, nil
}

// Get retrieves a custom movie by its identifier.
func (s *CustomMovieStore) Get(ctx context.Context, id string) (*models.CustomMovie, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM custom_movies WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("custom movie", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query custom movie: %w", err)
	}

	movie := &models.CustomMovie{}
	if err := json.Unmarshal(doc, movie); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom movie: %w", err)
	}
	return movie, nil
}

// List returns a snapshot of the whole collection. Order is store-assigned
// and not significant to callers.
func (s *CustomMovieStore) List(ctx context.Context) ([]*models.CustomMovie, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM custom_movies`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom movies: %w", err)
	}
	defer rows.Close()

	movies := []*models.CustomMovie{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan custom movie: %w", err)
		}
		movie := &models.CustomMovie{}
		if err := json.Unmarshal(doc, movie); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom movie: %w", err)
		}
		movies = append(movies, movie)
	}

	return movies, rows.Err()
}

// Update applies a merge-write: fields present in the patch replace their
// document counterparts, everything else is preserved. Fails with not-found
// when the id is absent; it never upserts.
func (s *CustomMovieStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if links, ok := fields["links"]; ok {
		filtered, err := filterPatchLinks(links)
		if err != nil {
			return err
		}
		if len(filtered) == 0 {
			return apperrors.NewValidationError("at least one download link with a url is required")
		}
		fields["links"] = filtered
	}

	now := time.Now().UnixMilli()
	delete(fields, "id") // the identifier is immutable
	fields["updatedAt"] = now

	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal update patch: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE custom_movies
		SET data = data || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, id, patch, now)
	if err != nil {
		return fmt.Errorf("failed to update custom movie: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("custom movie", id)
	}
	return nil
}

// Delete removes a custom movie. Deleting an absent id is not an error.
func (s *CustomMovieStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM custom_movies WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete custom movie: %w", err)
	}
	return nil
}

// filterPatchLinks re-applies persistence-time link filtering to a link set
// arriving inside an untyped update patch.
func filterPatchLinks(raw interface{}) ([]models.DownloadLink, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid links payload")
	}
	var links []models.DownloadLink
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, apperrors.NewValidationError("invalid links payload")
	}
	return models.FilterLinks(links), nil
}
