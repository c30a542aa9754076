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

// CustomSeriesStore owns the customSeries collection.
type CustomSeriesStore struct {
	db *sql.DB
}

func NewCustomSeriesStore(db *sql.DB) *CustomSeriesStore {
	return &CustomSeriesStore{db: db}
}

// Create validates the record, generates its identifier and persists it.
// Every episode needs a name and at least one link that survives url
// filtering.
func (s *CustomSeriesStore) Create(ctx context.Context, series *models.CustomSeries) (string, error) {
	if series.Title == "" || series.Overview == "" || series.ReleaseDate == "" || series.PosterPath == "" {
		return "", apperrors.NewValidationError("missing required fields: title, overview, releaseDate, posterUrl, episodes")
	}
	if len(series.Episodes) == 0 {
		return "", apperrors.NewValidationError("at least one episode is required")
	}

	episodes, err := filterEpisodes(series.Episodes)
	if err != nil {
		return "", err
	}
	series.Episodes = episodes

	if series.TotalSeasons == 0 {
		series.TotalSeasons = 1
	}

	now := time.Now().UnixMilli()
	series.ID = newDocumentID(CustomSeriesPrefix)
	series.IsCustom = true
	series.CreatedAt = now
	series.UpdatedAt = now

	doc, err := json.Marshal(series)
	if err != nil {
		return "", fmt.Errorf("failed to marshal custom series: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO custom_series (id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, series.ID, doc, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert custom series: %w", err)
	}

	return series.ID, nil
}

// Get retrieves a custom series by its identifier.
func (s *CustomSeriesStore) Get(ctx context.Context, id string) (*models.CustomSeries, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM custom_series WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("custom series", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query custom series: %w", err)
	}

	series := &models.CustomSeries{}
	if err := json.Unmarshal(doc, series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal custom series: %w", err)
	}
	return series, nil
}

// List returns a snapshot of the whole collection.
func (s *CustomSeriesStore) List(ctx context.Context) ([]*models.CustomSeries, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM custom_series`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom series: %w", err)
	}
	defer rows.Close()

	list := []*models.CustomSeries{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan custom series: %w", err)
		}
		series := &models.CustomSeries{}
		if err := json.Unmarshal(doc, series); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom series: %w", err)
		}
		list = append(list, series)
	}

	return list, rows.Err()
}

// Update applies a merge-write by id. An episodes field in the patch is
// re-validated the same way Create validates it. Never upserts.
func (s *CustomSeriesStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if raw, ok := fields["episodes"]; ok {
		data, err := json.Marshal(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid episodes payload")
		}
		var episodes []models.Episode
		if err := json.Unmarshal(data, &episodes); err != nil {
			return apperrors.NewValidationError("invalid episodes payload")
		}
		filtered, err := filterEpisodes(episodes)
		if err != nil {
			return err
		}
		fields["episodes"] = filtered
	}

	now := time.Now().UnixMilli()
	delete(fields, "id")
	fields["updatedAt"] = now

	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal update patch: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE custom_series
		SET data = data || $2::jsonb, updated_at = $3
		WHERE id = $1
	`, id, patch, now)
	if err != nil {
		return fmt.Errorf("failed to update custom series: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("custom series", id)
	}
	return nil
}

// Delete removes a custom series. Idempotent.
func (s *CustomSeriesStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM custom_series WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete custom series: %w", err)
	}
	return nil
}

// filterEpisodes applies link filtering to each episode and rejects any
// episode left without a name or a usable link.
func filterEpisodes(episodes []models.Episode) ([]models.Episode, error) {
	if len(episodes) == 0 {
		return nil, apperrors.NewValidationError("at least one episode is required")
	}
	out := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.EpisodeName == "" {
			return nil, apperrors.NewValidationError("episode %d is missing a name", ep.EpisodeNumber)
		}
		ep.Links = models.FilterLinks(ep.Links)
		if len(ep.Links) == 0 {
			return nil, apperrors.NewValidationError("episode %d has no download link with a url", ep.EpisodeNumber)
		}
		out = append(out, ep)
	}
	return out, nil
}
