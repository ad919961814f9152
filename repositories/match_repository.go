package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/footmatch/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error
	// StartDue moves upcoming and full matches whose kickoff is at or before
	// now to in_progress and returns their ids.
	StartDue(ctx context.Context, now time.Time) ([]string, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, operator_id, title, starts_at, duration_minutes, venue_name, city,
		capacity, registered_count, status, image_key, created_at, updated_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.get(ctx, exec, query, id)
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return r.get(ctx, exec, query, id)
}

func (r *postgresMatchRepository) get(ctx context.Context, exec SQLExecutor, query, id string) (*models.Match, error) {
	m := &models.Match{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.OperatorID,
		&m.Title,
		&m.StartsAt,
		&m.DurationMinutes,
		&m.VenueName,
		&m.City,
		&m.Capacity,
		&m.RegisteredCount,
		&m.Status,
		&m.ImageKey,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) StartDue(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE status IN ($2, $3) AND starts_at <= $4
		RETURNING id`

	rows, err := r.db.QueryContext(ctx, query,
		models.MatchStatusInProgress,
		models.MatchStatusUpcoming,
		models.MatchStatusFull,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start due matches: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan started match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
