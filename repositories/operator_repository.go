package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

var ErrOperatorNotFound = errors.New("operator not found")

type OperatorRepository interface {
	GetByProfileID(ctx context.Context, exec SQLExecutor, profileID string) (*models.Operator, error)
	IncrementTotalMatches(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresOperatorRepository struct {
	db *sql.DB
}

func NewPostgresOperatorRepository(db *sql.DB) OperatorRepository {
	return &postgresOperatorRepository{db: db}
}

func (r *postgresOperatorRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresOperatorRepository) GetByProfileID(ctx context.Context, exec SQLExecutor, profileID string) (*models.Operator, error) {
	query := `SELECT id, profile_id, total_matches, created_at FROM operators WHERE profile_id = $1`

	op := &models.Operator{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, profileID).Scan(
		&op.ID,
		&op.ProfileID,
		&op.TotalMatches,
		&op.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator for profile %s: %w", profileID, err)
	}
	return op, nil
}

func (r *postgresOperatorRepository) IncrementTotalMatches(ctx context.Context, exec SQLExecutor, id string) error {
	query := `UPDATE operators SET total_matches = total_matches + 1 WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment total matches for operator %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrOperatorNotFound)
}
