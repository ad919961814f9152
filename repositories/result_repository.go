package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

var (
	ErrResultNotFound = errors.New("match result not found")
	ErrResultExists   = errors.New("match result already exists")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	ExistsForMatch(ctx context.Context, exec SQLExecutor, matchID string) (bool, error)
	GetByMatchID(ctx context.Context, exec SQLExecutor, matchID string) (*models.MatchResult, error)
	SetReportKey(ctx context.Context, exec SQLExecutor, resultID, key string) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results
			(match_id, operator_id, score_team_a, score_team_b, duration_minutes, match_quality, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, submitted_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		result.MatchID,
		result.OperatorID,
		result.ScoreTeamA,
		result.ScoreTeamB,
		result.DurationMinutes,
		result.MatchQuality,
		result.Notes,
	).Scan(&result.ID, &result.SubmittedAt, &result.UpdatedAt)

	return r.handleResultError(err)
}

func (r *postgresResultRepository) ExistsForMatch(ctx context.Context, exec SQLExecutor, matchID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM match_results WHERE match_id = $1)`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, matchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check result for match %s: %w", matchID, err)
	}
	return exists, nil
}

func (r *postgresResultRepository) GetByMatchID(ctx context.Context, exec SQLExecutor, matchID string) (*models.MatchResult, error) {
	query := `
		SELECT id, match_id, operator_id, score_team_a, score_team_b, duration_minutes,
		       match_quality, notes, report_key, submitted_at, updated_at
		FROM match_results
		WHERE match_id = $1`

	res := &models.MatchResult{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, matchID).Scan(
		&res.ID,
		&res.MatchID,
		&res.OperatorID,
		&res.ScoreTeamA,
		&res.ScoreTeamB,
		&res.DurationMinutes,
		&res.MatchQuality,
		&res.Notes,
		&res.ReportKey,
		&res.SubmittedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result for match %s: %w", matchID, err)
	}
	return res, nil
}

func (r *postgresResultRepository) SetReportKey(ctx context.Context, exec SQLExecutor, resultID, key string) error {
	query := `UPDATE match_results SET report_key = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, key, resultID)
	if err != nil {
		return fmt.Errorf("failed to set report key for result %s: %w", resultID, err)
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint := pqErrorCode(err)
	switch {
	case code == pqUniqueViolation && constraint == "match_results_match_id_key":
		return ErrResultExists
	case code == pqForeignKeyViolation:
		return fmt.Errorf("match result references missing row (%s): %w", constraint, err)
	}
	return fmt.Errorf("failed to create match result: %w", err)
}
