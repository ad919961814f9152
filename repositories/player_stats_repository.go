package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

var ErrPlayerStatsConflict = errors.New("player stats conflict")

const playerStatColumns = 10

type PlayerStatsRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, stats []models.MatchPlayerStat) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID string) ([]models.MatchPlayerStat, error)
	CareerStats(ctx context.Context, exec SQLExecutor, userID string) (*models.CareerStats, error)
}

type postgresPlayerStatsRepository struct {
	db *sql.DB
}

func NewPostgresPlayerStatsRepository(db *sql.DB) PlayerStatsRepository {
	return &postgresPlayerStatsRepository{db: db}
}

func (r *postgresPlayerStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch writes all rows in a single INSERT so a bad row rejects the set.
func (r *postgresPlayerStatsRepository) CreateBatch(ctx context.Context, exec SQLExecutor, stats []models.MatchPlayerStat) error {
	if len(stats) == 0 {
		return nil
	}

	query := `
		INSERT INTO match_player_stats
			(match_id, result_id, user_id, team, goals, assists, attended, mvp, yellow_card, red_card)
		VALUES ` + valuesPlaceholders(len(stats), playerStatColumns)

	args := make([]interface{}, 0, len(stats)*playerStatColumns)
	for _, s := range stats {
		args = append(args, s.MatchID, s.ResultID, s.UserID, s.Team, s.Goals, s.Assists, s.Attended, s.MVP, s.YellowCard, s.RedCard)
	}

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, args...); err != nil {
		code, constraint := pqErrorCode(err)
		if code == pqUniqueViolation || code == pqCheckViolation {
			return fmt.Errorf("%w: %s", ErrPlayerStatsConflict, constraint)
		}
		return fmt.Errorf("failed to insert %d player stats: %w", len(stats), err)
	}
	return nil
}

func (r *postgresPlayerStatsRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID string) ([]models.MatchPlayerStat, error) {
	query := `
		SELECT id, match_id, result_id, user_id, team, goals, assists, attended, mvp, yellow_card, red_card
		FROM match_player_stats
		WHERE match_id = $1
		ORDER BY team NULLS LAST, goals DESC, user_id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player stats for match %s: %w", matchID, err)
	}
	defer rows.Close()

	stats := make([]models.MatchPlayerStat, 0)
	for rows.Next() {
		var s models.MatchPlayerStat
		if err := rows.Scan(&s.ID, &s.MatchID, &s.ResultID, &s.UserID, &s.Team, &s.Goals, &s.Assists,
			&s.Attended, &s.MVP, &s.YellowCard, &s.RedCard); err != nil {
			return nil, fmt.Errorf("failed to scan player stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *postgresPlayerStatsRepository) CareerStats(ctx context.Context, exec SQLExecutor, userID string) (*models.CareerStats, error) {
	executor := r.getExecutor(exec)

	totalsQuery := `
		SELECT COUNT(*) FILTER (WHERE s.attended),
		       COALESCE(SUM(s.goals), 0),
		       COALESCE(SUM(s.assists), 0),
		       COUNT(*) FILTER (WHERE s.mvp),
		       COUNT(*),
		       COUNT(DISTINCT m.operator_id) FILTER (WHERE s.attended)
		FROM match_player_stats s
		JOIN matches m ON m.id = s.match_id
		WHERE s.user_id = $1`

	var cs models.CareerStats
	var registered int
	err := executor.QueryRowContext(ctx, totalsQuery, userID).Scan(
		&cs.TotalMatches,
		&cs.TotalGoals,
		&cs.TotalAssists,
		&cs.TotalMVP,
		&registered,
		&cs.DistinctOperators,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate career stats for %s: %w", userID, err)
	}
	if registered > 0 {
		cs.AttendanceRate = float64(cs.TotalMatches) / float64(registered)
	}

	perDayQuery := `
		SELECT COALESCE(MAX(day_count), 0) FROM (
			SELECT COUNT(*) AS day_count
			FROM match_player_stats s
			JOIN matches m ON m.id = s.match_id
			WHERE s.user_id = $1 AND s.attended
			GROUP BY (m.starts_at AT TIME ZONE 'UTC')::date
		) per_day`
	if err := executor.QueryRowContext(ctx, perDayQuery, userID).Scan(&cs.MaxMatchesInDay); err != nil {
		return nil, fmt.Errorf("failed to count matches per day for %s: %w", userID, err)
	}
	return &cs, nil
}
