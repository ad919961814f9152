package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/footmatch/models"
	"github.com/lib/pq"
)

var ErrGamificationNotFound = errors.New("player gamification row not found")

type GamificationRepository interface {
	Get(ctx context.Context, exec SQLExecutor, userID string) (*models.PlayerGamification, error)
	Upsert(ctx context.Context, exec SQLExecutor, g *models.PlayerGamification) error
	InsertXPTransaction(ctx context.Context, exec SQLExecutor, tx *models.XPTransaction) error
	CountSourceSince(ctx context.Context, exec SQLExecutor, userID, source string, since time.Time) (int, error)
	UnlockedBadgeIDs(ctx context.Context, exec SQLExecutor, userID string) (map[string]bool, error)
	UnlockBadge(ctx context.Context, exec SQLExecutor, badge *models.UserBadge) error
	UpsertBadgeProgress(ctx context.Context, exec SQLExecutor, progress []models.BadgeProgress) error
}

type postgresGamificationRepository struct {
	db *sql.DB
}

func NewPostgresGamificationRepository(db *sql.DB) GamificationRepository {
	return &postgresGamificationRepository{db: db}
}

func (r *postgresGamificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGamificationRepository) Get(ctx context.Context, exec SQLExecutor, userID string) (*models.PlayerGamification, error) {
	query := `
		SELECT user_id, total_xp, level, level_name, xp_today, xp_today_date,
		       current_streak, best_streak, last_match_week, cities_played
		FROM player_gamification
		WHERE user_id = $1
		FOR UPDATE`

	g := &models.PlayerGamification{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, userID).Scan(
		&g.UserID,
		&g.TotalXP,
		&g.Level,
		&g.LevelName,
		&g.XPToday,
		&g.XPTodayDate,
		&g.CurrentStreak,
		&g.BestStreak,
		&g.LastMatchWeek,
		pq.Array(&g.CitiesPlayed),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGamificationNotFound
		}
		return nil, fmt.Errorf("failed to get gamification for %s: %w", userID, err)
	}
	return g, nil
}

func (r *postgresGamificationRepository) Upsert(ctx context.Context, exec SQLExecutor, g *models.PlayerGamification) error {
	query := `
		INSERT INTO player_gamification
			(user_id, total_xp, level, level_name, xp_today, xp_today_date,
			 current_streak, best_streak, last_match_week, cities_played, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_xp = EXCLUDED.total_xp,
			level = EXCLUDED.level,
			level_name = EXCLUDED.level_name,
			xp_today = EXCLUDED.xp_today,
			xp_today_date = EXCLUDED.xp_today_date,
			current_streak = EXCLUDED.current_streak,
			best_streak = EXCLUDED.best_streak,
			last_match_week = EXCLUDED.last_match_week,
			cities_played = EXCLUDED.cities_played,
			updated_at = NOW()`

	cities := g.CitiesPlayed
	if cities == nil {
		cities = []string{}
	}
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		g.UserID,
		g.TotalXP,
		g.Level,
		g.LevelName,
		g.XPToday,
		g.XPTodayDate,
		g.CurrentStreak,
		g.BestStreak,
		g.LastMatchWeek,
		pq.Array(cities),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert gamification for %s: %w", g.UserID, err)
	}
	return nil
}

func (r *postgresGamificationRepository) InsertXPTransaction(ctx context.Context, exec SQLExecutor, tx *models.XPTransaction) error {
	metadata, err := marshalData(tx.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode xp metadata: %w", err)
	}
	query := `
		INSERT INTO xp_transactions (user_id, source, xp_amount, match_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err = r.getExecutor(exec).QueryRowContext(ctx, query, tx.UserID, tx.Source, tx.XPAmount, tx.MatchID, metadata).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert xp transaction for %s: %w", tx.UserID, err)
	}
	return nil
}

func (r *postgresGamificationRepository) CountSourceSince(ctx context.Context, exec SQLExecutor, userID, source string, since time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM xp_transactions WHERE user_id = $1 AND source = $2 AND created_at >= $3`
	if err := r.getExecutor(exec).QueryRowContext(ctx, query, userID, source, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s transactions for %s: %w", source, userID, err)
	}
	return n, nil
}

func (r *postgresGamificationRepository) UnlockedBadgeIDs(ctx context.Context, exec SQLExecutor, userID string) (map[string]bool, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges for %s: %w", userID, err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *postgresGamificationRepository) UnlockBadge(ctx context.Context, exec SQLExecutor, badge *models.UserBadge) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, category, tier)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, badge_id) DO NOTHING
		RETURNING unlocked_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, badge.UserID, badge.BadgeID, badge.Category, badge.Tier).
		Scan(&badge.UnlockedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to unlock badge %s for %s: %w", badge.BadgeID, badge.UserID, err)
	}
	return nil
}

func (r *postgresGamificationRepository) UpsertBadgeProgress(ctx context.Context, exec SQLExecutor, progress []models.BadgeProgress) error {
	if len(progress) == 0 {
		return nil
	}
	query := `INSERT INTO badge_progress (user_id, badge_id, current, target) VALUES ` +
		valuesPlaceholders(len(progress), 4) + `
		ON CONFLICT (user_id, badge_id) DO UPDATE SET
			current = EXCLUDED.current,
			target = EXCLUDED.target,
			updated_at = NOW()`

	args := make([]interface{}, 0, len(progress)*4)
	for _, p := range progress {
		args = append(args, p.UserID, p.BadgeID, p.Current, p.Target)
	}
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert badge progress: %w", err)
	}
	return nil
}
