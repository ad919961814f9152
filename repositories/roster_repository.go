package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

type RegistrationRepository interface {
	// ListConfirmed returns confirmed registrations with their profiles, in
	// registration order.
	ListConfirmed(ctx context.Context, exec SQLExecutor, matchID string) ([]*models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) ListConfirmed(ctx context.Context, exec SQLExecutor, matchID string) ([]*models.Registration, error) {
	query := `
		SELECT r.id, r.match_id, r.player_id, r.status, r.created_at,
		       p.id, p.first_name, p.last_name, p.origin_country, p.favorite_club, p.role, p.created_at
		FROM match_registrations r
		JOIN profiles p ON p.id = r.player_id
		WHERE r.match_id = $1 AND r.status = $2
		ORDER BY r.created_at, r.id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, matchID, models.RegistrationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed registrations for match %s: %w", matchID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg := &models.Registration{Profile: &models.Profile{}}
		if err := rows.Scan(
			&reg.ID, &reg.MatchID, &reg.PlayerID, &reg.Status, &reg.CreatedAt,
			&reg.Profile.ID, &reg.Profile.FirstName, &reg.Profile.LastName,
			&reg.Profile.OriginCountry, &reg.Profile.FavoriteClub, &reg.Profile.Role, &reg.Profile.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}
	return regs, nil
}
