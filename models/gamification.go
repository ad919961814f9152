package models

import "time"

type PlayerGamification struct {
	UserID        string   `json:"user_id"`
	TotalXP       int      `json:"total_xp"`
	Level         int      `json:"level"`
	LevelName     string   `json:"level_name"`
	XPToday       int      `json:"xp_today"`
	XPTodayDate   *string  `json:"xp_today_date,omitempty"`
	CurrentStreak int      `json:"current_streak"`
	BestStreak    int      `json:"best_streak"`
	LastMatchWeek *string  `json:"last_match_week,omitempty"`
	CitiesPlayed  []string `json:"cities_played"`
}

type XPTransaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Source    string            `json:"source"`
	XPAmount  int               `json:"xp_amount"`
	MatchID   *string           `json:"match_id,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// CareerStats aggregates match_player_stats rows for badge evaluation.
type CareerStats struct {
	TotalMatches      int
	TotalGoals        int
	TotalAssists      int
	TotalMVP          int
	AttendanceRate    float64
	MaxMatchesInDay   int
	DistinctOperators int
}

type BadgeProgress struct {
	UserID  string `json:"user_id"`
	BadgeID string `json:"badge_id"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
}

type UserBadge struct {
	UserID     string    `json:"user_id"`
	BadgeID    string    `json:"badge_id"`
	Category   string    `json:"category"`
	Tier       string    `json:"tier"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
