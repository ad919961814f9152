package models

import "time"

type MatchStatus string

const (
	MatchStatusUpcoming   MatchStatus = "upcoming"
	MatchStatusFull       MatchStatus = "full"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

type Match struct {
	ID              string      `json:"id"`
	OperatorID      string      `json:"operator_id"`
	Title           string      `json:"title"`
	StartsAt        time.Time   `json:"starts_at"`
	DurationMinutes int         `json:"duration_minutes"`
	VenueName       string      `json:"venue_name"`
	City            string      `json:"city"`
	Capacity        int         `json:"capacity"`
	RegisteredCount int         `json:"registered_count"`
	Status          MatchStatus `json:"status"`
	ImageKey        *string     `json:"-"`
	ImageURL        *string     `json:"image_url,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type Operator struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	TotalMatches int       `json:"total_matches"`
	CreatedAt    time.Time `json:"created_at"`
}
