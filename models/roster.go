package models

import "time"

type RegistrationStatus string

const (
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCanceled  RegistrationStatus = "canceled"
)

type Registration struct {
	ID        string             `json:"id"`
	MatchID   string             `json:"match_id"`
	PlayerID  string             `json:"player_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`

	Profile *Profile `json:"profile,omitempty"`
}
