package models

import "time"

type UserRole string

const (
	RolePlayer   UserRole = "player"
	RoleOperator UserRole = "operator"
	RoleAdmin    UserRole = "admin"
)

type Profile struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	OriginCountry *string   `json:"origin_country,omitempty"`
	FavoriteClub  *string   `json:"favorite_club,omitempty"`
	Role          UserRole  `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
