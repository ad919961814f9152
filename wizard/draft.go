// Package wizard holds the operator's in-memory results draft and the
// four-stage flow (roster, outcome, stats, confirm) that turns it into a
// single submission.
package wizard

import "github.com/Dosada05/footmatch/models"

type PlayerStatsDraft struct {
	UserID     string
	Profile    models.Profile // display only, never submitted
	Team       models.Team
	Attended   bool
	Goals      int
	Assists    int
	MVP        bool
	YellowCard bool
	RedCard    bool
}

type Draft struct {
	MatchID         string
	OperatorID      string
	ScoreTeamA      int
	ScoreTeamB      int
	DurationMinutes int
	MatchQuality    models.MatchQuality
	Notes           string
	Players         []PlayerStatsDraft
}

// NewDraft seeds a draft from the match and its confirmed registrations.
// Player order follows the registration list.
func NewDraft(match *models.Match, operatorID string, registrations []*models.Registration) *Draft {
	d := &Draft{
		MatchID:         match.ID,
		OperatorID:      operatorID,
		DurationMinutes: match.DurationMinutes,
		MatchQuality:    models.QualityGood,
		Players:         make([]PlayerStatsDraft, 0, len(registrations)),
	}
	for _, r := range registrations {
		if r == nil {
			continue
		}
		p := PlayerStatsDraft{UserID: r.PlayerID, Attended: true}
		if r.Profile != nil {
			p.Profile = *r.Profile
		}
		d.Players = append(d.Players, p)
	}
	return d
}

func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	c := *d
	c.Players = make([]PlayerStatsDraft, len(d.Players))
	copy(c.Players, d.Players)
	for i := range c.Players {
		c.Players[i].Profile.OriginCountry = cloneString(d.Players[i].Profile.OriginCountry)
		c.Players[i].Profile.FavoriteClub = cloneString(d.Players[i].Profile.FavoriteClub)
	}
	return &c
}

func (d *Draft) TeamA() []PlayerStatsDraft {
	return d.filter(func(p PlayerStatsDraft) bool { return p.Team == models.TeamA })
}

func (d *Draft) TeamB() []PlayerStatsDraft {
	return d.filter(func(p PlayerStatsDraft) bool { return p.Team == models.TeamB })
}

func (d *Draft) Absent() []PlayerStatsDraft {
	return d.filter(func(p PlayerStatsDraft) bool { return !p.Attended })
}

// MVP returns the player holding the MVP flag, or nil.
func (d *Draft) MVP() *PlayerStatsDraft {
	for i := range d.Players {
		if d.Players[i].MVP {
			p := d.Players[i]
			return &p
		}
	}
	return nil
}

func (d *Draft) indexOf(userID string) int {
	for i := range d.Players {
		if d.Players[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (d *Draft) filter(keep func(PlayerStatsDraft) bool) []PlayerStatsDraft {
	out := make([]PlayerStatsDraft, 0, len(d.Players))
	for _, p := range d.Players {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
