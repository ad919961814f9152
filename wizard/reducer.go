package wizard

import (
	"errors"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

const (
	MaxScore    = 99
	MinDuration = 1
	MaxDuration = 480
)

var (
	ErrUnknownPlayer  = errors.New("player is not part of this draft")
	ErrPlayerAbsent   = errors.New("player is marked absent")
	ErrInvalidTeam    = errors.New("team must be A or B")
	ErrInvalidQuality = errors.New("match quality must be excellent, good, average or poor")
)

// Action is an operator intent. Every mutation of a Draft goes through Reduce.
type Action interface {
	stage() Stage
}

type AssignTeam struct {
	UserID string
	Team   models.Team
}

type MarkAbsent struct {
	UserID string
}

type SetScore struct {
	Team  models.Team
	Score int
}

type SetDuration struct {
	Minutes int
}

type SetQuality struct {
	Quality models.MatchQuality
}

type SetNotes struct {
	Notes string
}

type SetGoals struct {
	UserID string
	Goals  int
}

type AdjustGoals struct {
	UserID string
	Delta  int
}

type SetAssists struct {
	UserID  string
	Assists int
}

type AdjustAssists struct {
	UserID string
	Delta  int
}

type ToggleYellowCard struct {
	UserID string
}

type ToggleRedCard struct {
	UserID string
}

type SetMVP struct {
	UserID string
	MVP    bool
}

func (AssignTeam) stage() Stage       { return StageRoster }
func (MarkAbsent) stage() Stage       { return StageRoster }
func (SetScore) stage() Stage         { return StageOutcome }
func (SetDuration) stage() Stage      { return StageOutcome }
func (SetQuality) stage() Stage       { return StageOutcome }
func (SetNotes) stage() Stage         { return StageOutcome }
func (SetGoals) stage() Stage         { return StageStats }
func (AdjustGoals) stage() Stage      { return StageStats }
func (SetAssists) stage() Stage       { return StageStats }
func (AdjustAssists) stage() Stage    { return StageStats }
func (ToggleYellowCard) stage() Stage { return StageStats }
func (ToggleRedCard) stage() Stage    { return StageStats }
func (SetMVP) stage() Stage           { return StageStats }

// Reduce applies a to d in place. On error d is left untouched.
func Reduce(d *Draft, a Action) error {
	switch a := a.(type) {
	case AssignTeam:
		if !a.Team.Valid() {
			return ErrInvalidTeam
		}
		i := d.indexOf(a.UserID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, a.UserID)
		}
		d.Players[i].Team = a.Team
		d.Players[i].Attended = true

	case MarkAbsent:
		i := d.indexOf(a.UserID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, a.UserID)
		}
		p := &d.Players[i]
		p.Team = models.TeamNone
		p.Attended = false
		p.Goals, p.Assists = 0, 0
		p.MVP, p.YellowCard, p.RedCard = false, false, false

	case SetScore:
		score := clamp(a.Score, 0, MaxScore)
		switch a.Team {
		case models.TeamA:
			d.ScoreTeamA = score
		case models.TeamB:
			d.ScoreTeamB = score
		default:
			return ErrInvalidTeam
		}

	case SetDuration:
		d.DurationMinutes = clamp(a.Minutes, MinDuration, MaxDuration)

	case SetQuality:
		if !a.Quality.Valid() {
			return ErrInvalidQuality
		}
		d.MatchQuality = a.Quality

	case SetNotes:
		d.Notes = a.Notes

	case SetGoals:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.Goals = max(a.Goals, 0) })
	case AdjustGoals:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.Goals = max(p.Goals+a.Delta, 0) })
	case SetAssists:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.Assists = max(a.Assists, 0) })
	case AdjustAssists:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.Assists = max(p.Assists+a.Delta, 0) })
	case ToggleYellowCard:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.YellowCard = !p.YellowCard })
	case ToggleRedCard:
		return d.updateAttending(a.UserID, func(p *PlayerStatsDraft) { p.RedCard = !p.RedCard })

	case SetMVP:
		i := d.indexOf(a.UserID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, a.UserID)
		}
		if !a.MVP {
			d.Players[i].MVP = false
			return nil
		}
		if !d.Players[i].Attended {
			return fmt.Errorf("%w: %s", ErrPlayerAbsent, a.UserID)
		}
		for j := range d.Players {
			d.Players[j].MVP = j == i
		}

	default:
		return fmt.Errorf("unsupported action %T", a)
	}
	return nil
}

func (d *Draft) updateAttending(userID string, fn func(p *PlayerStatsDraft)) error {
	i := d.indexOf(userID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, userID)
	}
	if !d.Players[i].Attended {
		return fmt.Errorf("%w: %s", ErrPlayerAbsent, userID)
	}
	fn(&d.Players[i])
	return nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
