package wizard

import "github.com/Dosada05/footmatch/models"

type Stage int

const (
	StageRoster Stage = iota + 1
	StageOutcome
	StageStats
	StageConfirm
)

func (s Stage) String() string {
	switch s {
	case StageRoster:
		return "roster"
	case StageOutcome:
		return "outcome"
	case StageStats:
		return "stats"
	case StageConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

type transition struct {
	next  Stage
	back  Stage
	guard func(*Draft) bool
}

// Zero next/back means there is no transition in that direction.
var transitions = map[Stage]transition{
	StageRoster:  {next: StageOutcome, guard: CanProceedRoster},
	StageOutcome: {next: StageStats, back: StageRoster, guard: CanProceedOutcome},
	StageStats:   {next: StageConfirm, back: StageOutcome},
	StageConfirm: {back: StageStats},
}

// CanProceedRoster holds when every attending player sits in a team and
// neither team is empty.
func CanProceedRoster(d *Draft) bool {
	for _, p := range d.Players {
		if p.Attended && p.Team == models.TeamNone {
			return false
		}
	}
	return len(d.TeamA()) >= 1 && len(d.TeamB()) >= 1
}

func CanProceedOutcome(d *Draft) bool {
	return d.DurationMinutes >= MinDuration
}
