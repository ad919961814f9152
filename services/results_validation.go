package services

import (
	"fmt"

	"github.com/Dosada05/footmatch/models"
	"github.com/google/uuid"
)

// validateSubmission checks the payload on its own, before any database
// access.
func validateSubmission(p models.SubmitResultsPayload) error {
	verr := &ValidationError{}

	if p.MatchID == "" {
		verr.add("match_id", "is required")
	} else if _, err := uuid.Parse(p.MatchID); err != nil {
		verr.add("match_id", "must be a valid UUID")
	}
	if p.OperatorID == "" {
		verr.add("operator_id", "is required")
	}
	if p.ScoreTeamA < 0 {
		verr.add("score_team_a", "must be zero or more")
	}
	if p.ScoreTeamB < 0 {
		verr.add("score_team_b", "must be zero or more")
	}
	if p.DurationMinutes < 1 {
		verr.add("duration_minutes", "must be at least 1")
	}
	if !p.MatchQuality.Valid() {
		verr.add("match_quality", "must be one of excellent, good, average, poor")
	}
	if len(p.PlayerStats) == 0 {
		verr.add("player_stats", "must list every confirmed player")
	}

	seen := make(map[string]bool, len(p.PlayerStats))
	var mvps, teamA, teamB int
	for i, ps := range p.PlayerStats {
		field := fmt.Sprintf("player_stats[%d]", i)
		if ps.UserID == "" {
			verr.add(field+".user_id", "is required")
		} else if seen[ps.UserID] {
			verr.add(field+".user_id", "is listed more than once")
		}
		seen[ps.UserID] = true

		if ps.Goals < 0 {
			verr.add(field+".goals", "must be zero or more")
		}
		if ps.Assists < 0 {
			verr.add(field+".assists", "must be zero or more")
		}

		if !ps.Attended {
			if ps.Team != nil || ps.Goals != 0 || ps.Assists != 0 || ps.MVP || ps.YellowCard || ps.RedCard {
				verr.add(field, "absent players cannot have a team or stats")
			}
			continue
		}

		switch {
		case ps.Team == nil || !ps.Team.Valid():
			verr.add(field+".team", "attending players must be in team A or B")
		case *ps.Team == models.TeamA:
			teamA++
		default:
			teamB++
		}
		if ps.MVP {
			mvps++
		}
	}

	if mvps > 1 {
		verr.add("player_stats", "at most one player can be MVP")
	}
	if len(p.PlayerStats) > 0 && (teamA == 0 || teamB == 0) {
		verr.add("teams", "both teams need at least one player")
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// checkRoster requires the submitted players to be exactly the confirmed
// registrations.
func checkRoster(p models.SubmitResultsPayload, regs []*models.Registration) error {
	confirmed := make(map[string]bool, len(regs))
	for _, r := range regs {
		confirmed[r.PlayerID] = true
	}

	verr := &ValidationError{}
	for i, ps := range p.PlayerStats {
		if !confirmed[ps.UserID] {
			verr.add(fmt.Sprintf("player_stats[%d].user_id", i), "is not a confirmed player of this match")
		}
		delete(confirmed, ps.UserID)
	}
	if len(confirmed) > 0 {
		verr.add("player_stats", fmt.Sprintf("%d confirmed players are missing", len(confirmed)))
	}
	if verr.empty() {
		return nil
	}
	return verr
}
