package gamification

import (
	"math"

	"github.com/Dosada05/footmatch/models"
)

type Badge struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Tier     string `yaml:"tier"`
	Icon     string `yaml:"icon"`
	Target   int    `yaml:"target"`
	Metric   string `yaml:"metric"`
}

type BadgeContext struct {
	Career        models.CareerStats
	CurrentStreak int
	BestStreak    int
	CitiesPlayed  int
}

var metrics = map[string]func(BadgeContext) int{
	"total_matches":      func(c BadgeContext) int { return c.Career.TotalMatches },
	"total_goals":        func(c BadgeContext) int { return c.Career.TotalGoals },
	"total_assists":      func(c BadgeContext) int { return c.Career.TotalAssists },
	"total_mvp":          func(c BadgeContext) int { return c.Career.TotalMVP },
	"attendance_pct":     func(c BadgeContext) int { return int(math.Round(c.Career.AttendanceRate * 100)) },
	"current_streak":     func(c BadgeContext) int { return c.CurrentStreak },
	"best_streak":        func(c BadgeContext) int { return c.BestStreak },
	"cities_played":      func(c BadgeContext) int { return c.CitiesPlayed },
	"matches_in_one_day": func(c BadgeContext) int { return c.Career.MaxMatchesInDay },
	"distinct_operators": func(c BadgeContext) int { return c.Career.DistinctOperators },
}

func (b Badge) Value(ctx BadgeContext) int {
	fn, ok := metrics[b.Metric]
	if !ok {
		return 0
	}
	return fn(ctx)
}

type BadgeEvaluation struct {
	Progress []models.BadgeProgress
	Unlocked []Badge
}

// EvaluateBadges computes progress for every badge not yet unlocked and the
// ones that reach their target now.
func (r *Rules) EvaluateBadges(userID string, ctx BadgeContext, unlocked map[string]bool) BadgeEvaluation {
	var out BadgeEvaluation
	for _, b := range r.Badges {
		if unlocked[b.ID] {
			continue
		}
		value := b.Value(ctx)
		out.Progress = append(out.Progress, models.BadgeProgress{
			UserID:  userID,
			BadgeID: b.ID,
			Current: min(value, b.Target),
			Target:  b.Target,
		})
		if value >= b.Target {
			out.Unlocked = append(out.Unlocked, b)
		}
	}
	return out
}
