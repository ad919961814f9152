// Package gamification holds the XP, level, streak and badge rules applied
// when a match is completed.
package gamification

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	SourceMatchPlayed     = "match_played"
	SourceFirstMatchWeek  = "first_match_week"
	SourceSecondMatchWeek = "second_match_week"
	SourceStreakBonus     = "streak_bonus"
	SourceNewCity         = "new_city"
	SourceBadgeUnlock     = "badge_unlock"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

type LevelDef struct {
	Level int    `yaml:"level"`
	Name  string `yaml:"name"`
	XP    int    `yaml:"xp"`
}

type Rules struct {
	DailyXPCap     int            `yaml:"daily_xp_cap"`
	StreakBonusCap int            `yaml:"streak_bonus_cap"`
	XPSources      map[string]int `yaml:"xp_sources"`
	Levels         []LevelDef     `yaml:"levels"`
	Badges         []Badge        `yaml:"badges"`
}

var (
	defaultOnce  sync.Once
	defaultRules *Rules
	defaultErr   error
)

// Default returns the rules embedded in the binary.
func Default() (*Rules, error) {
	defaultOnce.Do(func() {
		defaultRules, defaultErr = ParseRules(defaultRulesYAML)
	})
	return defaultRules, defaultErr
}

func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse gamification rules: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	sort.Slice(r.Levels, func(i, j int) bool { return r.Levels[i].XP < r.Levels[j].XP })
	return &r, nil
}

func (r *Rules) validate() error {
	if r.DailyXPCap <= 0 {
		return errors.New("gamification rules: daily_xp_cap must be positive")
	}
	if len(r.Levels) == 0 {
		return errors.New("gamification rules: at least one level is required")
	}
	for _, key := range []string{SourceMatchPlayed, SourceFirstMatchWeek, SourceSecondMatchWeek, SourceStreakBonus, SourceNewCity, SourceBadgeUnlock} {
		if _, ok := r.XPSources[key]; !ok {
			return fmt.Errorf("gamification rules: missing xp source %q", key)
		}
	}
	for _, b := range r.Badges {
		if b.Name == "" {
			return fmt.Errorf("gamification rules: badge %q needs a name", b.ID)
		}
		if _, ok := metrics[b.Metric]; !ok {
			return fmt.Errorf("gamification rules: badge %q uses unknown metric %q", b.ID, b.Metric)
		}
		if b.Target <= 0 {
			return fmt.Errorf("gamification rules: badge %q needs a positive target", b.ID)
		}
	}
	return nil
}

func (r *Rules) XP(source string) int {
	return r.XPSources[source]
}

// CapXP limits amount to what is left of today's allowance.
func (r *Rules) CapXP(amount, xpToday int) int {
	remaining := max(0, r.DailyXPCap-xpToday)
	return max(0, min(amount, remaining))
}

func (r *Rules) StreakBonus(streak int) int {
	bonus := streak * r.XP(SourceStreakBonus)
	if r.StreakBonusCap > 0 {
		bonus = min(bonus, r.StreakBonusCap)
	}
	return bonus
}

type LevelInfo struct {
	Level           int
	Name            string
	CurrentLevelXP  int
	NextLevelXP     *int
	ProgressToLevel float64
}

func (r *Rules) ComputeLevel(totalXP int) LevelInfo {
	idx := 0
	for i, lvl := range r.Levels {
		if totalXP < lvl.XP {
			break
		}
		idx = i
	}
	current := r.Levels[idx]
	info := LevelInfo{
		Level:           current.Level,
		Name:            current.Name,
		CurrentLevelXP:  current.XP,
		ProgressToLevel: 1,
	}
	if idx+1 < len(r.Levels) {
		next := r.Levels[idx+1].XP
		info.NextLevelXP = &next
		if needed := next - current.XP; needed > 0 {
			info.ProgressToLevel = min(float64(totalXP-current.XP)/float64(needed), 1)
		}
	}
	return info
}
