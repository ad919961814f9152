package gamification

import (
	"fmt"
	"time"
)

// ISOWeek formats t as "2026-W07".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart is Monday 00:00 of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

func parseISOWeek(key string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO week %q: %w", key, err)
	}
	// Jan 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return WeekStart(jan4).AddDate(0, 0, (week-1)*7), nil
}

// IsConsecutiveWeek reports whether curr is the ISO week right after prev.
func IsConsecutiveWeek(prev, curr string) bool {
	p, err := parseISOWeek(prev)
	if err != nil {
		return false
	}
	c, err := parseISOWeek(curr)
	if err != nil {
		return false
	}
	return c.Sub(p) == 7*24*time.Hour
}

// NextStreak returns the streak after a match played in matchWeek.
func NextStreak(lastWeek *string, current int, matchWeek string) int {
	switch {
	case lastWeek == nil || *lastWeek == "":
		return 1
	case *lastWeek == matchWeek:
		return max(current, 1)
	case IsConsecutiveWeek(*lastWeek, matchWeek):
		return current + 1
	default:
		return 1
	}
}
