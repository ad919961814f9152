package scheduler

import (
	"context"
	"time"
)

const matchStatusJobTimeout = 30 * time.Second

type MatchStarter interface {
	StartDueMatches(ctx context.Context) (int, error)
}

// RegisterMatchStatusJob moves matches whose kickoff has passed to
// in_progress every interval.
func RegisterMatchStatusJob(s *Service, starter MatchStarter, interval time.Duration) error {
	_, err := s.AddIntervalJob("match_status", interval, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, matchStatusJobTimeout)
		defer cancel()
		_, err := starter.StartDueMatches(ctx)
		return err
	})
	return err
}
