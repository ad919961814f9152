package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/footmatch/repositories"
)

// MatchStatusService moves matches whose kickoff has passed to in_progress.
type MatchStatusService struct {
	matches repositories.MatchRepository
	now     func() time.Time
	logger  *slog.Logger
}

func NewMatchStatusService(matches repositories.MatchRepository, logger *slog.Logger) *MatchStatusService {
	return &MatchStatusService{matches: matches, now: time.Now, logger: logger}
}

func (s *MatchStatusService) StartDueMatches(ctx context.Context) (int, error) {
	ids, err := s.matches.StartDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		s.logger.Info("matches kicked off", "count", len(ids), "match_ids", ids)
	}
	return len(ids), nil
}
