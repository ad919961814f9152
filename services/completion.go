package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/footmatch/models"
	"golang.org/x/sync/errgroup"
)

// CompletedMatch is what post-commit hooks receive once results are stored.
type CompletedMatch struct {
	Match         *models.Match
	Operator      *models.Operator
	Result        *models.MatchResult
	Registrations []*models.Registration
}

func (c *CompletedMatch) MVP() *models.Profile {
	for _, s := range c.Result.PlayerStats {
		if !s.MVP {
			continue
		}
		for _, reg := range c.Registrations {
			if reg.PlayerID == s.UserID {
				return reg.Profile
			}
		}
	}
	return nil
}

// CompletionHook is a best-effort side effect of a result submission. Its
// error is logged and never changes the submission outcome.
type CompletionHook interface {
	Name() string
	OnMatchCompleted(ctx context.Context, c *CompletedMatch) error
}

const completionHooksTimeout = 30 * time.Second

// runCompletionHooks runs every hook concurrently and waits for all of them.
// The request's cancellation does not stop them.
func runCompletionHooks(ctx context.Context, logger *slog.Logger, hooks []CompletionHook, c *CompletedMatch) {
	if len(hooks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionHooksTimeout)
	defer cancel()

	var g errgroup.Group
	for _, h := range hooks {
		g.Go(func() error {
			start := time.Now()
			if err := h.OnMatchCompleted(ctx, c); err != nil {
				logger.Error("completion hook failed", "hook", h.Name(), "match_id", c.Match.ID, "error", err)
				return nil
			}
			logger.Debug("completion hook done", "hook", h.Name(), "match_id", c.Match.ID, "took", time.Since(start))
			return nil
		})
	}
	_ = g.Wait()
}
