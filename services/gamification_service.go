package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/Dosada05/footmatch/gamification"
	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/repositories"
)

type GamificationService struct {
	tx            repositories.TxRunner
	gamification  repositories.GamificationRepository
	stats         repositories.PlayerStatsRepository
	notifications repositories.NotificationRepository
	rules         *gamification.Rules
	now           func() time.Time
	logger        *slog.Logger
}

func NewGamificationService(
	tx repositories.TxRunner,
	gamRepo repositories.GamificationRepository,
	statsRepo repositories.PlayerStatsRepository,
	notifRepo repositories.NotificationRepository,
	rules *gamification.Rules,
	logger *slog.Logger,
) *GamificationService {
	return &GamificationService{
		tx:            tx,
		gamification:  gamRepo,
		stats:         statsRepo,
		notifications: notifRepo,
		rules:         rules,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *GamificationService) Name() string { return "gamification" }

// OnMatchCompleted processes every attending player in its own transaction,
// so one failure does not undo the others.
func (s *GamificationService) OnMatchCompleted(ctx context.Context, c *CompletedMatch) error {
	var errs []error
	for _, st := range c.Result.PlayerStats {
		if !st.Attended {
			continue
		}
		if err := s.ProcessPlayer(ctx, c.Match, st.UserID); err != nil {
			s.logger.Error("gamification failed for player", "user_id", st.UserID, "match_id", c.Match.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// playerAward accumulates XP for one player under the daily cap.
type playerAward struct {
	g       *models.PlayerGamification
	matchID string
	pending []*models.XPTransaction
	rules   *gamification.Rules
}

func (a *playerAward) award(source string, amount int, metadata map[string]string) int {
	actual := a.rules.CapXP(amount, a.g.XPToday)
	if actual <= 0 {
		return 0
	}
	matchID := a.matchID
	a.pending = append(a.pending, &models.XPTransaction{
		UserID:   a.g.UserID,
		Source:   source,
		XPAmount: actual,
		MatchID:  &matchID,
		Metadata: metadata,
	})
	a.g.TotalXP += actual
	a.g.XPToday += actual
	return actual
}

func (s *GamificationService) ProcessPlayer(ctx context.Context, match *models.Match, userID string) error {
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		g, err := s.gamification.Get(ctx, exec, userID)
		if errors.Is(err, repositories.ErrGamificationNotFound) {
			first := s.rules.ComputeLevel(0)
			g = &models.PlayerGamification{UserID: userID, Level: first.Level, LevelName: first.Name}
		} else if err != nil {
			return err
		}
		previousLevel := g.Level

		today := s.now().UTC().Format(time.DateOnly)
		if g.XPTodayDate == nil || *g.XPTodayDate != today {
			g.XPToday = 0
		}
		g.XPTodayDate = &today

		aw := &playerAward{g: g, matchID: match.ID, rules: s.rules}
		// Each transaction is written immediately so the weekly count below
		// sees the match_played row.
		flush := func() error {
			for _, tx := range aw.pending {
				if err := s.gamification.InsertXPTransaction(ctx, exec, tx); err != nil {
					return err
				}
			}
			aw.pending = aw.pending[:0]
			return nil
		}

		aw.award(gamification.SourceMatchPlayed, s.rules.XP(gamification.SourceMatchPlayed), nil)
		if err := flush(); err != nil {
			return err
		}

		kickoff := match.StartsAt.UTC()
		played, err := s.gamification.CountSourceSince(ctx, exec, userID, gamification.SourceMatchPlayed, gamification.WeekStart(kickoff))
		if err != nil {
			return err
		}
		switch played {
		case 1:
			aw.award(gamification.SourceFirstMatchWeek, s.rules.XP(gamification.SourceFirstMatchWeek), nil)
		case 2:
			aw.award(gamification.SourceSecondMatchWeek, s.rules.XP(gamification.SourceSecondMatchWeek), nil)
		}

		if match.City != "" && !slices.Contains(g.CitiesPlayed, match.City) {
			aw.award(gamification.SourceNewCity, s.rules.XP(gamification.SourceNewCity), map[string]string{"city": match.City})
			g.CitiesPlayed = append(g.CitiesPlayed, match.City)
		}

		week := gamification.ISOWeek(kickoff)
		sameWeek := g.LastMatchWeek != nil && *g.LastMatchWeek == week
		g.CurrentStreak = gamification.NextStreak(g.LastMatchWeek, g.CurrentStreak, week)
		g.BestStreak = max(g.BestStreak, g.CurrentStreak)
		g.LastMatchWeek = &week
		if g.CurrentStreak > 1 && !sameWeek {
			aw.award(gamification.SourceStreakBonus, s.rules.StreakBonus(g.CurrentStreak),
				map[string]string{"streak": strconv.Itoa(g.CurrentStreak)})
		}

		notifications, err := s.evaluateBadges(ctx, exec, g, aw, match.ID)
		if err != nil {
			return err
		}
		if err := flush(); err != nil {
			return err
		}

		level := s.rules.ComputeLevel(g.TotalXP)
		g.Level, g.LevelName = level.Level, level.Name
		if g.Level > previousLevel {
			notifications = append(notifications, &models.Notification{
				UserID: userID,
				Type:   models.NotificationLevelUp,
				Title:  "Level up!",
				Body:   fmt.Sprintf("You reached level %d: %s!", g.Level, g.LevelName),
				Data:   map[string]string{"level": strconv.Itoa(g.Level), "level_name": g.LevelName},
			})
		}

		if err := s.gamification.Upsert(ctx, exec, g); err != nil {
			return err
		}
		return s.notifications.CreateBatch(ctx, exec, notifications)
	})
}

// evaluateBadges unlocks what the player's career now reaches. Badge XP is
// awarded after all unlocks so it cannot trigger further badges.
func (s *GamificationService) evaluateBadges(ctx context.Context, exec repositories.SQLExecutor, g *models.PlayerGamification, aw *playerAward, matchID string) ([]*models.Notification, error) {
	career, err := s.stats.CareerStats(ctx, exec, g.UserID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.gamification.UnlockedBadgeIDs(ctx, exec, g.UserID)
	if err != nil {
		return nil, err
	}

	eval := s.rules.EvaluateBadges(g.UserID, gamification.BadgeContext{
		Career:        *career,
		CurrentStreak: g.CurrentStreak,
		BestStreak:    g.BestStreak,
		CitiesPlayed:  len(g.CitiesPlayed),
	}, unlocked)

	if err := s.gamification.UpsertBadgeProgress(ctx, exec, eval.Progress); err != nil {
		return nil, err
	}

	badgeXP := s.rules.XP(gamification.SourceBadgeUnlock)
	var notifications []*models.Notification
	for _, b := range eval.Unlocked {
		if err := s.gamification.UnlockBadge(ctx, exec, &models.UserBadge{
			UserID:   g.UserID,
			BadgeID:  b.ID,
			Category: b.Category,
			Tier:     b.Tier,
		}); err != nil {
			return nil, err
		}
		notifications = append(notifications, &models.Notification{
			UserID: g.UserID,
			Type:   models.NotificationBadgeUnlocked,
			Title:  "New badge unlocked!",
			Body:   fmt.Sprintf("%s You earned the %s badge (%s). +%d XP!", b.Icon, b.Name, b.Tier, badgeXP),
			Data:   map[string]string{"badge_id": b.ID, "match_id": matchID},
		})
	}
	for _, b := range eval.Unlocked {
		aw.award(gamification.SourceBadgeUnlock, badgeXP, map[string]string{"badge_id": b.ID})
	}
	return notifications, nil
}
