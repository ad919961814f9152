package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/footmatch/locks"
	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/repositories"
	"github.com/Dosada05/footmatch/storage"
)

type DraftSeed struct {
	Match         *models.Match          `json:"match"`
	Registrations []*models.Registration `json:"registrations"`
}

type ResultsService interface {
	// SubmitResults stores a match's results, player stats and notifications
	// in one transaction, then runs the completion hooks.
	SubmitResults(ctx context.Context, profileID string, payload models.SubmitResultsPayload) (*models.MatchResult, error)
	GetDraftSeed(ctx context.Context, profileID, matchID string) (*DraftSeed, error)
	GetResults(ctx context.Context, matchID string) (*models.MatchResult, error)
	GetReportURL(ctx context.Context, profileID, matchID string) (string, error)
}

type ResultsRepositories struct {
	Matches       repositories.MatchRepository
	Operators     repositories.OperatorRepository
	Registrations repositories.RegistrationRepository
	Results       repositories.ResultRepository
	PlayerStats   repositories.PlayerStatsRepository
	Notifications repositories.NotificationRepository
}

type resultsService struct {
	tx      repositories.TxRunner
	repos   ResultsRepositories
	locker  locks.Locker
	lockTTL time.Duration
	hooks   []CompletionHook
	// uploader is nil when object storage is not configured.
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewResultsService(
	tx repositories.TxRunner,
	repos ResultsRepositories,
	locker locks.Locker,
	lockTTL time.Duration,
	uploader storage.FileUploader,
	logger *slog.Logger,
	hooks ...CompletionHook,
) ResultsService {
	return &resultsService{
		tx:       tx,
		repos:    repos,
		locker:   locker,
		lockTTL:  lockTTL,
		hooks:    hooks,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *resultsService) SubmitResults(ctx context.Context, profileID string, payload models.SubmitResultsPayload) (*models.MatchResult, error) {
	operator, err := s.resolveOperator(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if err := validateSubmission(payload); err != nil {
		return nil, err
	}
	if payload.OperatorID != operator.ID {
		return nil, fmt.Errorf("%w: payload operator does not match the authenticated operator", ErrForbiddenOperation)
	}

	release, err := s.locker.Acquire(ctx, "results:"+payload.MatchID, s.lockTTL)
	if err != nil {
		if errors.Is(err, locks.ErrLockHeld) {
			return nil, ErrSubmissionInProgress
		}
		return nil, fmt.Errorf("failed to acquire submission lock: %w", err)
	}

	completed := &CompletedMatch{Operator: operator}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.storeResults(ctx, exec, operator, payload, completed)
	})
	// Блокировка снимается до запуска хуков.
	if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
		s.logger.Warn("failed to release submission lock", "match_id", payload.MatchID, "error", relErr)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("match results submitted",
		"match_id", payload.MatchID,
		"operator_id", operator.ID,
		"score", fmt.Sprintf("%d-%d", payload.ScoreTeamA, payload.ScoreTeamB),
		"players", len(payload.PlayerStats),
	)

	runCompletionHooks(ctx, s.logger, s.hooks, completed)
	return completed.Result, nil
}

func (s *resultsService) storeResults(ctx context.Context, exec repositories.SQLExecutor, operator *models.Operator, payload models.SubmitResultsPayload, out *CompletedMatch) error {
	match, err := s.repos.Matches.GetByIDForUpdate(ctx, exec, payload.MatchID)
	if err != nil {
		return mapMatchError(err)
	}
	if match.OperatorID != operator.ID {
		return ErrMatchNotFound
	}
	switch match.Status {
	case models.MatchStatusCompleted:
		return ErrResultsAlreadySubmitted
	case models.MatchStatusCanceled:
		return ErrMatchCanceled
	}
	exists, err := s.repos.Results.ExistsForMatch(ctx, exec, match.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrResultsAlreadySubmitted
	}

	regs, err := s.repos.Registrations.ListConfirmed(ctx, exec, match.ID)
	if err != nil {
		return err
	}
	if err := checkRoster(payload, regs); err != nil {
		return err
	}

	result := &models.MatchResult{
		MatchID:         match.ID,
		OperatorID:      operator.ID,
		ScoreTeamA:      payload.ScoreTeamA,
		ScoreTeamB:      payload.ScoreTeamB,
		DurationMinutes: payload.DurationMinutes,
		MatchQuality:    payload.MatchQuality,
	}
	if payload.Notes != "" {
		notes := payload.Notes
		result.Notes = &notes
	}
	if err := s.repos.Results.Create(ctx, exec, result); err != nil {
		if errors.Is(err, repositories.ErrResultExists) {
			return ErrResultsAlreadySubmitted
		}
		return err
	}

	result.PlayerStats = buildPlayerStats(result, payload.PlayerStats)
	if err := s.repos.PlayerStats.CreateBatch(ctx, exec, result.PlayerStats); err != nil {
		if errors.Is(err, repositories.ErrPlayerStatsConflict) {
			return &ValidationError{Fields: map[string]string{"player_stats": err.Error()}}
		}
		return err
	}

	if err := s.repos.Notifications.CreateBatch(ctx, exec, resultNotifications(match, regs, result.PlayerStats)); err != nil {
		return err
	}
	if err := s.repos.Matches.UpdateStatus(ctx, exec, match.ID, models.MatchStatusCompleted); err != nil {
		return mapMatchError(err)
	}
	if err := s.repos.Operators.IncrementTotalMatches(ctx, exec, operator.ID); err != nil {
		return err
	}

	match.Status = models.MatchStatusCompleted
	s.populateMatchImage(match)
	out.Match = match
	out.Result = result
	out.Registrations = regs
	return nil
}

func buildPlayerStats(result *models.MatchResult, payload []models.PlayerStatPayload) []models.MatchPlayerStat {
	stats := make([]models.MatchPlayerStat, 0, len(payload))
	for _, ps := range payload {
		team := ps.Team
		if !ps.Attended {
			team = nil
		}
		stats = append(stats, models.MatchPlayerStat{
			MatchID:    result.MatchID,
			ResultID:   result.ID,
			UserID:     ps.UserID,
			Team:       team,
			Goals:      ps.Goals,
			Assists:    ps.Assists,
			Attended:   ps.Attended,
			MVP:        ps.MVP,
			YellowCard: ps.YellowCard,
			RedCard:    ps.RedCard,
		})
	}
	return stats
}

func resultNotifications(match *models.Match, regs []*models.Registration, stats []models.MatchPlayerStat) []*models.Notification {
	data := map[string]string{"match_id": match.ID}
	out := make([]*models.Notification, 0, len(regs)+1)
	for _, reg := range regs {
		out = append(out, &models.Notification{
			UserID: reg.PlayerID,
			Type:   models.NotificationMatchResultsAvailable,
			Title:  "Results available!",
			Body:   fmt.Sprintf("Results for %q are in. Check out your stats!", match.Title),
			Data:   data,
		})
	}
	for _, s := range stats {
		if s.MVP {
			out = append(out, &models.Notification{
				UserID: s.UserID,
				Type:   models.NotificationMatchMVP,
				Title:  "Match MVP!",
				Body:   fmt.Sprintf("You were voted MVP of %q. Well played!", match.Title),
				Data:   data,
			})
		}
	}
	return out
}

func (s *resultsService) GetDraftSeed(ctx context.Context, profileID, matchID string) (*DraftSeed, error) {
	operator, err := s.resolveOperator(ctx, profileID)
	if err != nil {
		return nil, err
	}
	match, err := s.repos.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, mapMatchError(err)
	}
	if match.OperatorID != operator.ID {
		return nil, ErrMatchNotFound
	}
	exists, err := s.repos.Results.ExistsForMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if exists || match.Status == models.MatchStatusCompleted {
		return nil, ErrResultsAlreadySubmitted
	}
	if match.Status == models.MatchStatusCanceled {
		return nil, ErrMatchCanceled
	}

	regs, err := s.repos.Registrations.ListConfirmed(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, ErrNoConfirmedPlayers
	}
	s.populateMatchImage(match)
	return &DraftSeed{Match: match, Registrations: regs}, nil
}

func (s *resultsService) GetResults(ctx context.Context, matchID string) (*models.MatchResult, error) {
	result, err := s.repos.Results.GetByMatchID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	stats, err := s.repos.PlayerStats.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	result.PlayerStats = stats
	if result.ReportKey != nil && s.uploader != nil {
		if u := s.uploader.GetPublicURL(*result.ReportKey); u != "" {
			result.ReportURL = &u
		}
	}
	return result, nil
}

func (s *resultsService) GetReportURL(ctx context.Context, profileID, matchID string) (string, error) {
	operator, err := s.resolveOperator(ctx, profileID)
	if err != nil {
		return "", err
	}
	match, err := s.repos.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return "", mapMatchError(err)
	}
	if match.OperatorID != operator.ID {
		return "", ErrMatchNotFound
	}
	result, err := s.repos.Results.GetByMatchID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return "", ErrResultNotFound
		}
		return "", err
	}
	if result.ReportKey == nil || s.uploader == nil {
		return "", ErrReportNotFound
	}
	u := s.uploader.GetPublicURL(*result.ReportKey)
	if u == "" {
		return "", ErrReportNotFound
	}
	return u, nil
}

func (s *resultsService) resolveOperator(ctx context.Context, profileID string) (*models.Operator, error) {
	op, err := s.repos.Operators.GetByProfileID(ctx, nil, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			return nil, ErrNotOperator
		}
		return nil, fmt.Errorf("failed to resolve operator: %w", err)
	}
	return op, nil
}

func (s *resultsService) populateMatchImage(m *models.Match) {
	if m.ImageKey == nil || *m.ImageKey == "" || s.uploader == nil {
		return
	}
	if u := s.uploader.GetPublicURL(*m.ImageKey); u != "" {
		m.ImageURL = &u
	}
}

func mapMatchError(err error) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}
