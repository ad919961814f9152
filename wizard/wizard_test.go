package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/footmatch/models"
)

type recordingSubmitter struct {
	mu       sync.Mutex
	payloads []models.SubmitResultsPayload
	err      error
	release  chan struct{}
	started  chan struct{}
}

func (s *recordingSubmitter) SubmitResults(ctx context.Context, payload models.SubmitResultsPayload) error {
	s.mu.Lock()
	s.payloads = append(s.payloads, payload)
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	return s.err
}

func rosterReady(t *testing.T, w *Wizard) {
	t.Helper()
	for _, a := range []Action{
		AssignTeam{UserID: "p1", Team: models.TeamA},
		AssignTeam{UserID: "p2", Team: models.TeamB},
		MarkAbsent{UserID: "p3"},
	} {
		if err := w.Dispatch(a); err != nil {
			t.Fatalf("Dispatch(%T): %v", a, err)
		}
	}
}

func advanceTo(t *testing.T, w *Wizard, stage Stage) {
	t.Helper()
	for w.Stage() != stage {
		if err := w.Next(); err != nil {
			t.Fatalf("Next() from %s: %v", w.Stage(), err)
		}
	}
}

func TestWizard_StartsAtRoster(t *testing.T) {
	w := New(newTestDraft(3), &recordingSubmitter{})
	if w.Stage() != StageRoster {
		t.Fatalf("expected roster stage, got %s", w.Stage())
	}
	if w.CanProceed() {
		t.Error("expected roster guard to fail on a fresh draft")
	}
	if err := w.Next(); !errors.Is(err, ErrGuardFailed) {
		t.Errorf("expected ErrGuardFailed, got %v", err)
	}
	if err := w.Back(); !errors.Is(err, ErrNoTransition) {
		t.Errorf("expected ErrNoTransition going back from roster, got %v", err)
	}
}

func TestWizard_ActionsScopedToStage(t *testing.T) {
	w := New(newTestDraft(3), &recordingSubmitter{})

	if err := w.Dispatch(SetGoals{UserID: "p1", Goals: 1}); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("expected ErrActionNotAllowed for stats action at roster, got %v", err)
	}
	rosterReady(t, w)
	advanceTo(t, w, StageOutcome)

	if err := w.Dispatch(MarkAbsent{UserID: "p1"}); !errors.Is(err, ErrActionNotAllowed) {
		t.Fatalf("expected ErrActionNotAllowed for roster action at outcome, got %v", err)
	}
	if err := w.Dispatch(SetScore{Team: models.TeamA, Score: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWizard_BackKeepsData(t *testing.T) {
	w := New(newTestDraft(3), &recordingSubmitter{})
	rosterReady(t, w)
	advanceTo(t, w, StageStats)
	if err := w.Dispatch(SetGoals{UserID: "p1", Goals: 2}); err != nil {
		t.Fatal(err)
	}
	advanceTo(t, w, StageConfirm)
	if err := w.Next(); !errors.Is(err, ErrNoTransition) {
		t.Fatalf("expected no transition past confirm, got %v", err)
	}

	if err := w.Back(); err != nil {
		t.Fatal(err)
	}
	if w.Stage() != StageStats {
		t.Fatalf("expected stats stage, got %s", w.Stage())
	}
	if got := w.Draft().Players[0].Goals; got != 2 {
		t.Errorf("expected goals preserved, got %d", got)
	}
}

func TestWizard_DraftReturnsCopy(t *testing.T) {
	w := New(newTestDraft(3), &recordingSubmitter{})
	d := w.Draft()
	d.Players[0].Team = models.TeamA
	if w.Draft().Players[0].Team != models.TeamNone {
		t.Error("mutating the returned draft leaked into the wizard")
	}
}

func TestWizard_EndToEndSubmission(t *testing.T) {
	draft := newTestDraft(10)
	sub := &recordingSubmitter{}
	w := New(draft, sub)

	for i, p := range draft.Players {
		var a Action
		switch {
		case i < 5:
			a = AssignTeam{UserID: p.UserID, Team: models.TeamA}
		case i < 9:
			a = AssignTeam{UserID: p.UserID, Team: models.TeamB}
		default:
			a = MarkAbsent{UserID: p.UserID}
		}
		if err := w.Dispatch(a); err != nil {
			t.Fatal(err)
		}
	}
	advanceTo(t, w, StageOutcome)
	for _, a := range []Action{
		SetScore{Team: models.TeamA, Score: 3},
		SetScore{Team: models.TeamB, Score: 2},
		SetDuration{Minutes: 58},
		SetQuality{Quality: models.QualityGood},
		SetNotes{Notes: "Great atmosphere"},
	} {
		if err := w.Dispatch(a); err != nil {
			t.Fatal(err)
		}
	}
	advanceTo(t, w, StageStats)
	for _, a := range []Action{
		AdjustGoals{UserID: "p1", Delta: 1},
		AdjustGoals{UserID: "p1", Delta: 1},
		SetMVP{UserID: "p1", MVP: true},
		SetGoals{UserID: "p6", Goals: 1},
		ToggleYellowCard{UserID: "p6"},
	} {
		if err := w.Dispatch(a); err != nil {
			t.Fatal(err)
		}
	}
	advanceTo(t, w, StageConfirm)

	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(sub.payloads) != 1 {
		t.Fatalf("expected one request, got %d", len(sub.payloads))
	}
	p := sub.payloads[0]

	if p.ScoreTeamA != 3 || p.ScoreTeamB != 2 || p.DurationMinutes != 58 || p.MatchQuality != models.QualityGood {
		t.Errorf("unexpected outcome fields: %+v", p)
	}
	if p.Notes != "Great atmosphere" || p.MatchID != "match-1" || p.OperatorID != "op-1" {
		t.Errorf("unexpected identity fields: %+v", p)
	}
	if len(p.PlayerStats) != 10 {
		t.Fatalf("expected 10 player entries, got %d", len(p.PlayerStats))
	}

	var mvps, yellows []models.PlayerStatPayload
	for _, ps := range p.PlayerStats {
		if ps.MVP {
			mvps = append(mvps, ps)
		}
		if ps.YellowCard {
			yellows = append(yellows, ps)
		}
	}
	if len(mvps) != 1 || mvps[0].UserID != "p1" || mvps[0].Goals != 2 {
		t.Errorf("expected p1 as the only MVP with 2 goals, got %+v", mvps)
	}
	if len(yellows) != 1 || yellows[0].UserID != "p6" || yellows[0].Goals != 1 {
		t.Errorf("expected p6 as the only booked player with 1 goal, got %+v", yellows)
	}

	absent := p.PlayerStats[9]
	if absent.Attended || absent.Team != nil || absent.Goals != 0 || absent.Assists != 0 ||
		absent.MVP || absent.YellowCard || absent.RedCard {
		t.Errorf("absent player entry not reset: %+v", absent)
	}

	if !w.Submitted() || w.Draft() != nil {
		t.Error("expected draft to be discarded after success")
	}
	if got := w.RedirectPath(); got != "/operator/matches/match-1" {
		t.Errorf("unexpected redirect %q", got)
	}
	if err := w.Dispatch(SetNotes{Notes: "late edit"}); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("expected ErrAlreadySubmitted, got %v", err)
	}
}

func TestWizard_PayloadCarriesNoProfile(t *testing.T) {
	d := newTestDraft(3)
	raw, err := json.Marshal(BuildPayload(d))
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	for _, field := range []string{"profile", "first_name", "last_name"} {
		if strings.Contains(body, field) {
			t.Errorf("payload leaks %q: %s", field, body)
		}
	}
	if !strings.Contains(body, `"team":null`) {
		t.Errorf("expected unassigned team serialized as null: %s", body)
	}
}

func TestWizard_FailureRetainsDraft(t *testing.T) {
	sub := &recordingSubmitter{err: &SubmitError{Status: 409, Message: "Results already submitted"}}
	w := New(newTestDraft(3), sub)
	rosterReady(t, w)
	advanceTo(t, w, StageConfirm)

	before := w.Draft()
	err := w.Submit(context.Background())
	if err == nil {
		t.Fatal("expected submission error")
	}
	if !draftsEqual(before, w.Draft()) {
		t.Error("draft changed after failed submission")
	}
	if w.Submitting() {
		t.Error("expected submitting flag cleared")
	}
	if w.Submitted() {
		t.Error("failed submission must not mark the wizard submitted")
	}
	if got := w.LastError(); got != "Results already submitted" {
		t.Errorf("expected collaborator message, got %q", got)
	}
	if w.Stage() != StageConfirm {
		t.Errorf("expected to stay at confirm, got %s", w.Stage())
	}

	sub.err = nil
	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(sub.payloads) != 2 {
		t.Errorf("expected two attempts, got %d", len(sub.payloads))
	}
	if w.LastError() != "" {
		t.Errorf("expected error cleared after retry, got %q", w.LastError())
	}
}

func TestWizard_ErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"collaborator message", &SubmitError{Status: 500, Message: "db down"}, "db down"},
		{"no message", &SubmitError{Status: 502}, genericSubmitError},
		{"network", errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(newTestDraft(3), &recordingSubmitter{err: tt.err})
			rosterReady(t, w)
			advanceTo(t, w, StageConfirm)
			_ = w.Submit(context.Background())
			if got := w.LastError(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWizard_RejectsWhileSubmitting(t *testing.T) {
	sub := &recordingSubmitter{release: make(chan struct{}), started: make(chan struct{})}
	w := New(newTestDraft(3), sub)
	rosterReady(t, w)
	advanceTo(t, w, StageConfirm)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()

	select {
	case <-sub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never started")
	}

	if !w.Submitting() {
		t.Error("expected submitting flag while request is in flight")
	}
	if err := w.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}
	if err := w.Back(); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected navigation blocked, got %v", err)
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sub.payloads) != 1 {
		t.Errorf("expected exactly one request, got %d", len(sub.payloads))
	}
}

func TestWizard_SubmitOnlyFromConfirm(t *testing.T) {
	w := New(newTestDraft(3), &recordingSubmitter{})
	if err := w.Submit(context.Background()); !errors.Is(err, ErrNotAtConfirm) {
		t.Errorf("expected ErrNotAtConfirm, got %v", err)
	}
}
