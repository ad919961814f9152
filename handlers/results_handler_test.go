package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/footmatch/middleware"
	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
)

const testMatchID = "5f0c6b7e-8a4e-4d57-9a0e-2b1e5c3d4a11"

type fakeResultsService struct {
	submitErr  error
	gotProfile string
	gotPayload models.SubmitResultsPayload
	seedErr    error
	resultErr  error
	reportURL  string
	reportErr  error
}

func (f *fakeResultsService) SubmitResults(_ context.Context, profileID string, p models.SubmitResultsPayload) (*models.MatchResult, error) {
	f.gotProfile, f.gotPayload = profileID, p
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.MatchResult{ID: "r1", MatchID: p.MatchID, ScoreTeamA: p.ScoreTeamA, ScoreTeamB: p.ScoreTeamB}, nil
}

func (f *fakeResultsService) GetDraftSeed(_ context.Context, _, matchID string) (*services.DraftSeed, error) {
	if f.seedErr != nil {
		return nil, f.seedErr
	}
	return &services.DraftSeed{
		Match:         &models.Match{ID: matchID, DurationMinutes: 60},
		Registrations: []*models.Registration{{PlayerID: "p1"}},
	}, nil
}

func (f *fakeResultsService) GetResults(_ context.Context, matchID string) (*models.MatchResult, error) {
	if f.resultErr != nil {
		return nil, f.resultErr
	}
	return &models.MatchResult{ID: "r1", MatchID: matchID}, nil
}

func (f *fakeResultsService) GetReportURL(context.Context, string, string) (string, error) {
	return f.reportURL, f.reportErr
}

func newTestRouter(svc services.ResultsService) http.Handler {
	h := NewResultsHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				req = req.WithContext(middleware.WithClaims(req.Context(), jwt.MapClaims{"user_id": id, "role": "operator"}))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/operator/submit-results", h.SubmitResults)
	r.Get("/operator/matches/{matchID}/results/draft", h.GetDraft)
	r.Get("/operator/matches/{matchID}/results/report", h.DownloadReport)
	r.Get("/matches/{matchID}/results", h.GetResults)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authed {
		req.Header.Set("X-Test-User", "prof-op")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return out
}

const submitBody = `{"match_id":"` + testMatchID + `","operator_id":"op-1","score_team_a":2,"score_team_b":1,
"duration_minutes":60,"match_quality":"good","notes":"",
"player_stats":[{"user_id":"p1","team":"A","goals":2,"assists":0,"attended":true,"mvp":true,"yellow_card":false,"red_card":false},
{"user_id":"p2","team":null,"goals":0,"assists":0,"attended":false,"mvp":false,"yellow_card":false,"red_card":false}]}`

func TestSubmitResults_Created(t *testing.T) {
	svc := &fakeResultsService{}
	rec := do(t, newTestRouter(svc), http.MethodPost, "/operator/submit-results", submitBody, true)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body)
	}
	if svc.gotProfile != "prof-op" {
		t.Errorf("expected profile from token, got %q", svc.gotProfile)
	}
	if len(svc.gotPayload.PlayerStats) != 2 || svc.gotPayload.PlayerStats[1].Team != nil {
		t.Errorf("payload not decoded: %+v", svc.gotPayload)
	}
	if *svc.gotPayload.PlayerStats[0].Team != models.TeamA {
		t.Errorf("expected team A, got %v", *svc.gotPayload.PlayerStats[0].Team)
	}
}

func TestSubmitResults_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"duration_minutes": "must be at least 1"}},
			http.StatusUnprocessableEntity, "validation failed: duration_minutes: must be at least 1"},
		{"already submitted", services.ErrResultsAlreadySubmitted, http.StatusConflict, "Results already submitted"},
		{"in progress", services.ErrSubmissionInProgress, http.StatusConflict, services.ErrSubmissionInProgress.Error()},
		{"not operator", services.ErrNotOperator, http.StatusForbidden, services.ErrNotOperator.Error()},
		{"match missing", services.ErrMatchNotFound, http.StatusNotFound, "match not found"},
		{"result missing", services.ErrResultNotFound, http.StatusNotFound, "results not found"},
		{"report missing", services.ErrReportNotFound, http.StatusNotFound, "report not available"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError,
			"the server encountered a problem and could not process your request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(&fakeResultsService{submitErr: tt.err}), http.MethodPost, "/operator/submit-results", submitBody, true)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if got := decode(t, rec)["error"]; got != tt.message {
				t.Errorf("expected error %q, got %v", tt.message, got)
			}
		})
	}
}

func TestSubmitResults_ValidationFields(t *testing.T) {
	err := &services.ValidationError{Fields: map[string]string{"teams": "both teams need at least one player"}}
	rec := do(t, newTestRouter(&fakeResultsService{submitErr: err}), http.MethodPost, "/operator/submit-results", submitBody, true)

	fields, ok := decode(t, rec)["fields"].(map[string]interface{})
	if !ok || fields["teams"] != "both teams need at least one player" {
		t.Errorf("expected fields in body, got %s", rec.Body.String())
	}
}

func TestSubmitResults_BadRequests(t *testing.T) {
	router := newTestRouter(&fakeResultsService{})
	tests := []struct {
		name   string
		body   string
		authed bool
		status int
	}{
		{"no auth", submitBody, false, http.StatusUnauthorized},
		{"empty body", "", true, http.StatusBadRequest},
		{"malformed", `{"match_id":`, true, http.StatusBadRequest},
		{"unknown field", `{"match":"x"}`, true, http.StatusBadRequest},
		{"wrong type", `{"score_team_a":"two"}`, true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/operator/submit-results", tt.body, tt.authed)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetDraft(t *testing.T) {
	rec := do(t, newTestRouter(&fakeResultsService{}), http.MethodGet, "/operator/matches/"+testMatchID+"/results/draft", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if regs, _ := body["registrations"].([]interface{}); len(regs) != 1 {
		t.Errorf("expected one registration, got %v", body["registrations"])
	}

	rec = do(t, newTestRouter(&fakeResultsService{}), http.MethodGet, "/operator/matches/not-a-uuid/results/draft", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}

	rec = do(t, newTestRouter(&fakeResultsService{seedErr: services.ErrNoConfirmedPlayers}), http.MethodGet, "/operator/matches/"+testMatchID+"/results/draft", "", true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 without confirmed players, got %d", rec.Code)
	}
}

func TestGetResults(t *testing.T) {
	rec := do(t, newTestRouter(&fakeResultsService{}), http.MethodGet, "/matches/"+testMatchID+"/results", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result, _ := decode(t, rec)["result"].(map[string]interface{})
	if result["match_id"] != testMatchID {
		t.Errorf("unexpected result %v", result)
	}

	rec = do(t, newTestRouter(&fakeResultsService{resultErr: services.ErrResultNotFound}), http.MethodGet, "/matches/"+testMatchID+"/results", "", true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDownloadReport(t *testing.T) {
	svc := &fakeResultsService{reportURL: "https://cdn.test/results/x.xlsx"}
	rec := do(t, newTestRouter(svc), http.MethodGet, "/operator/matches/"+testMatchID+"/results/report", "", true)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != svc.reportURL {
		t.Errorf("unexpected Location %q", loc)
	}

	svc = &fakeResultsService{reportErr: services.ErrReportNotFound}
	rec = do(t, newTestRouter(svc), http.MethodGet, "/operator/matches/"+testMatchID+"/results/report", "", true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
