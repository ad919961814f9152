package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Dosada05/footmatch/models"
)

const submitResultsPath = "/operator/submit-results"

type Submitter interface {
	SubmitResults(ctx context.Context, payload models.SubmitResultsPayload) error
}

// SubmitError is a non-2xx answer from the results endpoint.
type SubmitError struct {
	Status  int
	Message string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submit results: status %d", e.Status)
	}
	return fmt.Sprintf("submit results: status %d: %s", e.Status, e.Message)
}

// BuildPayload strips display-only profile data and keeps one entry per
// registered player, absentees included.
func BuildPayload(d *Draft) models.SubmitResultsPayload {
	payload := models.SubmitResultsPayload{
		MatchID:         d.MatchID,
		OperatorID:      d.OperatorID,
		ScoreTeamA:      d.ScoreTeamA,
		ScoreTeamB:      d.ScoreTeamB,
		DurationMinutes: d.DurationMinutes,
		MatchQuality:    d.MatchQuality,
		Notes:           d.Notes,
		PlayerStats:     make([]models.PlayerStatPayload, 0, len(d.Players)),
	}
	for _, p := range d.Players {
		var team *models.Team
		if p.Team != models.TeamNone {
			t := p.Team
			team = &t
		}
		payload.PlayerStats = append(payload.PlayerStats, models.PlayerStatPayload{
			UserID:     p.UserID,
			Team:       team,
			Goals:      p.Goals,
			Assists:    p.Assists,
			Attended:   p.Attended,
			MVP:        p.MVP,
			YellowCard: p.YellowCard,
			RedCard:    p.RedCard,
		})
	}
	return payload
}

type HTTPSubmitter struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPSubmitter posts results to baseURL with the operator's bearer token.
// A nil client means http.DefaultClient; no timeout is imposed beyond ctx.
func NewHTTPSubmitter(baseURL, token string, client *http.Client) *HTTPSubmitter {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSubmitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (s *HTTPSubmitter) SubmitResults(ctx context.Context, payload models.SubmitResultsPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode results payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+submitResultsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build results request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return &SubmitError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(envelope.Error, &msg); err == nil {
		return msg
	}
	return ""
}

var _ Submitter = (*HTTPSubmitter)(nil)
