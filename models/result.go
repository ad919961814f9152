package models

import "time"

type MatchQuality string

const (
	QualityExcellent MatchQuality = "excellent"
	QualityGood      MatchQuality = "good"
	QualityAverage   MatchQuality = "average"
	QualityPoor      MatchQuality = "poor"
)

func (q MatchQuality) Valid() bool {
	switch q {
	case QualityExcellent, QualityGood, QualityAverage, QualityPoor:
		return true
	}
	return false
}

// Team is "A" or "B". The empty value means unassigned.
type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

func (t Team) Valid() bool {
	return t == TeamA || t == TeamB
}

type MatchResult struct {
	ID              string       `json:"id"`
	MatchID         string       `json:"match_id"`
	OperatorID      string       `json:"operator_id"`
	ScoreTeamA      int          `json:"score_team_a"`
	ScoreTeamB      int          `json:"score_team_b"`
	DurationMinutes int          `json:"duration_minutes"`
	MatchQuality    MatchQuality `json:"match_quality"`
	Notes           *string      `json:"notes,omitempty"`
	ReportKey       *string      `json:"-"`
	ReportURL       *string      `json:"report_url,omitempty"`
	SubmittedAt     time.Time    `json:"submitted_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	PlayerStats []MatchPlayerStat `json:"player_stats,omitempty"`
}

type MatchPlayerStat struct {
	ID         string `json:"id"`
	MatchID    string `json:"match_id"`
	ResultID   string `json:"result_id"`
	UserID     string `json:"user_id"`
	Team       *Team  `json:"team"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
	Attended   bool   `json:"attended"`
	MVP        bool   `json:"mvp"`
	YellowCard bool   `json:"yellow_card"`
	RedCard    bool   `json:"red_card"`
}

// SubmitResultsPayload is the body of POST /operator/submit-results.
type SubmitResultsPayload struct {
	MatchID         string              `json:"match_id"`
	OperatorID      string              `json:"operator_id"`
	ScoreTeamA      int                 `json:"score_team_a"`
	ScoreTeamB      int                 `json:"score_team_b"`
	DurationMinutes int                 `json:"duration_minutes"`
	MatchQuality    MatchQuality        `json:"match_quality"`
	Notes           string              `json:"notes"`
	PlayerStats     []PlayerStatPayload `json:"player_stats"`
}

type PlayerStatPayload struct {
	UserID     string `json:"user_id"`
	Team       *Team  `json:"team"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
	Attended   bool   `json:"attended"`
	MVP        bool   `json:"mvp"`
	YellowCard bool   `json:"yellow_card"`
	RedCard    bool   `json:"red_card"`
}
