package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/repositories"
	"github.com/Dosada05/footmatch/storage"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService exports a completed match to a spreadsheet in object storage.
type ReportService struct {
	results  repositories.ResultRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewReportService(results repositories.ResultRepository, uploader storage.FileUploader, logger *slog.Logger) *ReportService {
	return &ReportService{results: results, uploader: uploader, logger: logger}
}

func (s *ReportService) Name() string { return "report_export" }

func (s *ReportService) OnMatchCompleted(ctx context.Context, c *CompletedMatch) error {
	data, err := BuildReport(c)
	if err != nil {
		return err
	}
	key := ReportKey(c.Match)
	if _, err := s.uploader.Upload(ctx, key, xlsxContentType, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := s.results.SetReportKey(ctx, nil, c.Result.ID, key); err != nil {
		// Не оставляем в бакете отчёт, на который нет ссылки.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to delete orphaned report", "key", key, "error", delErr)
		}
		return err
	}
	return nil
}

func ReportKey(m *models.Match) string {
	name := slug.Make(m.Title)
	if name == "" {
		name = "match"
	}
	return fmt.Sprintf("results/%s-%s.xlsx", name, m.ID)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// BuildReport writes a "Summary" sheet and a "Players" sheet.
func BuildReport(c *CompletedMatch) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	r := c.Result
	notes := ""
	if r.Notes != nil {
		notes = *r.Notes
	}
	rows := [][2]interface{}{
		{"Match", c.Match.Title},
		{"Kickoff", c.Match.StartsAt.UTC().Format("2006-01-02 15:04")},
		{"Venue", fmt.Sprintf("%s, %s", c.Match.VenueName, c.Match.City)},
		{"Score", fmt.Sprintf("%d - %d", r.ScoreTeamA, r.ScoreTeamB)},
		{"Result", resultLabel(r.ScoreTeamA, r.ScoreTeamB)},
		{"Duration (min)", r.DurationMinutes},
		{"Quality", string(r.MatchQuality)},
		{"Notes", notes},
	}
	for i, row := range rows {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+1), row[1])
	}

	const players = "Players"
	if _, err := f.NewSheet(players); err != nil {
		return nil, fmt.Errorf("failed to create players sheet: %w", err)
	}
	headers := []string{"Player", "Team", "Attended", "Goals", "Assists", "MVP", "Yellow card", "Red card"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(players, cell, h)
	}

	names := make(map[string]string, len(c.Registrations))
	for _, reg := range c.Registrations {
		names[reg.PlayerID] = reg.Profile.FullName()
	}
	for i, st := range r.PlayerStats {
		row := i + 2
		name := names[st.UserID]
		if name == "" {
			name = st.UserID
		}
		team := ""
		if st.Team != nil {
			team = string(*st.Team)
		}
		values := []interface{}{name, team, yesNo(st.Attended), st.Goals, st.Assists, yesNo(st.MVP), yesNo(st.YellowCard), yesNo(st.RedCard)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(players, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}
