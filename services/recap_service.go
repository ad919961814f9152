package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/repositories"
)

// RecapService publishes a public post summarizing the result, authored by
// the operator.
type RecapService struct {
	tx    repositories.TxRunner
	posts repositories.PostRepository
}

func NewRecapService(tx repositories.TxRunner, posts repositories.PostRepository) *RecapService {
	return &RecapService{tx: tx, posts: posts}
}

func (s *RecapService) Name() string { return "recap_post" }

func (s *RecapService) OnMatchCompleted(ctx context.Context, c *CompletedMatch) error {
	matchID := c.Match.ID
	post := &models.Post{
		AuthorID:   c.Operator.ProfileID,
		Caption:    RecapCaption(c),
		Visibility: "public",
		MatchID:    &matchID,
	}
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.posts.Create(ctx, exec, post); err != nil {
			return err
		}
		if c.Match.ImageURL == nil || *c.Match.ImageURL == "" {
			return nil
		}
		return s.posts.AddMedia(ctx, exec, &models.PostMedia{
			PostID:    post.ID,
			MediaType: "image",
			MediaURL:  *c.Match.ImageURL,
			SortOrder: 0,
		})
	})
}

func resultLabel(a, b int) string {
	switch {
	case a > b:
		return "Team A wins"
	case b > a:
		return "Team B wins"
	default:
		return "Draw"
	}
}

// RecapCaption renders "Team A wins 3 - 2 | Venue, City | MVP: Name | notes".
func RecapCaption(c *CompletedMatch) string {
	r := c.Result
	parts := []string{
		fmt.Sprintf("%s %d - %d", resultLabel(r.ScoreTeamA, r.ScoreTeamB), r.ScoreTeamA, r.ScoreTeamB),
		fmt.Sprintf("%s, %s", c.Match.VenueName, c.Match.City),
	}
	if mvp := c.MVP(); mvp != nil {
		parts = append(parts, "MVP: "+mvp.FullName())
	}
	if r.Notes != nil && *r.Notes != "" {
		parts = append(parts, *r.Notes)
	}
	return strings.Join(parts, " | ")
}
