package services

import (
	"context"

	"github.com/Dosada05/footmatch/realtime"
)

type RoomBroadcaster interface {
	BroadcastToRoom(room string, msg realtime.Message)
}

// MatchEventsHook pushes MATCH_COMPLETED to clients watching the match.
type MatchEventsHook struct {
	rooms RoomBroadcaster
}

func NewMatchEventsHook(rooms RoomBroadcaster) *MatchEventsHook {
	return &MatchEventsHook{rooms: rooms}
}

func (h *MatchEventsHook) Name() string { return "realtime" }

func (h *MatchEventsHook) OnMatchCompleted(_ context.Context, c *CompletedMatch) error {
	h.rooms.BroadcastToRoom(realtime.MatchRoom(c.Match.ID), realtime.Message{
		Type: realtime.EventMatchCompleted,
		Payload: map[string]interface{}{
			"match_id":     c.Match.ID,
			"score_team_a": c.Result.ScoreTeamA,
			"score_team_b": c.Result.ScoreTeamB,
		},
	})
	return nil
}
