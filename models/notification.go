package models

import "time"

type NotificationType string

const (
	NotificationMatchResultsAvailable NotificationType = "match_results_available"
	NotificationMatchMVP              NotificationType = "match_mvp"
	NotificationLevelUp               NotificationType = "level_up"
	NotificationBadgeUnlocked         NotificationType = "badge_unlocked"
)

type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
