package models

import "time"

type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Caption      string    `json:"caption"`
	Visibility   string    `json:"visibility"`
	MatchID      *string   `json:"match_id,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostMedia struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	SortOrder int    `json:"sort_order"`
}
