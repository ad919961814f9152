package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

type PostRepository interface {
	Create(ctx context.Context, exec SQLExecutor, post *models.Post) error
	AddMedia(ctx context.Context, exec SQLExecutor, media *models.PostMedia) error
}

type postgresPostRepository struct {
	db *sql.DB
}

func NewPostgresPostRepository(db *sql.DB) PostRepository {
	return &postgresPostRepository{db: db}
}

func (r *postgresPostRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPostRepository) Create(ctx context.Context, exec SQLExecutor, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, caption, visibility, match_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, post.AuthorID, post.Caption, post.Visibility, post.MatchID).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) AddMedia(ctx context.Context, exec SQLExecutor, media *models.PostMedia) error {
	query := `
		INSERT INTO post_media (post_id, media_type, media_url, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, query, media.PostID, media.MediaType, media.MediaURL, media.SortOrder).
		Scan(&media.ID)
	if err != nil {
		return fmt.Errorf("failed to add media to post %s: %w", media.PostID, err)
	}
	return nil
}
