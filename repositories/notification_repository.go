package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/footmatch/models"
)

const notificationColumns = 5

type NotificationRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, notifications []*models.Notification) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNotificationRepository) CreateBatch(ctx context.Context, exec SQLExecutor, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `INSERT INTO notifications (user_id, type, title, body, data) VALUES ` +
		valuesPlaceholders(len(notifications), notificationColumns)

	args := make([]interface{}, 0, len(notifications)*notificationColumns)
	for _, n := range notifications {
		data, err := marshalData(n.Data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data for %s: %w", n.UserID, err)
		}
		args = append(args, n.UserID, n.Type, n.Title, n.Body, data)
	}

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d notifications: %w", len(notifications), err)
	}
	return nil
}

func marshalData(data map[string]string) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(data)
}
