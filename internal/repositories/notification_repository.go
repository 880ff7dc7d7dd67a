package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines interactions with stored notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, userID, kind, payload string) (models.Notification, error)
	ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) CreateNotification(ctx context.Context, userID, kind, payload string) (models.Notification, error) {
	var notification models.Notification
	err := r.db.GetContext(ctx, &notification,
		`INSERT INTO notifications (user_id, kind, payload) VALUES ($1, $2, $3)
         RETURNING notification_id, user_id, kind, payload, is_read, created_at`,
		userID, kind, payload)
	return notification, err
}

func (r *NotificationRepo) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT notification_id, user_id, kind, payload, is_read, created_at
         FROM notifications WHERE user_id=$1
         ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	return notifications, err
}

func (r *NotificationRepo) MarkRead(ctx context.Context, userID string, notificationID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND notification_id=$2`, userID, notificationID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotificationNotFound)
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND is_read=FALSE`, userID)
	return err
}
