package models

import "time"

// Notification is a stored user notification listed over REST. Realtime
// events are never persisted; these rows are written alongside them for
// users who were offline at delivery time.
type Notification struct {
	NotificationID int64     `db:"notification_id" json:"notificationId,string"`
	UserID         string    `db:"user_id" json:"userId"`
	Kind           string    `db:"kind" json:"kind"`
	Payload        string    `db:"payload" json:"payload"`
	IsRead         bool      `db:"is_read" json:"isRead"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
