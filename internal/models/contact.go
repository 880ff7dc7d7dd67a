package models

import "time"

// Contact is a saved entry in a user's address book.
type Contact struct {
	ContactID     int64     `db:"contact_id" json:"contactId,string"`
	UserID        string    `db:"user_id" json:"userId"`
	ContactUserID string    `db:"contact_user_id" json:"contactUserId"`
	Alias         string    `db:"alias" json:"alias,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	Username string `db:"username" json:"username,omitempty"`
	Avatar   string `db:"avatar" json:"avatar,omitempty"`
}
