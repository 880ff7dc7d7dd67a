package models

import "time"

// User is an account holder. The user_id is the public string identifier
// used everywhere outside this service.
type User struct {
	UserID        string    `db:"user_id" json:"userId"`
	Username      string    `db:"username" json:"username"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Avatar        string    `db:"avatar" json:"avatar,omitempty"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	EmailVerified bool      `db:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// UserStatus is the presence record kept in the cache, keyed by user id.
// Absence of the key means offline.
type UserStatus struct {
	IsOnline bool `json:"isOnline"`
	IsActive bool `json:"isActive"`
}
