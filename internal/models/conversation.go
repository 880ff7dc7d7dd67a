package models

import "time"

// Conversation is a chat between two or more participants.
type Conversation struct {
	ConversationID string    `db:"conversation_id" json:"conversationId"`
	Title          string    `db:"title" json:"title,omitempty"`
	Avatar         string    `db:"avatar" json:"avatar,omitempty"`
	IsGroup        bool      `db:"is_group" json:"isGroup"`
	CreatorID      string    `db:"creator_id" json:"creatorId"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Participant roles.
const (
	RoleMember    = "MEMBER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// Participant links a user to a conversation. A non-nil LeftAt means the
// user left or was removed; the row is kept for history.
type Participant struct {
	ID             int64      `db:"id" json:"-"`
	ConversationID string     `db:"conversation_id" json:"conversationId"`
	UserID         string     `db:"user_id" json:"userId"`
	Role           string     `db:"role" json:"role"`
	JoinedAt       time.Time  `db:"joined_at" json:"joinedAt"`
	LeftAt         *time.Time `db:"left_at" json:"leftAt,omitempty"`

	// Denormalized for API responses, not stored on the row.
	Username string `db:"username" json:"username,omitempty"`
	Avatar   string `db:"avatar" json:"avatar,omitempty"`
}
