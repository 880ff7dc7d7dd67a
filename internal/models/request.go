package models

import "time"

// Request statuses shared by friend and join requests.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusAccepted = "ACCEPTED"
	RequestStatusRejected = "REJECTED"
)

// FriendRequest is a pending friendship between two users.
type FriendRequest struct {
	RequestID   int64      `db:"request_id" json:"requestId,string"`
	SenderID    string     `db:"sender_id" json:"senderId"`
	ReceiverID  string     `db:"receiver_id" json:"receiverId"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	RespondedAt *time.Time `db:"responded_at" json:"respondedAt,omitempty"`
}

// JoinRequest asks admission into a group conversation. Pending requests are
// surfaced to the conversation's admins and moderators.
type JoinRequest struct {
	RequestID      int64      `db:"request_id" json:"requestId,string"`
	ConversationID string     `db:"conversation_id" json:"conversationId"`
	UserID         string     `db:"user_id" json:"userId"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	RespondedAt    *time.Time `db:"responded_at" json:"respondedAt,omitempty"`

	Username string `db:"username" json:"username,omitempty"`
}
