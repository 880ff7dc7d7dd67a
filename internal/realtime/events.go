package realtime

import (
	"time"

	"messenger-service/internal/models"
)

// Event names delivered to clients. Together with the payload types below
// they form the server-to-client wire catalog.
const (
	EventNewMessage          = "newMessage"
	EventMessageUpdated      = "messageUpdated"
	EventConversationCreated = "conversationCreated"
	EventConversationUpdated = "conversationUpdated"
	EventParticipantAdded    = "participantAdded"
	EventParticipantUpdated  = "participantUpdated"
	EventParticipantRemoved  = "participantRemoved"
	EventJoinRequestCreated  = "joinRequestCreated"
	EventJoinRequestUpdated  = "joinRequestUpdated"
	EventUserStatus          = "userStatus"
	EventTyping              = "typing"
	EventRoomJoined          = "roomJoined"
	EventError               = "error"
)

// Client-to-server command names.
const (
	CommandJoinRoom     = "joinRoom"
	CommandTyping       = "typing"
	CommandUserActivity = "userActivity"
)

// Event is one server-to-client notification. Delivery is fire and forget.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// UserStatusPayload is broadcast globally on presence changes.
type UserStatusPayload struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
	IsActive bool   `json:"isActive"`
}

// TypingPayload is broadcast to the conversation room.
type TypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ConversationPayload carries just the conversation id, targeted at the
// participants' personal channels.
type ConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

// ParticipantRemovedPayload is broadcast to the room when someone leaves or
// is removed. The copy delivered to the removed user additionally carries a
// human-readable Message.
type ParticipantRemovedPayload struct {
	ConversationID  string    `json:"conversationId"`
	RemovedUserID   string    `json:"removedUserId"`
	RemovedByUserID string    `json:"removedByUserId,omitempty"`
	Reason          string    `json:"reason"`
	Timestamp       time.Time `json:"timestamp"`
	Message         string    `json:"message,omitempty"`
}

// Removal reasons.
const (
	RemovalReasonLeft    = "left"
	RemovalReasonRemoved = "removed"
)

// RoomJoinedPayload acknowledges a joinRoom command.
type RoomJoinedPayload struct {
	ConversationID string `json:"conversationId"`
}

// ErrorPayload is sent only to the connection that issued a bad command.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Command is a client-to-server frame.
type Command struct {
	Command        string `json:"command"`
	ConversationID string `json:"conversationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
	IsTyping       bool   `json:"isTyping,omitempty"`
}

func newMessageEvent(name string, message models.MessageSummary) Event {
	return Event{Event: name, Payload: message}
}
