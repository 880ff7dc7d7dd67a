package realtime

import (
	"time"

	"messenger-service/internal/models"
)

// Target addresses an event: one room, a set of users' personal channels,
// or every connection.
type Target struct {
	Kind    string   `json:"kind"`
	Room    string   `json:"room,omitempty"`
	UserIDs []string `json:"userIds,omitempty"`
}

// Target kinds.
const (
	TargetRoom   = "room"
	TargetUsers  = "users"
	TargetGlobal = "global"
)

func RoomTarget(roomID string) Target { return Target{Kind: TargetRoom, Room: roomID} }

func UsersTarget(userIDs []string) Target { return Target{Kind: TargetUsers, UserIDs: userIDs} }

func GlobalTarget() Target { return Target{Kind: TargetGlobal} }

// EventRelay forwards events to sibling processes. Implemented by Relay;
// nil-safe absence means single-process operation.
type EventRelay interface {
	Publish(target Target, event Event)
}

// Notifier is the event dispatch surface: application mutations call its
// typed methods and it fans the event out to the right local connections
// and, through the relay, to other processes. Delivery is fire and forget;
// a mutation's outcome never depends on who was listening.
type Notifier struct {
	hub   *Hub
	relay EventRelay
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// SetRelay attaches the cross-process relay. Called once at startup, before
// any traffic.
func (n *Notifier) SetRelay(relay EventRelay) {
	n.relay = relay
}

// Dispatch delivers the event locally and hands it to the relay.
func (n *Notifier) Dispatch(target Target, event Event) {
	n.DeliverLocal(target, event)
	if n.relay != nil {
		n.relay.Publish(target, event)
	}
}

// DeliverLocal delivers to this process's connections only. The relay uses
// it for events that arrived from other processes.
func (n *Notifier) DeliverLocal(target Target, event Event) {
	switch target.Kind {
	case TargetRoom:
		n.hub.Broadcast(target.Room, event)
	case TargetUsers:
		n.hub.BroadcastToUsers(target.UserIDs, event)
	case TargetGlobal:
		n.hub.BroadcastAll(event)
	}
}

// NewMessage pushes a created message to the conversation room.
func (n *Notifier) NewMessage(conversationID string, message models.MessageSummary) {
	n.Dispatch(RoomTarget(conversationID), newMessageEvent(EventNewMessage, message))
}

// MessageUpdated pushes an edited message to the conversation room.
func (n *Notifier) MessageUpdated(conversationID string, message models.MessageSummary) {
	n.Dispatch(RoomTarget(conversationID), newMessageEvent(EventMessageUpdated, message))
}

// ConversationCreated tells each participant, on their personal channel,
// that a conversation now includes them.
func (n *Notifier) ConversationCreated(conversationID string, participantIDs []string) {
	n.Dispatch(UsersTarget(participantIDs), Event{
		Event:   EventConversationCreated,
		Payload: ConversationPayload{ConversationID: conversationID},
	})
}

// ConversationUpdated tells each participant the conversation changed.
func (n *Notifier) ConversationUpdated(conversationID string, participantIDs []string) {
	n.Dispatch(UsersTarget(participantIDs), Event{
		Event:   EventConversationUpdated,
		Payload: ConversationPayload{ConversationID: conversationID},
	})
}

// ParticipantAdded pushes the new participant to the conversation room.
func (n *Notifier) ParticipantAdded(conversationID string, participant models.Participant) {
	n.Dispatch(RoomTarget(conversationID), Event{Event: EventParticipantAdded, Payload: participant})
}

// ParticipantUpdated pushes a role or profile change to the room.
func (n *Notifier) ParticipantUpdated(conversationID string, participant models.Participant) {
	n.Dispatch(RoomTarget(conversationID), Event{Event: EventParticipantUpdated, Payload: participant})
}

// ParticipantRemoved tells the room someone left or was removed, and
// additionally delivers a personalized copy to the removed user's own
// channel so they learn about it even when not viewing the conversation.
func (n *Notifier) ParticipantRemoved(conversationID, removedUserID, removedByUserID, reason string) {
	payload := ParticipantRemovedPayload{
		ConversationID:  conversationID,
		RemovedUserID:   removedUserID,
		RemovedByUserID: removedByUserID,
		Reason:          reason,
		Timestamp:       time.Now().UTC(),
	}
	n.Dispatch(RoomTarget(conversationID), Event{Event: EventParticipantRemoved, Payload: payload})

	personal := payload
	if reason == RemovalReasonLeft {
		personal.Message = "You have left the conversation"
	} else {
		personal.Message = "You have been removed from the conversation"
	}
	n.Dispatch(UsersTarget([]string{removedUserID}), Event{Event: EventParticipantRemoved, Payload: personal})
}

// JoinRequestCreated surfaces a new join request to the conversation's
// admins and moderators only.
func (n *Notifier) JoinRequestCreated(request models.JoinRequest, moderatorIDs []string) {
	n.Dispatch(UsersTarget(moderatorIDs), Event{Event: EventJoinRequestCreated, Payload: request})
}

// JoinRequestUpdated pushes the decision to the conversation room.
func (n *Notifier) JoinRequestUpdated(request models.JoinRequest) {
	n.Dispatch(RoomTarget(request.ConversationID), Event{Event: EventJoinRequestUpdated, Payload: request})
}

// UserStatus broadcasts a presence change to everyone. Low cardinality, so
// an unscoped broadcast is acceptable.
func (n *Notifier) UserStatus(userID string, status models.UserStatus) {
	n.Dispatch(GlobalTarget(), Event{
		Event:   EventUserStatus,
		Payload: UserStatusPayload{UserID: userID, IsOnline: status.IsOnline, IsActive: status.IsActive},
	})
}

// Typing broadcasts a typing flag to the conversation room.
func (n *Notifier) Typing(conversationID, userID string, isTyping bool) {
	n.Dispatch(RoomTarget(conversationID), Event{
		Event:   EventTyping,
		Payload: TypingPayload{UserID: userID, IsTyping: isTyping},
	})
}

var (
	_ StatusSink = (*Notifier)(nil)
	_ TypingSink = (*Notifier)(nil)
)
