package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *Hub) {
	hub := NewHub()
	notifier := NewNotifier(hub)
	presence := NewPresence(newMemCache(), notifier)
	typing := NewTyping(newMemCache(), notifier)
	return NewHandler(hub, presence, typing), hub
}

func TestHandleCommandMalformedJSON(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.handleCommand(client, []byte("{nope"))

	event := received(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestHandleCommandJoinRoomAcks(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.handleCommand(client, []byte(`{"command":"joinRoom","conversationId":"conv-1"}`))

	event := received(t, client)
	assert.Equal(t, EventRoomJoined, event.Event)
	assert.Equal(t, 1, hub.RoomSize("conv-1"))
}

func TestHandleCommandJoinRoomRejectsEmptyID(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.handleCommand(client, []byte(`{"command":"joinRoom"}`))

	event := received(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestHandleCommandTypingBroadcastsToRoom(t *testing.T) {
	handler, hub := newTestHandler()
	sender := newTestClient("alice")
	peer := newTestClient("bob")
	hub.Register(sender)
	hub.Register(peer)
	require.NoError(t, hub.Join(sender, "conv-1"))
	require.NoError(t, hub.Join(peer, "conv-1"))

	handler.handleCommand(sender, []byte(`{"command":"typing","conversationId":"conv-1","isTyping":true}`))

	assert.Equal(t, EventTyping, received(t, peer).Event)
}

func TestHandleCommandTypingRequiresConversation(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.handleCommand(client, []byte(`{"command":"typing","isTyping":true}`))

	event := received(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestHandleCommandUnknown(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.handleCommand(client, []byte(`{"command":"selfDestruct"}`))

	event := received(t, client)
	assert.Equal(t, EventError, event.Event)
}

func TestHandleCommandUserActivityMarksActive(t *testing.T) {
	handler, hub := newTestHandler()
	client := newTestClient("alice")
	hub.Register(client)

	handler.presence.OnConnect(context.Background(), "alice")
	handler.handleCommand(client, []byte(`{"command":"userActivity"}`))

	status := handler.presence.Status(context.Background(), "alice")
	assert.True(t, status.IsActive)
}
