package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{
		ConnID: newConnID(),
		UserID: userID,
		send:   make(chan []byte, sendBuffer),
	}
}

func received(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected an event in the send buffer")
		return Event{}
	}
}

func TestBroadcastReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	eve := newTestClient("eve")
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(eve)

	require.NoError(t, hub.Join(alice, "conv-1"))
	require.NoError(t, hub.Join(bob, "conv-1"))
	require.NoError(t, hub.Join(eve, "conv-2"))

	hub.Broadcast("conv-1", Event{Event: EventNewMessage, Payload: map[string]string{"content": "hi"}})

	assert.Equal(t, EventNewMessage, received(t, alice).Event)
	assert.Equal(t, EventNewMessage, received(t, bob).Event)
	assert.Empty(t, eve.send)
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	client := newTestClient("alice")
	hub.Register(client)

	require.NoError(t, hub.Join(client, "conv-1"))
	require.NoError(t, hub.Join(client, "conv-1"))
	assert.Equal(t, 1, hub.RoomSize("conv-1"))

	hub.Broadcast("conv-1", Event{Event: EventTyping})
	assert.Equal(t, EventTyping, received(t, client).Event)
	assert.Empty(t, client.send)
}

func TestJoinRejectsEmptyRoom(t *testing.T) {
	hub := NewHub()
	client := newTestClient("alice")
	hub.Register(client)

	assert.ErrorIs(t, hub.Join(client, ""), ErrInvalidRoom)
}

func TestUnregisterPrunesRoomsAndClosesSend(t *testing.T) {
	hub := NewHub()
	client := newTestClient("alice")
	hub.Register(client)
	require.NoError(t, hub.Join(client, "conv-1"))
	require.NoError(t, hub.Join(client, "conv-2"))

	remaining := hub.Unregister(client)

	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, hub.RoomSize("conv-1"))
	assert.Equal(t, 0, hub.RoomSize("conv-2"))
	assert.Equal(t, 0, hub.UserConnectionCount("alice"))

	_, open := <-client.send
	assert.False(t, open)

	// A second unregister must not panic or double close.
	assert.Equal(t, 0, hub.Unregister(client))
}

func TestRegisterCountsConnectionsPerUser(t *testing.T) {
	hub := NewHub()
	first := newTestClient("alice")
	second := newTestClient("alice")

	assert.Equal(t, 1, hub.Register(first))
	assert.Equal(t, 2, hub.Register(second))
	assert.Equal(t, 1, hub.Unregister(first))
	assert.Equal(t, 0, hub.Unregister(second))
}

func TestBroadcastToUsersHitsEveryConnection(t *testing.T) {
	hub := NewHub()
	tabOne := newTestClient("alice")
	tabTwo := newTestClient("alice")
	other := newTestClient("bob")
	hub.Register(tabOne)
	hub.Register(tabTwo)
	hub.Register(other)

	hub.BroadcastToUsers([]string{"alice"}, Event{Event: EventConversationCreated})

	assert.Equal(t, EventConversationCreated, received(t, tabOne).Event)
	assert.Equal(t, EventConversationCreated, received(t, tabTwo).Event)
	assert.Empty(t, other.send)
}

func TestBroadcastAllReachesEveryClient(t *testing.T) {
	hub := NewHub()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.Register(alice)
	hub.Register(bob)

	hub.BroadcastAll(Event{Event: EventUserStatus})

	assert.Equal(t, EventUserStatus, received(t, alice).Event)
	assert.Equal(t, EventUserStatus, received(t, bob).Event)
}

func TestSendToTargetsSingleConnection(t *testing.T) {
	hub := NewHub()
	alice := newTestClient("alice")
	bob := newTestClient("bob")
	hub.Register(alice)
	hub.Register(bob)

	hub.SendTo(alice, Event{Event: EventError, Payload: ErrorPayload{Message: "bad command"}})

	assert.Equal(t, EventError, received(t, alice).Event)
	assert.Empty(t, bob.send)
}
