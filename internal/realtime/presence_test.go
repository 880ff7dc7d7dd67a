package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

// memCache is an in-memory Cache with real TTL expiry, enough to exercise
// the presence and typing state machines without Redis.
type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	lists   map[string][][]byte
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

func newMemCache() *memCache {
	return &memCache{
		entries: make(map[string]memEntry),
		lists:   make(map[string][][]byte),
	}
}

func (m *memCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *memCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(entry.data, dest)
}

func (m *memCache) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	delete(m.lists, key)
	return nil
}

func (m *memCache) Exists(ctx context.Context, key string) (bool, error) {
	var ignored json.RawMessage
	return m.Get(ctx, key, &ignored)
}

func (m *memCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok {
		entry.expiresAt = time.Now().Add(ttl)
		m.entries[key] = entry
	}
	return nil
}

func (m *memCache) PushList(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append([][]byte{data}, m.lists[key]...)
	return nil
}

func (m *memCache) RangeList(ctx context.Context, key string, start, end int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	if start >= int64(len(list)) {
		return nil, nil
	}
	if end >= int64(len(list)) {
		end = int64(len(list)) - 1
	}
	out := make([]string, 0, end-start+1)
	for _, entry := range list[start : end+1] {
		out = append(out, string(entry))
	}
	return out, nil
}

func (m *memCache) TrimList(ctx context.Context, key string, start, end int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	if start >= int64(len(list)) {
		m.lists[key] = nil
		return nil
	}
	if end >= int64(len(list)) {
		end = int64(len(list)) - 1
	}
	m.lists[key] = list[start : end+1]
	return nil
}

// statusRecorder captures broadcast presence changes.
type statusRecorder struct {
	mu     sync.Mutex
	events []models.UserStatus
}

func (r *statusRecorder) UserStatus(userID string, status models.UserStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, status)
}

func (r *statusRecorder) snapshot() []models.UserStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.UserStatus(nil), r.events...)
}

func TestPresenceFirstConnectionBroadcastsOnline(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")

	status := presence.Status(ctx, "alice")
	assert.True(t, status.IsOnline)
	assert.False(t, status.IsActive)
	require.Len(t, sink.snapshot(), 1)
}

func TestPresenceSecondConnectionDoesNotRebroadcast(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	presence.OnConnect(ctx, "alice")

	assert.Len(t, sink.snapshot(), 1)
}

func TestPresenceOfflineOnlyAfterLastDisconnect(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	presence.OnConnect(ctx, "alice")
	presence.OnDisconnect(ctx, "alice")

	assert.True(t, presence.Status(ctx, "alice").IsOnline)

	presence.OnDisconnect(ctx, "alice")

	assert.False(t, presence.Status(ctx, "alice").IsOnline)
	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.False(t, events[1].IsOnline)
}

func TestActivityDecaysBackToOnline(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)
	presence.activityTTL = time.Second
	presence.decayDelay = 20 * time.Millisecond
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	presence.OnActivity(ctx, "alice")

	status := presence.Status(ctx, "alice")
	require.True(t, status.IsActive)

	assert.Eventually(t, func() bool {
		status := presence.Status(ctx, "alice")
		return status.IsOnline && !status.IsActive
	}, time.Second, 5*time.Millisecond)
}

func TestStaleDecayDoesNotOverrideNewerPing(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	presence.OnActivity(ctx, "alice")
	staleSeq := presence.seq
	presence.OnActivity(ctx, "alice")

	presence.decay("alice", staleSeq)

	assert.True(t, presence.Status(ctx, "alice").IsActive)
}

func TestDecayIgnoresAbsentRecord(t *testing.T) {
	sink := &statusRecorder{}
	presence := NewPresence(newMemCache(), sink)

	presence.decay("ghost", 1)

	assert.Empty(t, sink.snapshot())
}

func TestSecondConnectionRefreshesOnlineRecord(t *testing.T) {
	mem := newMemCache()
	presence := NewPresence(mem, &statusRecorder{})
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	// Shrink the record's remaining lifetime, then reconnect.
	require.NoError(t, mem.Expire(ctx, presenceKey("alice"), 10*time.Millisecond))
	presence.OnConnect(ctx, "alice")

	time.Sleep(20 * time.Millisecond)
	assert.True(t, presence.Status(ctx, "alice").IsOnline)
}

func TestRefreshExtendsOnlineRecord(t *testing.T) {
	mem := newMemCache()
	presence := NewPresence(mem, &statusRecorder{})
	ctx := context.Background()

	presence.OnConnect(ctx, "alice")
	require.NoError(t, mem.Expire(ctx, presenceKey("alice"), 10*time.Millisecond))
	presence.Refresh(ctx, "alice")

	time.Sleep(20 * time.Millisecond)
	assert.True(t, presence.Status(ctx, "alice").IsOnline)
}

func TestStatusAbsentKeyMeansOffline(t *testing.T) {
	presence := NewPresence(newMemCache(), &statusRecorder{})

	status := presence.Status(context.Background(), "nobody")

	assert.False(t, status.IsOnline)
	assert.False(t, status.IsActive)
}
