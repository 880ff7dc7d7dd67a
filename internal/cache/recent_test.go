package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
)

// listCache is an in-memory Cache for exercising the ring buffer.
type listCache struct {
	entries map[string][]byte
	lists   map[string][]string
}

func newListCache() *listCache {
	return &listCache{
		entries: make(map[string][]byte),
		lists:   make(map[string][]string),
	}
}

func (c *listCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *listCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *listCache) Del(ctx context.Context, key string) error {
	delete(c.entries, key)
	delete(c.lists, key)
	return nil
}

func (c *listCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.entries[key]
	if !ok {
		_, ok = c.lists[key]
	}
	return ok, nil
}

func (c *listCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (c *listCache) PushList(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.lists[key] = append([]string{string(data)}, c.lists[key]...)
	return nil
}

func (c *listCache) RangeList(ctx context.Context, key string, start, end int64) ([]string, error) {
	list := c.lists[key]
	if start >= int64(len(list)) {
		return nil, nil
	}
	if end >= int64(len(list)) {
		end = int64(len(list)) - 1
	}
	return list[start : end+1], nil
}

func (c *listCache) TrimList(ctx context.Context, key string, start, end int64) error {
	list := c.lists[key]
	if start >= int64(len(list)) {
		c.lists[key] = nil
		return nil
	}
	if end >= int64(len(list)) {
		end = int64(len(list)) - 1
	}
	c.lists[key] = list[start : end+1]
	return nil
}

var _ Cache = (*listCache)(nil)

func summary(id int) models.MessageSummary {
	return models.MessageSummary{
		MessageID:      strconv.Itoa(id),
		ConversationID: "conv-1",
		SenderID:       "alice",
		SenderUsername: "alice",
		Content:        "message " + strconv.Itoa(id),
		MessageType:    models.MessageTypeText,
	}
}

func TestRecentMessagesKeepsNewestFifty(t *testing.T) {
	recent := NewRecentMessages(newListCache())
	ctx := context.Background()

	// Oldest first, the way the write path appends them over time.
	for i := 1; i <= 60; i++ {
		require.NoError(t, recent.CacheRecent(ctx, "conv-1", []models.MessageSummary{summary(i)}))
	}

	cached, err := recent.GetRecent(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, cached, RecentMessageCap)
	assert.Equal(t, "60", cached[0].MessageID)
	assert.Equal(t, "11", cached[len(cached)-1].MessageID)
}

func TestRecentMessagesSkipsUndecodableEntries(t *testing.T) {
	store := newListCache()
	recent := NewRecentMessages(store)
	ctx := context.Background()

	require.NoError(t, recent.CacheRecent(ctx, "conv-1", []models.MessageSummary{summary(1)}))
	store.lists["conversation:conv-1:recentMessages"] = append(
		[]string{"{not json"}, store.lists["conversation:conv-1:recentMessages"]...)

	cached, err := recent.GetRecent(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "1", cached[0].MessageID)
}

func TestInvalidateDropsBuffer(t *testing.T) {
	recent := NewRecentMessages(newListCache())
	ctx := context.Background()

	require.NoError(t, recent.CacheRecent(ctx, "conv-1", []models.MessageSummary{summary(1)}))
	require.NoError(t, recent.Invalidate(ctx, "conv-1"))

	cached, err := recent.GetRecent(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestServeFirstPage(t *testing.T) {
	window := make([]models.MessageSummary, 0, 20)
	for i := 20; i >= 1; i-- {
		window = append(window, summary(i))
	}

	assert.True(t, ServeFirstPage(window, 0, 20))
	assert.True(t, ServeFirstPage(window, 0, 10))
	assert.False(t, ServeFirstPage(window, 10, 10), "non-first pages always read the store")
	assert.False(t, ServeFirstPage(window, 0, 30), "window smaller than the requested page")
	assert.False(t, ServeFirstPage(nil, 0, 1))
}

func TestServeFirstPageRejectsIncompleteEntries(t *testing.T) {
	missingSender := summary(1)
	missingSender.SenderUsername = ""
	assert.False(t, ServeFirstPage([]models.MessageSummary{missingSender}, 0, 1))

	replyWithoutDenorm := summary(2)
	replyWithoutDenorm.ReplyToMessageID = "1"
	assert.False(t, ServeFirstPage([]models.MessageSummary{replyWithoutDenorm}, 0, 1))

	replyWithDenorm := summary(3)
	replyWithDenorm.ReplyToMessageID = "1"
	replyWithDenorm.ReplyToContent = "hello"
	replyWithDenorm.ReplyToUsername = "alice"
	assert.True(t, ServeFirstPage([]models.MessageSummary{replyWithDenorm}, 0, 1))
}
