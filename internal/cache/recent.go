package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"messenger-service/internal/models"
)

// RecentMessageCap bounds the per-conversation ring buffer.
const RecentMessageCap = 50

// RecentMessages is the per-conversation bounded ring buffer of message
// summaries, newest first. It accelerates first-page reads; the durable
// store stays authoritative.
type RecentMessages struct {
	cache Cache
}

func NewRecentMessages(cache Cache) *RecentMessages {
	return &RecentMessages{cache: cache}
}

func recentKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:recentMessages", conversationID)
}

// CacheRecent prepends messages to the conversation's buffer, then trims to
// the cap. Failures are returned but callers treat them as non-fatal; a
// durable-store write never rolls back because caching failed.
func (r *RecentMessages) CacheRecent(ctx context.Context, conversationID string, messages []models.MessageSummary) error {
	key := recentKey(conversationID)
	for _, msg := range messages {
		if err := r.cache.PushList(ctx, key, msg); err != nil {
			return err
		}
	}
	return r.cache.TrimList(ctx, key, 0, RecentMessageCap-1)
}

// GetRecent returns the cached window, newest first. Entries that fail to
// decode are skipped; a read failure yields an empty slice.
func (r *RecentMessages) GetRecent(ctx context.Context, conversationID string) ([]models.MessageSummary, error) {
	raw, err := r.cache.RangeList(ctx, recentKey(conversationID), 0, RecentMessageCap-1)
	if err != nil {
		return nil, nil
	}
	messages := make([]models.MessageSummary, 0, len(raw))
	for _, entry := range raw {
		var msg models.MessageSummary
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			log.Printf("recent messages: skipping undecodable entry for conversation %s: %v", conversationID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Invalidate drops the conversation's buffer entirely.
func (r *RecentMessages) Invalidate(ctx context.Context, conversationID string) error {
	return r.cache.Del(ctx, recentKey(conversationID))
}

// ServeFirstPage reports whether the cached window can answer a first-page
// read of the given limit: the request must target offset 0, the window must
// hold at least limit entries and every one of them must be complete.
// Completeness is a versioning guard against entries cached before the
// denormalized sender and reply fields were required.
func ServeFirstPage(cached []models.MessageSummary, offset, limit int) bool {
	if offset != 0 || len(cached) < limit {
		return false
	}
	for _, msg := range cached {
		if !msg.Complete() {
			return false
		}
	}
	return true
}
