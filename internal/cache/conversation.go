package cache

import (
	"context"
	"fmt"
	"time"

	"messenger-service/internal/models"
)

// ConversationTTL bounds how long a cached conversation may serve reads
// before the durable store is consulted again.
const ConversationTTL = time.Hour

// Conversations is a read-through cache of whole conversation rows keyed by
// id. Writes store the fresh row after every mutation; reads fall back to
// the durable store on a miss.
type Conversations struct {
	cache Cache
}

func NewConversations(cache Cache) *Conversations {
	return &Conversations{cache: cache}
}

func conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

// Cache stores the conversation for ConversationTTL. Callers treat failures
// as non-fatal; the durable write already happened.
func (c *Conversations) Cache(ctx context.Context, conversation models.Conversation) error {
	return c.cache.Set(ctx, conversationKey(conversation.ConversationID), conversation, ConversationTTL)
}

// Get returns the cached conversation when present.
func (c *Conversations) Get(ctx context.Context, conversationID string) (models.Conversation, bool) {
	var conversation models.Conversation
	found, err := c.cache.Get(ctx, conversationKey(conversationID), &conversation)
	if err != nil || !found {
		return models.Conversation{}, false
	}
	return conversation, true
}

// Invalidate drops the cached conversation.
func (c *Conversations) Invalidate(ctx context.Context, conversationID string) error {
	return c.cache.Del(ctx, conversationKey(conversationID))
}
