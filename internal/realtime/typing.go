package realtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"messenger-service/internal/cache"
)

// TypingTTL bounds how long a typing flag lives without renewal. There is
// no explicit stop event: expiry alone reverts the state, and clients infer
// stopped typing from the absence of renewed events.
const TypingTTL = 10 * time.Second

// TypingSink receives typing changes to broadcast to the conversation room.
type TypingSink interface {
	Typing(conversationID, userID string, isTyping bool)
}

type typingRecord struct {
	IsTyping bool `json:"isTyping"`
}

// Typing is the per-user-per-conversation typing indicator.
type Typing struct {
	cache cache.Cache
	sink  TypingSink

	ttl time.Duration
}

func NewTyping(c cache.Cache, sink TypingSink) *Typing {
	return &Typing{cache: c, sink: sink, ttl: TypingTTL}
}

func typingKey(conversationID, userID string) string {
	return fmt.Sprintf("conversation:%s:typing:%s", conversationID, userID)
}

// Set records the flag with a short TTL and broadcasts it to the room.
// A failed cache write is logged only; the broadcast is what clients see,
// and the record (or its absence) is meaningful only to cross-process reads.
func (t *Typing) Set(ctx context.Context, conversationID, userID string, isTyping bool) {
	if err := t.cache.Set(ctx, typingKey(conversationID, userID), typingRecord{IsTyping: isTyping}, t.ttl); err != nil {
		log.Printf("typing write for user %s in conversation %s failed: %v", userID, conversationID, err)
	}
	t.sink.Typing(conversationID, userID, isTyping)
}

// IsTyping reads the current flag; an absent or expired key is not-typing.
func (t *Typing) IsTyping(ctx context.Context, conversationID, userID string) bool {
	var record typingRecord
	found, _ := t.cache.Get(ctx, typingKey(conversationID, userID), &record)
	return found && record.IsTyping
}
