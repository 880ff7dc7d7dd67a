package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"messenger-service/internal/cache"
	"messenger-service/internal/models"
)

// Presence TTLs. Online state persists on a long TTL refreshed by the
// connection lifecycle; activity is short-lived and decays on its own when
// pings stop arriving.
const (
	OnlineTTL      = time.Hour
	ActivityTTL    = 60 * time.Second
	decayAfter     = 10 * time.Second
	presenceKeyFmt = "user:%s:status"
)

// StatusSink receives presence changes to broadcast. Implemented by the
// Notifier; tests substitute their own.
type StatusSink interface {
	UserStatus(userID string, status models.UserStatus)
}

type presenceRecord struct {
	IsOnline bool  `json:"isOnline"`
	IsActive bool  `json:"isActive"`
	Seq      int64 `json:"seq"`
}

// Presence tracks users' online/active status. The cache is the source of
// truth so every server process observes the same state; the in-process
// part is only the per-user connection count, which keeps one tab closing
// from flapping a user offline while another tab is still connected.
type Presence struct {
	cache cache.Cache
	sink  StatusSink

	mu    sync.Mutex
	conns map[string]int
	seq   int64

	// Overridable in tests.
	activityTTL time.Duration
	decayDelay  time.Duration
}

func NewPresence(c cache.Cache, sink StatusSink) *Presence {
	return &Presence{
		cache:       c,
		sink:        sink,
		conns:       make(map[string]int),
		activityTTL: ActivityTTL,
		decayDelay:  decayAfter,
	}
}

func presenceKey(userID string) string {
	return fmt.Sprintf(presenceKeyFmt, userID)
}

// OnConnect records one more live connection for the user. The first one
// marks the user online and broadcasts the change; later ones only extend
// the record's lifetime.
func (p *Presence) OnConnect(ctx context.Context, userID string) {
	p.mu.Lock()
	p.conns[userID]++
	first := p.conns[userID] == 1
	p.mu.Unlock()
	if !first {
		p.Refresh(ctx, userID)
		return
	}
	p.write(ctx, userID, presenceRecord{IsOnline: true}, OnlineTTL)
}

// Refresh extends the online record's TTL without touching its contents or
// broadcasting. The websocket heartbeat calls it on every pong so a
// connection outliving the TTL does not read as offline.
func (p *Presence) Refresh(ctx context.Context, userID string) {
	if err := p.cache.Expire(ctx, presenceKey(userID), OnlineTTL); err != nil {
		log.Printf("presence refresh for user %s failed: %v", userID, err)
	}
}

// OnDisconnect drops one connection. Only when the user's last connection
// goes does the user become offline; the original gateway marked a user
// offline on any single disconnect, which misbehaves with several tabs or
// devices open.
func (p *Presence) OnDisconnect(ctx context.Context, userID string) {
	p.mu.Lock()
	if p.conns[userID] > 0 {
		p.conns[userID]--
	}
	last := p.conns[userID] == 0
	if last {
		delete(p.conns, userID)
	}
	p.mu.Unlock()
	if !last {
		return
	}
	p.write(ctx, userID, presenceRecord{}, OnlineTTL)
}

// OnActivity marks the user active and schedules a decay check. The check
// re-reads the record before downgrading: a sequence number stamped on each
// ping lets a stale decay recognize that a fresher ping has superseded it.
func (p *Presence) OnActivity(ctx context.Context, userID string) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.write(ctx, userID, presenceRecord{IsOnline: true, IsActive: true, Seq: seq}, p.activityTTL)

	time.AfterFunc(p.decayDelay, func() {
		p.decay(userID, seq)
	})
}

// decay downgrades an active user back to merely online unless a newer
// activity ping refreshed the record in the meantime. Absence of the key
// means the user is gone entirely; nothing to do.
func (p *Presence) decay(userID string, seq int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var record presenceRecord
	found, _ := p.cache.Get(ctx, presenceKey(userID), &record)
	if !found {
		return
	}
	if !record.IsActive || record.Seq != seq {
		// A newer ping or a disconnect won the race.
		return
	}
	p.write(ctx, userID, presenceRecord{IsOnline: record.IsOnline, Seq: seq}, OnlineTTL)
}

// Status reads the user's current presence; a missing key is offline.
func (p *Presence) Status(ctx context.Context, userID string) models.UserStatus {
	var record presenceRecord
	found, _ := p.cache.Get(ctx, presenceKey(userID), &record)
	if !found {
		return models.UserStatus{}
	}
	return models.UserStatus{IsOnline: record.IsOnline, IsActive: record.IsActive}
}

func (p *Presence) write(ctx context.Context, userID string, record presenceRecord, ttl time.Duration) {
	if err := p.cache.Set(ctx, presenceKey(userID), record, ttl); err != nil {
		// Presence is best effort: the broadcast still goes out so connected
		// clients converge, and the TTL keeps the cache self-healing.
		log.Printf("presence write for user %s failed: %v", userID, err)
	}
	p.sink.UserStatus(userID, models.UserStatus{IsOnline: record.IsOnline, IsActive: record.IsActive})
}
