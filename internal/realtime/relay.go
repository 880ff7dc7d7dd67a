package realtime

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const relayChannel = "messenger:events"

// relayEnvelope wraps an event with its target and the publishing process's
// origin id, so a process can skip its own publications.
type relayEnvelope struct {
	Origin string          `json:"origin"`
	Target Target          `json:"target"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// Relay carries broadcasts between server processes over Redis pub/sub.
// The in-process hub only knows its own connections; every dispatched event
// is also published here, and the subscriber loop re-delivers events that
// originated elsewhere to the local hub.
type Relay struct {
	client   *redis.Client
	notifier *Notifier
	origin   string
}

func NewRelay(client *redis.Client, notifier *Notifier) *Relay {
	return &Relay{
		client:   client,
		notifier: notifier,
		origin:   newConnID(),
	}
}

// Publish sends the event to sibling processes. Fire and forget: a publish
// failure is logged, never surfaced to the mutation that triggered it.
func (r *Relay) Publish(target Target, event Event) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		log.Printf("relay publish %s: marshal payload: %v", event.Event, err)
		return
	}
	envelope, err := json.Marshal(relayEnvelope{
		Origin: r.origin,
		Target: target,
		Event:  event.Event,
		Data:   payload,
	})
	if err != nil {
		log.Printf("relay publish %s: marshal envelope: %v", event.Event, err)
		return
	}
	if err := r.client.Publish(context.Background(), relayChannel, envelope).Err(); err != nil {
		log.Printf("relay publish %s failed: %v", event.Event, err)
	}
}

// Run subscribes and re-delivers foreign events to the local hub until ctx
// is cancelled. Intended to run in its own goroutine.
func (r *Relay) Run(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var envelope relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Printf("relay: dropping undecodable envelope: %v", err)
				continue
			}
			if envelope.Origin == r.origin {
				continue
			}
			r.notifier.DeliverLocal(envelope.Target, Event{
				Event:   envelope.Event,
				Payload: envelope.Data,
			})
		}
	}
}
