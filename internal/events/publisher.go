package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel notification workers subscribe to.
const Channel = "distro:events"

// Publisher emits committed domain events over Redis pub/sub. It is
// fire-and-forget with its own retry: a publish failure is logged and
// dropped, never surfaced to the settlement that produced the event.
type Publisher struct {
	client  *redis.Client
	retries int
	backoff time.Duration
}

// NewPublisher wraps an already-connected client. A nil client degrades
// to log-only publishing so the engine runs without Redis in development.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, retries: 3, backoff: 200 * time.Millisecond}
}

// Publish sends every event, retrying each a few times. Call only after
// the settlement transaction has committed.
func (p *Publisher) Publish(ctx context.Context, evts []Event) {
	for _, evt := range evts {
		p.publishOne(ctx, evt)
	}
}

// PublishAsync hands the batch to a goroutine so the HTTP response does
// not wait on Redis. The detached context keeps publishing alive after
// the request context is cancelled.
func (p *Publisher) PublishAsync(evts []Event) {
	if len(evts) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.Publish(ctx, evts)
	}()
}

func (p *Publisher) publishOne(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[Events] drop %s: encode failed: %v", evt.Type, err)
		return
	}

	if p.client == nil {
		log.Printf("[Events] %s %s", evt.Type, payload)
		return
	}

	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				log.Printf("[Events] drop %s: %v", evt.Type, ctx.Err())
				return
			case <-time.After(p.backoff * time.Duration(attempt)):
			}
		}
		if err = p.client.Publish(ctx, Channel, payload).Err(); err == nil {
			return
		}
	}
	log.Printf("[Events] drop %s after %d attempts: %v", evt.Type, p.retries+1, err)
}
