// Package events delivers order state-change notifications to connected
// listeners. Delivery is fire-and-forget: publishing never blocks the write
// path, a slow or dead listener only loses its own events, and any failure is
// logged and swallowed.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	// Channel carries state-change events to other processes (delivery
	// tracking front end) via redis pub/sub.
	Channel = "pedidos:eventos"

	// subscriberBuffer bounds each in-process listener queue. A listener that
	// cannot keep up drops events rather than backpressuring the publisher.
	subscriberBuffer = 16
)

// PedidoEvent describes one order state change.
type PedidoEvent struct {
	PedidoID   int64     `json:"pedido_id"`
	Estado     string    `json:"estado"`
	Repartidor *string   `json:"repartidor,omitempty"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
}

// Broadcaster fans events out to redis and to in-process SSE subscribers.
// A nil *Broadcaster is safe to publish to (unit test mode).
type Broadcaster struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan PedidoEvent]struct{}
}

func NewBroadcaster(rdb *redis.Client) *Broadcaster {
	return &Broadcaster{
		rdb:  rdb,
		subs: make(map[chan PedidoEvent]struct{}),
	}
}

// Publish sends ev to every listener. It returns immediately; redis delivery
// happens on a separate goroutine and in-process sends are non-blocking.
func (b *Broadcaster) Publish(ev PedidoEvent) {
	if b == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Listener queue full: drop for this listener only.
			log.Debug().Int64("pedido_id", ev.PedidoID).Msg("events: listener lagging, event dropped")
		}
	}
	b.mu.Unlock()

	if b.rdb == nil {
		return
	}
	go func() {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("events: marshal event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rdb.Publish(ctx, Channel, data).Err(); err != nil {
			log.Warn().Err(err).Msg("events: redis publish failed")
		}
	}()
}

// Subscribe registers an in-process listener. The returned cancel func must be
// called when the listener disconnects; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan PedidoEvent, func()) {
	ch := make(chan PedidoEvent, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
