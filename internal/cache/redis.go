package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kasir-pos/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "pos:cache:invalidate"

// Event is the message published for every signal.
type Event struct {
	Scope      Scope     `json:"scope"`
	TerminalID string    `json:"terminal_id"`
	At         time.Time `json:"at"`
}

// RedisPublisher broadcasts signals to the other terminals of the store.
type RedisPublisher struct {
	client     *redis.Client
	channel    string
	terminalID string
	now        func() time.Time
}

func NewRedisPublisher(client *redis.Client, channel, terminalID string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client:     client,
		channel:    channel,
		terminalID: terminalID,
		now:        time.Now,
	}
}

func (p *RedisPublisher) InvalidateTransactions(ctx context.Context) {
	p.publish(ctx, ScopeTransactions)
}

func (p *RedisPublisher) InvalidateStock(ctx context.Context) {
	p.publish(ctx, ScopeStock)
}

func (p *RedisPublisher) InvalidateProducts(ctx context.Context) {
	p.publish(ctx, ScopeProducts)
}

func (p *RedisPublisher) publish(ctx context.Context, scope Scope) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "cache"),
		zap.String("channel", p.channel),
		zap.String("scope", string(scope)),
	)

	payload, err := json.Marshal(Event{Scope: scope, TerminalID: p.terminalID, At: p.now().UTC()})
	if err != nil {
		log.Error("failed to marshal invalidation", zap.Error(err))
		return
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Warn("failed to publish invalidation", zap.Error(err))
		return
	}
	log.Debug("invalidation published")
}

// Listener applies invalidations published by other terminals.
type Listener struct {
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

// Listen subscribes to channel and forwards every event not sent by self to
// target until Close is called or ctx ends.
func Listen(ctx context.Context, client *redis.Client, channel, self string, target Invalidator) (*Listener, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	l := &Listener{pubsub: pubsub, done: make(chan struct{})}
	go l.run(ctx, self, target)
	return l, nil
}

func (l *Listener) run(ctx context.Context, self string, target Invalidator) {
	defer close(l.done)
	log := logger.FromCtx(ctx).With(zap.String("layer", "cache"), zap.String("method", "Listen"))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-l.pubsub.Channel():
			if !ok {
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("ignoring malformed invalidation", zap.String("payload", msg.Payload))
				continue
			}
			if ev.TerminalID == self {
				continue
			}

			log.Debug("applying remote invalidation",
				zap.String("scope", string(ev.Scope)),
				zap.String("from", ev.TerminalID),
			)
			Invalidate(ctx, target, ev.Scope)
		}
	}
}

func (l *Listener) Close() error {
	var err error
	l.once.Do(func() {
		err = l.pubsub.Close()
		<-l.done
	})
	return err
}
