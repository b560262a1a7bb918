// Package notice carries the short user-facing messages the POS screen shows
// as toasts. Core operations emit a notice whenever they reject or adjust a
// request so the cashier always knows what happened.
package notice

import (
	"context"
	"sync"

	"kasir-pos/internal/logger"

	"go.uber.org/zap"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Collector buffers notices until the caller drains them, typically once per
// HTTP response.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Drain returns everything collected so far and resets the buffer.
func (c *Collector) Drain() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Log writes notices to the context logger.
type Log struct{}

func (Log) Notify(ctx context.Context, n Notice) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "notice"))
	switch n.Level {
	case LevelError:
		log.Error(n.Message)
	case LevelWarning:
		log.Warn(n.Message)
	default:
		log.Info(n.Message)
	}
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

type collectorKey struct{}

// WithCollector attaches c to ctx so Request can route notices to it.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

func CollectorFrom(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok
}

// Request delivers a notice to the collector of the request that caused it.
// Notices raised outside a request are dropped.
type Request struct{}

func (Request) Notify(ctx context.Context, n Notice) {
	if c, ok := CollectorFrom(ctx); ok {
		c.Notify(ctx, n)
	}
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(context.Context, Notice) {}

func Info(ctx context.Context, to Notifier, msg string) {
	to.Notify(ctx, Notice{Level: LevelInfo, Message: msg})
}

func Success(ctx context.Context, to Notifier, msg string) {
	to.Notify(ctx, Notice{Level: LevelSuccess, Message: msg})
}

func Warn(ctx context.Context, to Notifier, msg string) {
	to.Notify(ctx, Notice{Level: LevelWarning, Message: msg})
}

func Error(ctx context.Context, to Notifier, msg string) {
	to.Notify(ctx, Notice{Level: LevelError, Message: msg})
}
