package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Till counts what happened at one register since it started.
type Till struct {
	SalesCompleted Counter
	SalesFailed    Counter
	StaleScans     Counter
	Reprints       Counter

	startedAt time.Time
}

func NewTill() *Till {
	return &Till{startedAt: time.Now()}
}

type TillSnapshot struct {
	SalesCompleted uint64 `json:"sales_completed"`
	SalesFailed    uint64 `json:"sales_failed"`
	StaleScans     uint64 `json:"stale_scans"`
	Reprints       uint64 `json:"reprints"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

func (t *Till) Snapshot() TillSnapshot {
	return TillSnapshot{
		SalesCompleted: t.SalesCompleted.Load(),
		SalesFailed:    t.SalesFailed.Load(),
		StaleScans:     t.StaleScans.Load(),
		Reprints:       t.Reprints.Load(),
		UptimeSeconds:  int64(time.Since(t.startedAt).Seconds()),
	}
}
