package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts conversation traffic with atomics; cheap enough to sit on
// the hot path of every inbound message.
type Collector struct {
	messagesTotal     uint64
	unrecognizedTotal uint64
	aiFallbacksTotal  uint64
	busyRejections    uint64
	payrollRunsTotal  uint64
	totalDurationMs   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordMessage(duration time.Duration) {
	atomic.AddUint64(&c.messagesTotal, 1)
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordUnrecognized() {
	atomic.AddUint64(&c.unrecognizedTotal, 1)
}

func (c *Collector) RecordAIFallback() {
	atomic.AddUint64(&c.aiFallbacksTotal, 1)
}

func (c *Collector) RecordBusyRejection() {
	atomic.AddUint64(&c.busyRejections, 1)
}

func (c *Collector) RecordPayrollRun() {
	atomic.AddUint64(&c.payrollRunsTotal, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.messagesTotal)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"messagesTotal":     total,
		"unrecognizedTotal": atomic.LoadUint64(&c.unrecognizedTotal),
		"aiFallbacksTotal":  atomic.LoadUint64(&c.aiFallbacksTotal),
		"busyRejections":    atomic.LoadUint64(&c.busyRejections),
		"payrollRunsTotal":  atomic.LoadUint64(&c.payrollRunsTotal),
		"avgDurationMs":     avg,
	}
}
