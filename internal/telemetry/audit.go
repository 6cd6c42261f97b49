package telemetry

import (
	"time"

	"go.uber.org/zap"
)

// Hot path never blocks on I/O: pollers enqueue a row; a background
// goroutine batches and flushes them to the structured logger on a timer.
const auditChanSize = 4096

// AuditRow is a value-typed snapshot of one published observation, built
// off the hot path and handed to the Audit logger for batched emission.
type AuditRow struct {
	Symbol    string
	Min       float64
	Max       float64
	CurrAvg   float64
	SMA       float64
	DataPoint uint64
}

// Audit batches AuditRows from many goroutines and flushes them to the
// structured logger on a fixed period, so pollers never wait on log I/O.
// Each flushed row is emitted as its own log entry.
type Audit struct {
	log    *zap.Logger
	ch     chan AuditRow
	period time.Duration
	done   chan struct{}
}

// NewAudit starts the background flush goroutine and returns the handle
// pollers call Log on. Call Close to drain and stop it.
func NewAudit(log *zap.Logger, flushPeriod time.Duration) *Audit {
	a := &Audit{
		log:    log,
		ch:     make(chan AuditRow, auditChanSize),
		period: flushPeriod,
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Log enqueues a row without blocking. If the buffer is full the row is
// dropped — the audit trail is best-effort and must never slow a poller.
func (a *Audit) Log(row AuditRow) {
	select {
	case a.ch <- row:
	default:
		a.log.Warn("audit buffer full, dropping row", zap.String("symbol", row.Symbol))
	}
}

// Close stops accepting new rows and waits for the background goroutine to
// drain what's already buffered.
func (a *Audit) Close() {
	close(a.ch)
	<-a.done
}

func (a *Audit) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.period)
	defer ticker.Stop()

	var batch []AuditRow

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, row := range batch {
			a.log.Info("snapshot",
				zap.String("symbol", row.Symbol),
				zap.Float64("min", row.Min),
				zap.Float64("max", row.Max),
				zap.Float64("curr_avg", row.CurrAvg),
				zap.Float64("sma", row.SMA),
				zap.Uint64("data_point", row.DataPoint),
			)
		}
		batch = batch[:0]
	}

	for {
		select {
		case row, ok := <-a.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, row)
		case <-ticker.C:
			flush()
		}
	}
}
