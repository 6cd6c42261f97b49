// Package poller drives one stats.Writer per symbol by fetching a price
// from a remote endpoint on a fixed interval.
package poller

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pulsewatch/internal/stats"
	"pulsewatch/internal/telemetry"
	"pulsewatch/internal/upstream"
)

// Poller exclusively owns a *stats.Writer; that exclusivity is what makes
// the engine's single-writer invariant hold. It also keeps a private
// *stats.Reader (readers are freely cloneable) purely to build audit rows
// after each successful write — it never shares that reader with anyone
// else.
type Poller struct {
	symbol   string
	url      string
	interval time.Duration

	client *http.Client
	writer *stats.Writer
	reader *stats.Reader

	log   *zap.Logger
	audit *telemetry.Audit
}

// New constructs a Poller. audit may be nil to disable the audit trail.
func New(symbol, url string, interval time.Duration, client *http.Client, writer *stats.Writer, reader *stats.Reader, log *zap.Logger, audit *telemetry.Audit) *Poller {
	return &Poller{
		symbol:   symbol,
		url:      url,
		interval: interval,
		client:   client,
		writer:   writer,
		reader:   reader,
		log:      log,
		audit:    audit,
	}
}

// Run drives the poll loop until ctx is cancelled. The first tick fires
// immediately; subsequent ticks fire every interval from the previous one.
// Transient fetch errors are logged and skipped — they never stop the
// loop and never advance the engine.
func (p *Poller) Run(ctx context.Context) error {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	price, err := upstream.Fetch(ctx, p.client, p.url)
	if err != nil {
		p.log.Warn("poll failed, skipping tick",
			zap.String("symbol", p.symbol),
			zap.String("url", p.url),
			zap.Error(err),
		)
		return
	}

	p.writer.Write(price)

	if p.audit == nil {
		return
	}
	rec := p.reader.Read()
	p.audit.Log(telemetry.AuditRow{
		Symbol:    p.symbol,
		Min:       rec.Min,
		Max:       rec.Max,
		CurrAvg:   rec.CurrAvg,
		SMA:       rec.SMA,
		DataPoint: rec.DataPoint,
	})
}
