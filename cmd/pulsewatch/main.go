package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"pulsewatch/internal/config"
	"pulsewatch/internal/httpapi"
	"pulsewatch/internal/poller"
	"pulsewatch/internal/registry"
	"pulsewatch/internal/stats"
	"pulsewatch/internal/telemetry"
	"pulsewatch/internal/upstream"
)

const (
	logDir            = "logs"
	auditFlushPeriod  = time.Second
	streamTickDefault = 250 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pulsewatch:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	log, err := telemetry.NewLogger(zapcore.InfoLevel, logDir)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	audit := telemetry.NewAudit(log, auditFlushPeriod)
	defer audit.Close()

	client := upstream.NewClient(cfg.Timeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	readers := make(map[string]*stats.Reader, len(cfg.URLs))
	type binding struct {
		symbol string
		url    string
		writer *stats.Writer
		reader *stats.Reader
	}
	var bindings []binding

	for _, rawURL := range cfg.URLs {
		symbol, ok := upstream.ExtractSymbol(rawURL)
		if !ok {
			log.Warn("url has no symbol fragment, skipping", zap.String("url", rawURL))
			continue
		}

		warmupCtx, warmupCancel := context.WithTimeout(ctx, cfg.Timeout)
		price, err := upstream.Fetch(warmupCtx, client, rawURL)
		warmupCancel()
		if err != nil {
			return fmt.Errorf("warm-up fetch for %s: %w", symbol, err)
		}

		reader, writer, err := stats.Split(cfg.SMAWindow, price)
		if err != nil {
			return fmt.Errorf("init engine for %s: %w", symbol, err)
		}

		readers[symbol] = reader
		bindings = append(bindings, binding{symbol: symbol, url: rawURL, writer: writer, reader: reader.Clone()})
	}

	if len(bindings) == 0 {
		return fmt.Errorf("no valid symbol URLs configured")
	}

	reg := registry.New(readers)

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range bindings {
		b := b
		p := poller.New(b.symbol, b.url, cfg.Interval, client, b.writer, b.reader, log, audit)
		g.Go(func() error {
			if err := p.Run(gctx); err != nil && err != context.Canceled {
				return fmt.Errorf("poller %s: %w", b.symbol, err)
			}
			return nil
		})
	}

	addr := fmt.Sprintf("%s:%d", cfg.IP, cfg.Port)
	server := httpapi.New(addr, reg, log, streamTickDefault)

	g.Go(func() error {
		return server.Start()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-gctx.Done():
		log.Warn("a component stopped unexpectedly", zap.Error(gctx.Err()))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}
