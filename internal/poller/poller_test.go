package poller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulsewatch/internal/stats"
)

func TestPollerFirstTickIsImmediate(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"symbol":"BTCUSDT","price":"100.5"}`)
	}))
	defer srv.Close()

	reader, writer, err := stats.Split(4, 1.0)
	require.NoError(t, err)

	p := New("BTCUSDT", srv.URL, time.Hour, srv.Client(), writer, reader, zap.NewNop(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	assert.EqualValues(t, 1, hits.Load())
	rec := reader.Read()
	assert.Equal(t, uint64(2), rec.DataPoint)
}

func TestPollerTransientErrorSkipsWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reader, writer, err := stats.Split(4, 1.0)
	require.NoError(t, err)

	p := New("BTCUSDT", srv.URL, time.Hour, srv.Client(), writer, reader, zap.NewNop(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = p.Run(ctx)

	rec := reader.Read()
	assert.Equal(t, uint64(1), rec.DataPoint)
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"symbol":"BTCUSDT","price":"1"}`)
	}))
	defer srv.Close()

	reader, writer, err := stats.Split(4, 1.0)
	require.NoError(t, err)

	p := New("BTCUSDT", srv.URL, time.Millisecond, srv.Client(), writer, reader, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancel")
	}
}
