package httpapi

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"pulsewatch/internal/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handlers holds the dependencies every route needs: the registry to read
// from and a logger for request-scoped warnings. It never holds a poller
// or a writer — the HTTP surface cannot advance the engine, only observe it.
type handlers struct {
	reg        *registry.Registry
	log        *zap.Logger
	streamTick time.Duration
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *handlers) stat(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	reader, ok := h.reg.Get(symbol)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, FromRecord(reader.Read()))
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	all := h.reg.All()
	out := make([]map[string]StatsResponse, 0, len(all))
	for symbol, reader := range all {
		out = append(out, map[string]StatsResponse{symbol: FromRecord(reader.Read())})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
