// Package upstream builds the shared HTTP client used by every poller and
// decodes the upstream pricing endpoint's response shape.
package upstream

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// NewClient builds an http.Client with a dedicated (non-default) pooled
// transport, matching the original service's reqwest::ClientBuilder:
// the same duration bounds both the connect timeout and how long idle
// pooled connections are kept around.
func NewClient(timeout time.Duration) *http.Client {
	transport := cleanhttp.DefaultPooledTransport()
	transport.TLSHandshakeTimeout = timeout
	transport.ResponseHeaderTimeout = timeout
	transport.IdleConnTimeout = timeout

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
