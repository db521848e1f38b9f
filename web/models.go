/* models.go
 * Contains the server configuration and the Server type shared by the handlers
 */

package web

import (
	"log/slog"
	"net/http"
	"sync"

	"cyber-scout/api/api"
)

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API
	// WebhookSecret is the TBA webhook secret. When set, webhook bodies must carry a matching X-TBA-HMAC header
	WebhookSecret string
	Logger        *slog.Logger
}

// Server is the HTTP server that handles webhook, metrics and export requests
type Server struct {
	api    *api.API
	secret string
	logger *slog.Logger

	// pending tracks schedule refreshes started by webhooks
	pending sync.WaitGroup
}

// NewServer creates a Server from the configuration
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		api:    cfg.API,
		secret: cfg.WebhookSecret,
		logger: logger,
	}
}

// Routes binds handler methods that have access to s.api
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhooks/tba", s.TBAWebhookHandler)
	mux.HandleFunc("GET /export/{file}", s.ExportHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.api != nil && s.api.Metrics != nil {
		mux.Handle("GET /metrics", s.api.Metrics.Handler())
	}
	return mux
}

// Wait blocks until background work started by webhooks has finished
func (s *Server) Wait() {
	s.pending.Wait()
}
