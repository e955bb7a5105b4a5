// Package relay is the server-side boundary the notification
// dispatcher calls: it accepts send-sms requests from the dashboard
// and forwards them to the messaging provider.
package relay

import (
	"context"
	"net/http"
	"time"

	"github.com/onchaincommerce/onchaincommerce/logger"
)

// Sender delivers one text message. The production implementation
// talks to Twilio; tests substitute a stub.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

// New builds a Server with the relay routes.
func New(addr string, log logger.Logger, sender Sender) *Server {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           buildRouter(log, sender),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		log:        log,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
