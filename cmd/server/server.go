package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/istun/mezunlar-backend/internal/config"
)

// newHTTPServer builds the API server. Every request context derives from a
// base context that is cancelled when Shutdown starts, so SSE and WebSocket
// handlers return instead of holding Shutdown until its deadline.
func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		// Write timeout stays unset: the SSE and WebSocket routes are long-lived.
		IdleTimeout: 2 * time.Minute,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
