// Package httpserver exposes the storefront API: accounts, cart, checkout,
// order history, reviews and the admin catalog routes.
package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable. *pgxpool.Pool and
// *idempotency.RedisStore satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = time.Second

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New serves the storefront on addr. /readyz checks db, and also the
// idempotency store when deps carries one that can be pinged.
func New(addr string, logger *log.Logger, db Pinger, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight checkouts
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessCheck struct {
	name   string
	pinger Pinger
}

// readinessChecks always includes the database, even when it is nil, so a
// server built without one never reports ready.
func readinessChecks(db Pinger, deps Deps) []readinessCheck {
	checks := []readinessCheck{{name: "db", pinger: db}}
	if p, ok := deps.Idempotency.(Pinger); ok {
		checks = append(checks, readinessCheck{name: "redis", pinger: p})
	}
	return checks
}

func readyHandler(checks []readinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		for _, check := range checks {
			if check.pinger == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": check.name + " not configured"})
				return
			}
			if err := check.pinger.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": check.name + " not reachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
