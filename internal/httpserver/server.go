package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	readyPingTimeout         = time.Second
)

// Pinger is the target of the readiness check, normally the pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr              string
	AllowedOrigins    []string
	ReadHeaderTimeout time.Duration
}

// Server serves the storefront API.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func New(opts Options, logger *zap.Logger, db Pinger, deps Deps) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	router, err := buildRouter(logger, db, deps, opts.AllowedOrigins)
	if err != nil {
		return nil, err
	}
	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			ErrorLog:          zap.NewStdLog(logger.Named("net/http")),
		},
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http draining")
	return s.http.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reason := ""
		if db == nil {
			reason = "db not configured"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), readyPingTimeout)
			err := db.Ping(ctx)
			cancel()
			if err != nil {
				reason = "db not reachable"
			}
		}
		if reason != "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
