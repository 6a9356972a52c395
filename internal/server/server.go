// Package server exposes the savings dashboard as a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/theirongolddev/nakop/internal/rates"
	"github.com/theirongolddev/nakop/internal/session"
)

// SessionCookie names the cookie carrying the visitor's session ID.
const SessionCookie = "nakop_session"

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	AllowOrigins []string
	Logger       *log.Logger
}

// Server serves the dashboard API. Each visitor gets their own session from
// the registry; all sessions share the rate provider.
type Server struct {
	cfg      Config
	registry *session.Registry
	rates    rates.Provider
	logger   *log.Logger
	engine   *gin.Engine
}

// New returns a server with its routes registered.
func New(cfg Config, registry *session.Registry, provider rates.Provider) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		cfg:      cfg,
		registry: registry,
		rates:    provider,
		logger:   logger,
		engine:   gin.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery())
	if len(s.cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(s.requestLog)

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	v1.Use(s.withSession)
	v1.GET("/dashboard", s.handleDashboard)
	v1.GET("/rates", s.handleRates)
	v1.GET("/periods", s.handlePeriods)
	v1.POST("/contributions", s.handleAddContribution)
	v1.POST("/reset", s.handleReset)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("serving dashboard API", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		s.registry.Close()
		return err
	case err := <-errCh:
		s.registry.Close()
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Server) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

const sessionKey = "session"

func (s *Server) withSession(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)

	newID, sess, err := s.registry.Get(c.Request.Context(), id)
	if err != nil {
		s.logger.Error("session start failed", "err", err)
		s.abortWithError(c, err)
		return
	}
	if newID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, newID, 0, "/", "", false, true)
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}
