// Package server exposes the reply engine over HTTP for chat front ends.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
	"github.com/theimaginaryfoundation/comfort-bot/companion/sentiment"
)

// Engine is the part of *companion.Engine the transport needs.
type Engine interface {
	Respond(ctx context.Context, u companion.Utterance) companion.Reply
	AnalyzeSentiment(ctx context.Context, text string) sentiment.Result
	Compose(text string, mood companion.Mood) (string, error)
}

type Config struct {
	// RequestsPerSecond and Burst bound each client IP on the /v1 routes. 0 disables limiting.
	RequestsPerSecond float64
	Burst             int

	// BodyLimit is an echo size string such as "64K".
	BodyLimit string
	Logger    *slog.Logger
}

func DefaultConfig() Config {
	return Config{RequestsPerSecond: 5, Burst: 10, BodyLimit: "64K"}
}

type Server struct {
	echo   *echo.Echo
	engine Engine
	logger *slog.Logger
}

func New(engine Engine, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{echo: echo.New(), engine: engine, logger: logger}
	e := s.echo
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogError:     true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"request_id", v.RequestID,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.WarnContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"request_id", v.RequestID,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	if cfg.RequestsPerSecond > 0 {
		v1.Use(NewRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst, 0).Middleware())
	}
	v1.POST("/reply", s.handleReply)
	v1.POST("/sentiment", s.handleSentiment)
	v1.POST("/compose", s.handleCompose)
	return s
}

func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving addr until Shutdown. A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting server", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
