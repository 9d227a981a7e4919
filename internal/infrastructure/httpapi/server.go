package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storyweaver/internal/usecase"
)

// apiError is the JSON envelope returned for every failed request.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

const (
	codeBadRequest    = "BAD_REQUEST"
	codeUnauthorized  = "UNAUTHORIZED"
	codeRateLimited   = "RATE_LIMITED"
	codeInternalError = "INTERNAL_ERROR"
)

// Server exposes the feed and story endpoints over HTTP.
type Server struct {
	echo       *echo.Echo
	feeds      *usecase.FeedPipeline
	stories    *usecase.StoryPipeline
	refreshKey string
	logger     *slog.Logger
}

// NewServer wires routes onto a fresh echo instance.
func NewServer(feeds *usecase.FeedPipeline, stories *usecase.StoryPipeline, refreshKey string, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		feeds:      feeds,
		stories:    stories,
		refreshKey: refreshKey,
		logger:     logger,
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/api/feed", s.handleFeed)
	e.GET("/api/feed/refresh", s.handleRefresh)
	e.POST("/api/generate", s.handleGenerate)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		e.Add(method, "/api/generate", s.handleGenerateMethodNotAllowed)
	}

	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
