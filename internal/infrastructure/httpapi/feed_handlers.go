package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"storyweaver/internal/domain"
	"storyweaver/internal/usecase"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 50
)

// handleFeed serves the diversified feed page. Fresh-enough pages short
// circuit to 304 when the client sends If-Modified-Since.
func (s *Server) handleFeed(c echo.Context) error {
	categories, invalid := parseCategories(c.QueryParam("categories"))
	if len(invalid) > 0 {
		return c.JSON(http.StatusBadRequest, apiError{
			Message: fmt.Sprintf("Invalid categories: %s", strings.Join(invalid, ", ")),
			Code:    codeBadRequest,
		})
	}

	limit, ok := parseLimit(c.QueryParam("limit"))
	if !ok {
		return c.JSON(http.StatusBadRequest, apiError{
			Message: fmt.Sprintf("Limit must be a number between 1 and %d", maxFeedLimit),
			Code:    codeBadRequest,
		})
	}

	page, err := s.feeds.Page(c.Request().Context(), categories, limit)
	if err != nil {
		s.logError("feed page failed", err)
		return c.JSON(http.StatusInternalServerError, apiError{
			Message: "Unable to load the news feed at this time. Please try again.",
			Code:    codeInternalError,
		})
	}

	header := c.Response().Header()
	header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(usecase.FeedPageTTL.Seconds())))
	header.Set("Last-Modified", page.Meta.LastUpdated.UTC().Format(http.TimeFormat))
	if page.Meta.CacheHit {
		header.Set("X-Cache", "HIT")
	} else {
		header.Set("X-Cache", "MISS")
	}

	if ims := c.Request().Header.Get("If-Modified-Since"); ims != "" {
		if since, err := http.ParseTime(ims); err == nil {
			if page.Meta.LastUpdated.Sub(since) < usecase.FeedPageTTL {
				return c.NoContent(http.StatusNotModified)
			}
		}
	}

	return c.JSON(http.StatusOK, page)
}

// handleRefresh re-aggregates and persists feeds. The endpoint is gated by a
// shared key; an empty configured key leaves it open for local development.
func (s *Server) handleRefresh(c echo.Context) error {
	if s.refreshKey != "" && c.Request().Header.Get("x-refresh-key") != s.refreshKey {
		return c.JSON(http.StatusUnauthorized, apiError{
			Message: "Invalid or missing refresh key",
			Code:    codeUnauthorized,
		})
	}

	var categories []domain.Category
	if raw := c.QueryParam("category"); raw != "" && raw != "all" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, apiError{
				Message: fmt.Sprintf("Invalid categories: %s", raw),
				Code:    codeBadRequest,
			})
		}
		categories = []domain.Category{category}
	}

	limit, ok := parseLimit(c.QueryParam("limit"))
	if !ok {
		return c.JSON(http.StatusBadRequest, apiError{
			Message: fmt.Sprintf("Limit must be a number between 1 and %d", maxFeedLimit),
			Code:    codeBadRequest,
		})
	}

	result, err := s.feeds.Refresh(c.Request().Context(), categories, limit)
	if err != nil {
		s.logError("feed refresh failed", err)
		return c.JSON(http.StatusInternalServerError, apiError{
			Message: "Unable to refresh feeds at this time. Please try again.",
			Code:    codeInternalError,
		})
	}

	return c.JSON(http.StatusOK, result)
}

// parseLimit resolves the limit query parameter, defaulting when absent and
// rejecting anything outside 1..maxFeedLimit.
func parseLimit(raw string) (int, bool) {
	if raw == "" {
		return defaultFeedLimit, true
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 || parsed > maxFeedLimit {
		return 0, false
	}
	return parsed, true
}

// parseCategories splits a comma-separated category list, reporting names
// that are not recognized.
func parseCategories(raw string) ([]domain.Category, []string) {
	if raw == "" {
		return nil, nil
	}

	var categories []domain.Category
	var invalid []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		category, ok := domain.ParseCategory(name)
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		categories = append(categories, category)
	}

	return categories, invalid
}

func (s *Server) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}
