package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storyweaver/internal/domain"
	"storyweaver/internal/infrastructure/llm"
	"storyweaver/internal/safety"
)

type generateRequest struct {
	ArticleText  string `json:"articleText"`
	ReadingLevel string `json:"readingLevel"`
}

type generateResponse struct {
	Story     string           `json:"story"`
	Questions []string         `json:"questions"`
	Meta      domain.StoryMeta `json:"meta"`
}

// handleGenerate turns an article into a validated children's story.
func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiError{
			Message: "Request body must be valid JSON",
			Code:    codeBadRequest,
		})
	}

	level := domain.ReadingLevel(req.ReadingLevel)
	if req.ReadingLevel != "" {
		parsed, ok := domain.ParseReadingLevel(req.ReadingLevel)
		if !ok {
			return c.JSON(http.StatusBadRequest, apiError{
				Message: "Invalid reading level. Use preschool, early-elementary, or elementary.",
				Code:    codeBadRequest,
			})
		}
		level = parsed
	}

	outcome, err := s.stories.Generate(c.Request().Context(), domain.StoryRequest{
		ArticleText:  req.ArticleText,
		ReadingLevel: level,
	})
	if err != nil {
		return s.writeGenerateError(c, err)
	}

	header := c.Response().Header()
	if outcome.CacheHit {
		header.Set("X-Cache", "HIT")
	} else {
		header.Set("X-Cache", "MISS")
	}
	header.Set("X-Model", outcome.Model)
	header.Set("X-Request", outcome.Hash)

	return c.JSON(http.StatusOK, generateResponse{
		Story:     outcome.Result.Story,
		Questions: outcome.Result.Questions,
		Meta:      outcome.Result.Meta,
	})
}

// handleGenerateMethodNotAllowed answers any non-POST verb on the generate
// route with the same JSON envelope errors use.
func (s *Server) handleGenerateMethodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, apiError{
		Message: "Method not allowed. Use POST to generate a story.",
		Code:    codeBadRequest,
	})
}

// writeGenerateError maps pipeline failures onto status codes without leaking
// upstream details to the client.
func (s *Server) writeGenerateError(c echo.Context, err error) error {
	var refusal *safety.RefusalError
	if errors.As(err, &refusal) {
		return c.JSON(http.StatusBadRequest, apiError{
			Message: refusal.Reason,
			Code:    codeBadRequest,
		})
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return c.JSON(http.StatusTooManyRequests, apiError{
				Message: "The story service is busy right now. Please try again in a moment.",
				Code:    codeRateLimited,
			})
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return c.JSON(http.StatusServiceUnavailable, apiError{
				Message: "The story service is temporarily unavailable. Please try again later.",
				Code:    codeInternalError,
			})
		}
	}

	s.logError("story generation failed", err)
	return c.JSON(http.StatusInternalServerError, apiError{
		Message: "Unable to generate story at this time. Please try again.",
		Code:    codeInternalError,
	})
}
