// Package httpapi provides the HTTP transport for the chat service.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"twin-agent/internal/usecase"
)

// ChatUseCase is the slice of the conversation service the handlers need.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Sessions(ctx context.Context) ([]string, error)
}

type Handler struct {
	uc ChatUseCase
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("httpapi: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

// RegisterRoutes registers all routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.POST("/chat", h.Chat)
	e.GET("/sessions", h.Sessions)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Health returns liveness status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Chat runs one conversation turn.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   string(usecase.ErrorInvalidInput),
			Message: "request body must be JSON",
		})
	}

	out, err := h.uc.Chat(c.Request().Context(), usecase.ChatInput{Message: req.Message, SessionID: req.SessionID})
	if err != nil {
		code := usecase.CodeOf(err)
		// The reply survives a failed history write; the user still gets it.
		if code == usecase.ErrorPersistenceFailed && out.Reply != "" {
			slog.Warn("history not persisted", "session_id", out.SessionID, "err", err)
			return c.JSON(http.StatusOK, chatResponse{SessionID: out.SessionID, Reply: out.Reply})
		}
		slog.Error("chat request failed", "code", code, "err", err)
		return c.JSON(statusForCode(code), errorResponse{Error: string(code), Message: usecase.UserMessage(code)})
	}
	return c.JSON(http.StatusOK, chatResponse{SessionID: out.SessionID, Reply: out.Reply})
}

// Sessions enumerates stored conversation identifiers.
// GET /sessions
func (h *Handler) Sessions(c echo.Context) error {
	ids, err := h.uc.Sessions(c.Request().Context())
	if err != nil {
		code := usecase.CodeOf(err)
		slog.Error("session listing failed", "code", code, "err", err)
		return c.JSON(statusForCode(code), errorResponse{Error: string(code), Message: usecase.UserMessage(code)})
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, ids)
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidSessionID:
		return http.StatusBadRequest
	case usecase.ErrorGenerationFailed:
		return http.StatusBadGateway
	case usecase.ErrorStorageUnavailable, usecase.ErrorPersistenceFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
