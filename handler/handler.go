package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"twin-agent/internal/usecase"
)

// ChatUseCase is the slice of the conversation service the handler needs.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Sessions(ctx context.Context) ([]string, error)
}

type Handler struct {
	uc ChatUseCase
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc}, nil
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Handle dispatches API Gateway proxy events to the chat endpoints.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDFrom(event.Headers)

	switch {
	case event.HTTPMethod == http.MethodGet && event.Path == "/health":
		return respond(http.StatusOK, healthResponse{Status: "ok"}, correlationID), nil
	case event.HTTPMethod == http.MethodPost && event.Path == "/chat":
		return h.handleChat(ctx, event, correlationID), nil
	case event.HTTPMethod == http.MethodGet && event.Path == "/sessions":
		return h.handleSessions(ctx, correlationID), nil
	default:
		return respondError(http.StatusNotFound, "NOT_FOUND", "no such route", correlationID), nil
	}
}

func (h *Handler) handleChat(ctx context.Context, event events.APIGatewayProxyRequest, correlationID string) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondError(http.StatusBadRequest, string(usecase.ErrorInvalidInput), "request body must be JSON", correlationID)
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{Message: req.Message, SessionID: req.SessionID})
	if err != nil {
		code := usecase.CodeOf(err)
		// The reply survives a failed history write; the user still gets it.
		if code == usecase.ErrorPersistenceFailed && out.Reply != "" {
			slog.Warn("history not persisted", "session_id", out.SessionID, "correlation_id", correlationID, "err", err)
			return respond(http.StatusOK, chatResponse{SessionID: out.SessionID, Reply: out.Reply}, correlationID)
		}
		slog.Error("chat request failed", "code", code, "correlation_id", correlationID, "err", err)
		return respondError(statusForCode(code), string(code), usecase.UserMessage(code), correlationID)
	}
	return respond(http.StatusOK, chatResponse{SessionID: out.SessionID, Reply: out.Reply}, correlationID)
}

func (h *Handler) handleSessions(ctx context.Context, correlationID string) events.APIGatewayProxyResponse {
	ids, err := h.uc.Sessions(ctx)
	if err != nil {
		code := usecase.CodeOf(err)
		slog.Error("session listing failed", "code", code, "correlation_id", correlationID, "err", err)
		return respondError(statusForCode(code), string(code), usecase.UserMessage(code), correlationID)
	}
	if ids == nil {
		ids = []string{}
	}
	return respond(http.StatusOK, ids, correlationID)
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

func respond(status int, body any, correlationID string) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"INTERNAL_ERROR","message":"An internal error occurred."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": correlationID,
		},
		Body: string(payload),
	}
}

func respondError(status int, code, message, correlationID string) events.APIGatewayProxyResponse {
	return respond(status, errorResponse{Error: code, Message: message}, correlationID)
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
