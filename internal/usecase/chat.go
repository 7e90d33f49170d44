package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"twin-agent/internal/domain"
	"twin-agent/internal/persona"
	"twin-agent/internal/repository"
)

const (
	defaultMaxMessageChars = 4000
	defaultGenTimeout      = 30 * time.Second
)

// Provider generates the assistant reply for an assembled prompt.
type Provider interface {
	Generate(ctx context.Context, prompt []domain.Message) (string, error)
}

// Store is the slice of conversation storage the service depends on.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]domain.Message, error)
	Append(ctx context.Context, sessionID string, history []domain.Message) error
	Sessions(ctx context.Context) ([]string, error)
}

// PersonaLoader supplies the persona injected into every prompt.
type PersonaLoader interface {
	Load(ctx context.Context) (persona.Persona, error)
}

type ChatService struct {
	store           Store
	provider        Provider
	persona         PersonaLoader
	maxHistory      int
	maxMessageChars int
	genTimeout      time.Duration
}

type ChatInput struct {
	Message   string
	SessionID string
}

type ChatOutput struct {
	SessionID string
	Reply     string
}

func NewChatService(store Store, provider Provider, personaLoader PersonaLoader, maxHistory, maxMessageChars int, genTimeout time.Duration) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("usecase: store must not be nil")
	}
	if provider == nil {
		return nil, errors.New("usecase: provider must not be nil")
	}
	if personaLoader == nil {
		return nil, errors.New("usecase: persona loader must not be nil")
	}
	// maxHistory 0 keeps the whole history in the prompt.
	if maxHistory < 0 {
		maxHistory = 0
	}
	if maxMessageChars <= 0 {
		maxMessageChars = defaultMaxMessageChars
	}
	if genTimeout <= 0 {
		genTimeout = defaultGenTimeout
	}
	return &ChatService{
		store:           store,
		provider:        provider,
		persona:         personaLoader,
		maxHistory:      maxHistory,
		maxMessageChars: maxMessageChars,
		genTimeout:      genTimeout,
	}, nil
}

// Chat runs one conversation turn. When persistence fails after a
// successful generation it returns the populated output alongside a
// PERSISTENCE_FAILED error so callers can still deliver the reply.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxMessageChars {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	sessionID, err := resolveSessionID(in.SessionID)
	if err != nil {
		return ChatOutput{}, err
	}

	p, err := s.persona.Load(ctx)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "persona_load_error", err)
	}

	history, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return ChatOutput{}, storageError("history_load_error", err)
	}

	userMsg := domain.NewUserMessage(message, timeNow())
	prompt := buildPrompt(p, history, userMsg, s.maxHistory)

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	reply, err := s.provider.Generate(genCtx, prompt)
	if err != nil {
		return ChatOutput{}, newError(ErrorGenerationFailed, "provider_error", err)
	}
	if strings.TrimSpace(reply) == "" {
		return ChatOutput{}, newError(ErrorGenerationFailed, "empty_reply", nil)
	}

	conv := domain.Conversation{SessionID: sessionID, Messages: history}
	conv.Append(userMsg)
	conv.Append(domain.NewAssistantMessage(reply, timeNow()))

	out := ChatOutput{SessionID: sessionID, Reply: reply}
	if err := s.store.Append(ctx, sessionID, conv.Messages); err != nil {
		return out, newError(ErrorPersistenceFailed, "history_write_error", err)
	}
	return out, nil
}

// Sessions lists the identifiers of all stored conversations.
func (s *ChatService) Sessions(ctx context.Context) ([]string, error) {
	ids, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, storageError("session_list_error", err)
	}
	return ids, nil
}

func storageError(reason string, err error) *Error {
	if errors.Is(err, repository.ErrCorrupt) {
		return newError(ErrorStorageCorrupt, reason, err)
	}
	return newError(ErrorStorageUnavailable, reason, err)
}

var timeNow = func() time.Time {
	return time.Now().UTC()
}
