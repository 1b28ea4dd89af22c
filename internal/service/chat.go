package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks ollama-relay/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService ollama-relay/internal/service ChatService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_exchange_recorder.go -package=mocks ollama-relay/internal/service ExchangeRecorder

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ollama-relay/internal/contextutil"
	"ollama-relay/internal/llm"
	"ollama-relay/internal/storage"
)

// LLMClient is an interface for interacting with the inference service.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends the full conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []llm.Message) (string, error)
}

// ExchangeRecorder persists per-request metadata. It is optional.
type ExchangeRecorder interface {
	Record(ctx context.Context, ex storage.Exchange) error
}

// Renderer converts a reply to HTML. It is optional.
type Renderer interface {
	Render(source string) (string, error)
}

// ChatRequest represents a chat request in the domain layer.
// History is caller-owned and is never modified.
type ChatRequest struct {
	Message string
	History []llm.Message
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply     string
	ReplyHTML string // set only when a Renderer is configured
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat relays a chat request to the inference service and returns its reply.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	llmClient LLMClient
	recorder  ExchangeRecorder
	renderer  Renderer
	model     string
}

// NewChatService creates a new ChatService. recorder and renderer may be nil.
// model is only used to label ledger rows; the LLM client decides what it sends.
func NewChatService(llmClient LLMClient, recorder ExchangeRecorder, renderer Renderer, model string) ChatService {
	return &chatService{
		llmClient: llmClient,
		recorder:  recorder,
		renderer:  renderer,
		model:     model,
	}
}

// ProcessChat appends the message to the history as a user turn and makes exactly
// one call to the inference service.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	messages := BuildMessages(req.History, req.Message)
	logger.DebugContext(ctx, "relaying chat request", "history_len", len(req.History), "message_count", len(messages))

	ex := storage.Exchange{
		ID:           uuid.NewString(),
		RequestID:    contextutil.RequestIDFromContext(ctx),
		Model:        s.model,
		HistoryLen:   len(req.History),
		MessageChars: utf8.RuneCountInString(req.Message),
	}

	reply, err := s.llmClient.Chat(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		s.record(ctx, logger, ex, start, err)
		return ChatResponse{}, ExternalError(WrapError(err, "failed to get LLM response"))
	}
	ex.ReplyChars = utf8.RuneCountInString(reply)

	resp := ChatResponse{Reply: reply}
	if s.renderer != nil {
		html, err := s.renderer.Render(reply)
		if err != nil {
			logger.ErrorContext(ctx, "failed to render reply", "error", err)
			s.record(ctx, logger, ex, start, err)
			return ChatResponse{}, WrapError(err, "failed to render reply")
		}
		resp.ReplyHTML = html
	}

	s.record(ctx, logger, ex, start, nil)
	logger.InfoContext(ctx, "chat request processed successfully",
		"history_len", len(req.History),
		"message_length", ex.MessageChars,
		"reply_length", ex.ReplyChars,
		"duration", time.Since(start))
	return resp, nil
}

// BuildMessages returns a new slice holding history followed by a user turn with message.
func BuildMessages(history []llm.Message, message string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	return append(messages, llm.Message{Role: llm.RoleUser, Content: message})
}

// record writes a ledger row. A ledger failure is logged and never changes the relay result.
func (s *chatService) record(ctx context.Context, logger *slog.Logger, ex storage.Exchange, start time.Time, cause error) {
	if s.recorder == nil {
		return
	}
	ex.Duration = time.Since(start)
	ex.Status = storage.StatusOK
	if cause != nil {
		ex.Status = storage.StatusError
		ex.Error = cause.Error()
	}
	// The row is written even when the caller has gone away.
	if err := s.recorder.Record(context.WithoutCancel(ctx), ex); err != nil {
		logger.WarnContext(ctx, "failed to record exchange", "error", err, "exchange_id", ex.ID)
	}
}
