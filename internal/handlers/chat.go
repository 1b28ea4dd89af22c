package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ollama-relay/internal/contextutil"
	"ollama-relay/internal/llm"
	"ollama-relay/internal/service"
)

// maxBodyBytes bounds the request body; history makes it grow with the conversation.
const maxBodyBytes = 4 << 20

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    newValidator(),
	}
}

// ChatRequest represents the HTTP request payload for chat.
//
// swagger:model ChatRequest
type ChatRequest struct {
	// The new user message. The key is required; an empty string is accepted.
	Message *string `json:"message" validate:"required"`

	// Prior turns, oldest first. Omitted or null means no history.
	History []HistoryMessage `json:"history" validate:"omitempty,dive"`
}

// HistoryMessage is one prior turn supplied by the caller.
type HistoryMessage struct {
	Role    string  `json:"role" validate:"required,oneof=system user assistant tool"`
	Content *string `json:"content" validate:"required"`
}

// ChatResponse represents the HTTP response payload for chat.
//
// swagger:model ChatResponse
type ChatResponse struct {
	Reply     string `json:"reply"`
	ReplyHTML string `json:"reply_html,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for chat.
//
// swagger:route POST /chat chat
//
// # Relay a chat message to the inference service
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/ChatResponse"
//	'400':
//	  description: Body is not valid JSON
//	'422':
//	  description: Body does not match the ChatRequest shape
//	'502':
//	  description: Inference service failed
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			logger.WarnContext(ctx, "request body has wrong shape", "error", err)
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("Validation error: %s must be %s", typeErrField(typeErr), typeErr.Type.String()))
			return
		}
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.handleServiceError(w, ctx, toValidationError(err), "Invalid request")
		return
	}

	svcResp, err := h.chatService.ProcessChat(ctx, req.toService())
	if err != nil {
		h.handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	resp := ChatResponse{
		Reply:     svcResp.Reply,
		ReplyHTML: svcResp.ReplyHTML,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// toService converts the validated HTTP request to the service request.
func (r ChatRequest) toService() service.ChatRequest {
	req := service.ChatRequest{Message: *r.Message}
	if len(r.History) > 0 {
		req.History = make([]llm.Message, len(r.History))
		for i, m := range r.History {
			req.History[i] = llm.Message{Role: m.Role, Content: *m.Content}
		}
	}
	return req
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
// All inference failures share one status and message; the log line carries the cause.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "validation failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Validation error: %s %s", validationErr.Field, validationErr.Message))
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)

	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, service.ErrExternalService) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	// Default to internal server error
	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// newValidator reports field names using their JSON keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toValidationError turns the first validator failure into a ValidationError.
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return service.WrapError(err, "validation failed")
	}
	fe := fieldErrs[0]

	// Namespace is "ChatRequest.history[1].role"; drop the struct name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "oneof":
		msg = "must be one of " + fe.Param()
	}
	return &service.ValidationError{Field: field, Message: msg}
}

// typeErrField names the offending JSON field of a type error.
func typeErrField(err *json.UnmarshalTypeError) string {
	if err.Field == "" {
		return "body"
	}
	return err.Field
}
