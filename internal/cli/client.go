package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ollama-relay/internal/handlers"
	"ollama-relay/internal/llm"
)

// relayClient talks to a running relay over its public HTTP API.
type relayClient struct {
	baseURL string
	client  *http.Client
}

func newRelayClient(baseURL string, timeout time.Duration) *relayClient {
	return &relayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// relayChatRequest mirrors the POST /chat body.
type relayChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history,omitempty"`
}

// Health calls GET / and fails unless the relay answers {"status":"ok"}.
func (c *relayClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling relay: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var health handlers.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("relay reported status %q", health.Status)
	}
	return nil
}

// Chat posts one message with the given history and returns the reply.
func (c *relayClient) Chat(ctx context.Context, message string, history []llm.Message) (string, error) {
	body, err := json.Marshal(relayChatRequest{Message: message, History: history})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling relay: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp handlers.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("relay returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		return "", fmt.Errorf("relay returned status %d", resp.StatusCode)
	}

	var chatResp handlers.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	return chatResp.Reply, nil
}
