package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ListModels returns the models the Ollama server has pulled locally.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	url := fmt.Sprintf("%s/api/tags", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tags request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}
	return tags.Models, nil
}

// HasModel reports whether name is available locally. A name without a tag
// matches the ":latest" tag, the way the Ollama CLI resolves it.
func (c *Client) HasModel(ctx context.Context, name string) (bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return false, err
	}
	want := NormalizeModelName(name)
	for _, m := range models {
		if NormalizeModelName(m.Name) == want || NormalizeModelName(m.Model) == want {
			return true, nil
		}
	}
	return false, nil
}

// NormalizeModelName adds the implicit ":latest" tag to an untagged name.
func NormalizeModelName(name string) string {
	if name == "" {
		return ""
	}
	if !strings.Contains(name, ":") {
		return name + ":latest"
	}
	return name
}
