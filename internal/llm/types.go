package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Role values understood by Ollama's chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatRequest represents the request payload for Ollama's /api/chat.
// Stream is always serialized; a missing field makes Ollama stream by default.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatResponseMessage uses pointers so an absent key can be told apart from an empty one.
type chatResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// ChatResponse represents a non-streamed response from Ollama's /api/chat.
type ChatResponse struct {
	Model     string               `json:"model"`
	CreatedAt string               `json:"created_at"`
	Message   *chatResponseMessage `json:"message"`
	Done      bool                 `json:"done"`
	Error     string               `json:"error,omitempty"`
}

// ModelInfo describes one locally available model as reported by /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}

// TagsResponse represents the response from Ollama's /api/tags.
type TagsResponse struct {
	Models []ModelInfo `json:"models"`
}
