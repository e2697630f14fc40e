package models

// Chat message roles as used by the upstream chat endpoint.
const (
	RoleSystem    = "system"
	RoleUserMsg   = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry in a conversation history, in the shape expected
// by the upstream chat endpoint.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the outbound payload for the upstream chat endpoint.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// StreamChunk is one NDJSON object of a streaming chat response.
// The upstream emits either incremental deltas or cumulative transcripts in
// Message.Content; the terminal object carries Done=true.
type StreamChunk struct {
	Message *ChatMessage `json:"message,omitempty"`
	Done    bool         `json:"done"`

	// Token is a fallback field some upstreams use instead of Message.
	Token string `json:"token,omitempty"`

	// Emotion annotates the terminal chunk of a gateway response when
	// emotion detection is enabled. Never set by the model upstream.
	Emotion *Emotion `json:"emotion,omitempty"`

	// Error is set on the terminal chunk of a gateway response when the
	// turn failed after streaming had already begun. Never set by the
	// model upstream.
	Error string `json:"error,omitempty"`
}

// ChatReply is the body of a non-streaming chat response, used as the
// fallback when the streaming call fails.
type ChatReply struct {
	Reply string `json:"reply"`
}

// ModelsResponse is the body of the models endpoint.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// Emotion is the classification result produced by the emotion endpoint.
type Emotion struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
