package models

// ChatMessage represents a single conversation turn as decoded from the wire.
// Content is a pointer so a missing field can be told apart from "".
type ChatMessage struct {
	Role    string  `json:"role"` // "user" or "assistant"
	Content *string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}
