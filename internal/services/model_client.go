package services

import (
	"context"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ImagePart is an inline image. DataURI is what OpenAI-style APIs consume;
// MIMEType and Data are kept for APIs that take raw blobs.
type ImagePart struct {
	MIMEType string
	Data     []byte
	DataURI  string
}

// Message is one outbound message. Images are only meaningful on user messages.
type Message struct {
	Role   Role
	Text   string
	Images []ImagePart
}

// CompletionRequest is a provider-neutral completion call.
type CompletionRequest struct {
	Model     string
	Messages  []Message
	MaxTokens int
}

// ModelClient is the upstream model API as seen by the relays.
type ModelClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// withTimeout bounds an upstream call unless the caller already set a deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
