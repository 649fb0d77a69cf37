package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ChatRelay forwards a conversation to the text model.
type ChatRelay struct {
	client       ModelClient
	model        string
	system       string
	historyLimit int
	timeout      time.Duration
}

func NewChatRelay(client ModelClient, cfg RelayConfig) *ChatRelay {
	limit := cfg.HistoryLimit
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	return &ChatRelay{
		client:       client,
		model:        cfg.TextModel,
		system:       cfg.Prompts.ChatSystem,
		historyLimit: limit,
		timeout:      cfg.Timeout,
	}
}

// Reply returns the model's answer to the conversation, trimmed. An empty
// model answer is returned as "" without error.
func (r *ChatRelay) Reply(ctx context.Context, in ChatInput) (string, error) {
	req := CompletionRequest{
		Model:     r.model,
		Messages:  buildChatMessages(r.system, in.Turns, r.historyLimit),
		MaxTokens: chatMaxTokens,
	}

	callCtx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.client.Complete(callCtx, req)
	if errors.Is(err, ErrNoUserTurn) {
		return "", &InputError{Code: "NO_USER_TURN", Message: "Sohbet bir kullanıcı mesajıyla bitmelidir"}
	}
	if err != nil {
		return "", &UpstreamError{Op: "chat completion", Err: err}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		slog.Warn("chat_empty_reply", "model", r.model, "turns", len(req.Messages)-1)
	}
	return reply, nil
}

// buildChatMessages prepends the system instruction to the last limit turns,
// oldest first.
func buildChatMessages(system string, turns []Turn, limit int) []Message {
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	messages := make([]Message, 0, len(turns)+1)
	messages = append(messages, Message{Role: RoleSystem, Text: system})
	for _, t := range turns {
		messages = append(messages, Message{Role: t.Role, Text: t.Content})
	}
	return messages
}
