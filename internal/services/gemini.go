package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// GeminiClient calls the Gemini API through the generative-ai-go SDK.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// Complete replays the conversation as chat history and sends the last user
// message. Generation settings are per call, so each call builds its own
// GenerativeModel.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	system, history, last, err := buildGeminiContents(req.Messages)
	if err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(req.Model)
	model.SystemInstruction = system
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return extractText(resp), nil
}

// buildGeminiContents splits messages into a system instruction, prior
// history and the final user turn.
func buildGeminiContents(messages []Message) (*genai.Content, []*genai.Content, *genai.Content, error) {
	var systemParts []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if text := strings.TrimSpace(msg.Text); text != "" {
				systemParts = append(systemParts, text)
			}
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  geminiRoleModel,
				Parts: []genai.Part{genai.Text(msg.Text)},
			})
		case RoleUser:
			parts := []genai.Part{genai.Text(msg.Text)}
			for _, img := range msg.Images {
				parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
			}
			contents = append(contents, &genai.Content{Role: geminiRoleUser, Parts: parts})
		default:
			return nil, nil, nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	if len(contents) == 0 || contents[len(contents)-1].Role != geminiRoleUser {
		return nil, nil, nil, ErrNoUserTurn
	}
	last := contents[len(contents)-1]

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(systemParts, "\n\n"))}}
	}

	return system, contents[:len(contents)-1], last, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

var _ ModelClient = (*GeminiClient)(nil)
