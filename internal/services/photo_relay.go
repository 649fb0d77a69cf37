package services

import (
	"context"
	"encoding/base64"
	"strings"
)

// PhotoRelay sends a worksite photo to the vision model for a safety review.
type PhotoRelay struct {
	client ModelClient
	model  string
	cfg    RelayConfig
}

func NewPhotoRelay(client ModelClient, cfg RelayConfig) *PhotoRelay {
	return &PhotoRelay{
		client: client,
		model:  cfg.VisionModel,
		cfg:    cfg,
	}
}

// Analyze returns the trimmed model assessment followed by the footer.
func (r *PhotoRelay) Analyze(ctx context.Context, in PhotoInput) (string, error) {
	req := CompletionRequest{
		Model:     r.model,
		Messages:  buildPhotoMessages(r.cfg, in),
		MaxTokens: photoMaxTokens,
	}

	callCtx, cancel := withTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	reply, err := r.client.Complete(callCtx, req)
	if err != nil {
		return "", &UpstreamError{Op: "photo analysis", Err: err}
	}

	return strings.TrimSpace(reply) + r.cfg.Prompts.PhotoFooter, nil
}

func buildPhotoMessages(cfg RelayConfig, in PhotoInput) []Message {
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = cfg.Prompts.NotePlaceholder
	}

	return []Message{
		{Role: RoleSystem, Text: cfg.Prompts.PhotoSystem},
		{
			Role: RoleUser,
			Text: cfg.Prompts.NotePrefix + note,
			Images: []ImagePart{{
				MIMEType: in.MIMEType,
				Data:     in.Data,
				DataURI:  DataURI(in.MIMEType, in.Data),
			}},
		},
	}
}

// DataURI embeds data as a base64 data URI of the given MIME type.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
