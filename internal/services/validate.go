package services

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"finnkey-backend/internal/models"
)

const (
	defaultImageMIME = "image/jpeg"
	genericMIME      = "application/octet-stream"
)

// Turn is a validated conversation turn.
type Turn struct {
	Role    Role
	Content string
}

// ChatInput is a ChatRequest that passed validation.
type ChatInput struct {
	Turns []Turn
}

// PhotoInput is an upload that passed validation.
type PhotoInput struct {
	Data     []byte
	MIMEType string
	Note     string
}

// ValidateChatRequest checks the request shape. Every violation is reported,
// not just the first one.
func ValidateChatRequest(req models.ChatRequest) (ChatInput, error) {
	if req.Messages == nil {
		return ChatInput{}, &ValidationError{Fields: map[string]string{"messages": "field required"}}
	}

	fields := map[string]string{}
	turns := make([]Turn, 0, len(req.Messages))
	for i, msg := range req.Messages {
		role := Role(msg.Role)
		if role != RoleUser && role != RoleAssistant {
			fields[fmt.Sprintf("messages[%d].role", i)] = "must be one of: user, assistant"
		}
		if msg.Content == nil {
			fields[fmt.Sprintf("messages[%d].content", i)] = "field required"
			continue
		}
		turns = append(turns, Turn{Role: role, Content: *msg.Content})
	}

	if len(fields) > 0 {
		return ChatInput{}, &ValidationError{Fields: fields}
	}
	return ChatInput{Turns: turns}, nil
}

// ValidatePhotoRequest rejects empty uploads and resolves the image MIME type.
func ValidatePhotoRequest(data []byte, mimeType, note string) (PhotoInput, error) {
	if len(data) == 0 {
		return PhotoInput{}, &InputError{Code: "EMPTY_FILE", Message: "Boş dosya"}
	}
	return PhotoInput{
		Data:     data,
		MIMEType: resolveImageMIME(mimeType, data),
		Note:     note,
	}, nil
}

// resolveImageMIME prefers the declared type. An undeclared or generic type is
// sniffed from the bytes, and anything that still isn't an image becomes
// image/jpeg.
func resolveImageMIME(declared string, data []byte) string {
	mediaType := baseMediaType(declared)
	if mediaType == "" || mediaType == genericMIME {
		mediaType = baseMediaType(http.DetectContentType(data))
		if !strings.HasPrefix(mediaType, "image/") {
			mediaType = defaultImageMIME
		}
	}
	return mediaType
}

func baseMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return mediaType
}
