package handlers

import (
	"encoding/json"
	"net/http"

	"finnkey-backend/internal/models"
	"finnkey-backend/internal/services"
)

const maxChatBodyBytes = 1 << 20

type ChatHandler struct {
	relay *services.ChatRelay
}

func NewChatHandler(relay *services.ChatRelay) *ChatHandler {
	return &ChatHandler{relay: relay}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("BODY_TOO_LARGE", "İstek gövdesi çok büyük", r))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Invalid request body",
			map[string]string{"body": err.Error()}, r))
		return
	}

	input, err := services.ValidateChatRequest(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	reply, err := h.relay.Reply(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}
