package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"finnkey-backend/internal/models"
	"finnkey-backend/internal/services"
)

// Multipart parts beyond this stay on disk instead of memory.
const multipartMemory = 8 << 20

type PhotoHandler struct {
	relay          *services.PhotoRelay
	maxUploadBytes int64
}

func NewPhotoHandler(relay *services.PhotoRelay, maxUploadBytes int64) *PhotoHandler {
	return &PhotoHandler{relay: relay, maxUploadBytes: maxUploadBytes}
}

func (h *PhotoHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Dosya çok büyük", r))
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Invalid multipart form",
			map[string]string{"body": err.Error()}, r))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "No file provided",
			map[string]string{"file": "field required"}, r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("BAD_REQUEST", "Dosya okunamadı", r))
		return
	}

	input, err := services.ValidatePhotoRequest(data, header.Header.Get("Content-Type"), r.FormValue("note"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.relay.Analyze(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PhotoResponse{Result: result})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
