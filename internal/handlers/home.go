package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// HomeHandler serves the UI page from disk. The file is read per request.
type HomeHandler struct {
	indexPath string
}

func NewHomeHandler(indexPath string) *HomeHandler {
	return &HomeHandler{indexPath: indexPath}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(h.indexPath)
	if err != nil {
		slog.Error("index_unavailable", "path", h.indexPath, "err", err)
		writeJSON(w, http.StatusInternalServerError,
			errorResp("INDEX_MISSING", filepath.Base(h.indexPath)+" bulunamadı", r))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}
