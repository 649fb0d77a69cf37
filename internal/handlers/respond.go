package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finnkey-backend/internal/middleware"
	"finnkey-backend/internal/models"
	"finnkey-backend/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Fields = fields
	return resp
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := r.Header.Get(middleware.RequestIDHeader)

	var (
		validationErr *services.ValidationError
		inputErr      *services.InputError
		upstreamErr   *services.UpstreamError
	)
	switch {
	case errors.As(err, &validationErr):
		slog.Info("request_rejected", "path", r.URL.Path, "fields", validationErr.Fields, "request_id", requestID)
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validationErr.Fields, r))
	case errors.As(err, &inputErr):
		slog.Info("request_rejected", "path", r.URL.Path, "reason", inputErr.Message, "request_id", requestID)
		code := inputErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		writeJSON(w, http.StatusBadRequest, errorResp(code, inputErr.Message, r))
	case errors.As(err, &upstreamErr):
		slog.Error("upstream_failed", "path", r.URL.Path, "op", upstreamErr.Op, "err", upstreamErr.Err, "request_id", requestID)
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", "Model çağrısı başarısız: "+upstreamErr.Err.Error(), r))
	default:
		slog.Error("internal_error", "path", r.URL.Path, "err", err, "request_id", requestID)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
