package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithDetail — ошибка в формате {"detail": ...}, так отвечают проверки аутентификации
func respondWithDetail(w http.ResponseWriter, code int, detail string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"detail": detail}, logger)
}

// respondEmpty — ответ без тела (404, 204)
func respondEmpty(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// handleError переводит ошибку usecase в HTTP-ответ.
// Чужое и отсутствующее произведение неразличимы: оба дают 404
func handleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, verr.Fields, logger)
	case errors.Is(err, domain.ErrNotFound):
		respondEmpty(w, http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials", logger)
	case errors.Is(err, domain.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", authScheme)
		respondWithDetail(w, http.StatusUnauthorized, "Invalid token.", logger)
	case errors.Is(err, domain.ErrUpstream):
		logger.Error("media host failure", "error", err)
		respondWithError(w, http.StatusBadGateway, "image upload failed", logger)
	default:
		logger.Error("internal error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error", logger)
	}
}

// respondBodyError отвечает на ошибку разбора тела запроса
func respondBodyError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondWithDetail(w, http.StatusRequestEntityTooLarge, "Request body too large.", logger)
	case isMalformedBody(err):
		logger.Warn("malformed request body", "error", err)
		respondWithDetail(w, http.StatusBadRequest, err.Error(), logger)
	default:
		handleError(w, err, logger)
	}
}
