package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/ArtGallery/internal/usecase"
	"github.com/GoArmGo/ArtGallery/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ArtPieceHandler — обработчик HTTP-запросов для работы с произведениями.
// Все методы требуют владельца в контексте (см. TokenAuth)
type ArtPieceHandler struct {
	artPieces usecase.ArtPieceUseCase
	validator *validation.Validator
	logger    *slog.Logger
}

// NewArtPieceHandler создаёт новый экземпляр ArtPieceHandler.
func NewArtPieceHandler(uc usecase.ArtPieceUseCase, v *validation.Validator, logger *slog.Logger) *ArtPieceHandler {
	return &ArtPieceHandler{
		artPieces: uc,
		validator: v,
		logger:    logger,
	}
}

// List — произведения текущего владельца.
func (h *ArtPieceHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())

	pieces, err := h.artPieces.List(r.Context(), owner.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, pieces, h.logger)
}

// Create — новое произведение. Файл из поля image загружается на медиа-хостинг,
// его URL заменяет image_url.
func (h *ArtPieceHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())

	fields, err := parseRequestFields(r)
	if err != nil {
		respondBodyError(w, err, h.logger)
		return
	}
	defer fields.close()

	input, decodeErrs := fields.artPieceCreate()
	if decodeErrs.HasErrors() {
		mergeValidation(w, h.validator, input, decodeErrs, imageSkip(fields), h.logger)
		return
	}

	piece, err := h.artPieces.Create(r.Context(), owner.ID, input, fields.image)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, piece, h.logger)
}

// Get — одно произведение владельца.
func (h *ArtPieceHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	id, ok := pieceID(r)
	if !ok {
		respondEmpty(w, http.StatusNotFound)
		return
	}

	piece, err := h.artPieces.Get(r.Context(), id, owner.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, piece, h.logger)
}

// Update — частичное изменение: непереданные поля сохраняются.
func (h *ArtPieceHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	id, ok := pieceID(r)
	if !ok {
		respondEmpty(w, http.StatusNotFound)
		return
	}

	fields, err := parseRequestFields(r)
	if err != nil {
		respondBodyError(w, err, h.logger)
		return
	}
	defer fields.close()

	patch, decodeErrs := fields.artPiecePatch()
	if decodeErrs.HasErrors() {
		// чужое или отсутствующее произведение важнее ошибок в теле
		if _, err := h.artPieces.Get(r.Context(), id, owner.ID); err != nil {
			handleError(w, err, h.logger)
			return
		}
		mergeValidation(w, h.validator, patch, decodeErrs, imageSkip(fields), h.logger)
		return
	}

	piece, err := h.artPieces.Update(r.Context(), id, owner.ID, patch, fields.image)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, piece, h.logger)
}

// Delete — удаляет произведение владельца, 204 без тела.
func (h *ArtPieceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := OwnerFromContext(r.Context())
	id, ok := pieceID(r)
	if !ok {
		respondEmpty(w, http.StatusNotFound)
		return
	}

	if err := h.artPieces.Delete(r.Context(), id, owner.ID); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondEmpty(w, http.StatusNoContent)
}

// pieceID разбирает {id} из пути. Нечисловой id и id за пределами SERIAL
// ведут себя как отсутствующий маршрут
func pieceID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 31)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// imageSkip — поля, которые не проверяются, когда URL придёт от загрузки файла
func imageSkip(fields *requestFields) []string {
	if fields.image == nil {
		return nil
	}
	return []string{"image_url"}
}
