package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/usecase"
	"github.com/GoArmGo/ArtGallery/internal/validation"
)

// tokenResponse — тело ответа регистрации и входа
type tokenResponse struct {
	Token string `json:"token"`
}

// OwnerHandler — обработчик регистрации и входа.
type OwnerHandler struct {
	credentials usecase.CredentialUseCase
	validator   *validation.Validator
	logger      *slog.Logger
}

// NewOwnerHandler создаёт новый экземпляр OwnerHandler.
func NewOwnerHandler(uc usecase.CredentialUseCase, v *validation.Validator, logger *slog.Logger) *OwnerHandler {
	return &OwnerHandler{
		credentials: uc,
		validator:   v,
		logger:      logger,
	}
}

// Register — создаёт владельца и сразу выдаёт ему токен.
func (h *OwnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	fields, err := parseRequestFields(r)
	if err != nil {
		respondBodyError(w, err, h.logger)
		return
	}
	defer fields.close()

	input, decodeErrs := fields.registerInput()
	if decodeErrs.HasErrors() {
		mergeValidation(w, h.validator, input, decodeErrs, nil, h.logger)
		return
	}

	owner, err := h.credentials.Register(r.Context(), input)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	token, err := h.credentials.IssueOrGetToken(r.Context(), owner.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, tokenResponse{Token: token}, h.logger)
}

// Login — проверяет username/password и возвращает токен владельца.
// Токен не перевыпускается: повторный вход отдаёт тот же
func (h *OwnerHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := parseRequestFields(r)
	if err != nil {
		respondBodyError(w, err, h.logger)
		return
	}
	defer fields.close()

	// значения неподдерживаемых типов считаются пустыми и не пройдут проверку
	username := strings.TrimSpace(fields.values["username"])
	password := fields.values["password"]

	owner, err := h.credentials.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			h.logger.Warn("login failed", "username", username, "error", err)
		}
		handleError(w, err, h.logger)
		return
	}

	token, err := h.credentials.IssueOrGetToken(r.Context(), owner.ID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token}, h.logger)
}

// mergeValidation проверяет input и отвечает 400 с объединёнными ошибками.
// Поля с ошибками разбора и поля из skip проверкой не оцениваются
func mergeValidation(w http.ResponseWriter, v *validation.Validator, input any, decodeErrs *domain.ValidationError, skip []string, logger *slog.Logger) {
	verr, err := v.Struct(input)
	if err != nil {
		handleError(w, err, logger)
		return
	}
	for field := range decodeErrs.Fields {
		verr.Drop(field)
	}
	for _, field := range skip {
		verr.Drop(field)
	}
	verr.Merge(decodeErrs)
	respondWithJSON(w, http.StatusBadRequest, verr.Fields, logger)
}
