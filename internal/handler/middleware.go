package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/usecase"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

const authScheme = "Token"

type ownerCtxKey struct{}

// OwnerFromContext возвращает владельца, установленного TokenAuth.
// Вне защищённых маршрутов возвращает nil
func OwnerFromContext(ctx context.Context) *domain.Owner {
	owner, _ := ctx.Value(ownerCtxKey{}).(*domain.Owner)
	return owner
}

// WithOwner кладёт владельца в контекст
func WithOwner(ctx context.Context, owner *domain.Owner) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// TokenAuth — middleware аутентификации по заголовку "Authorization: Token <key>".
func TokenAuth(credentials usecase.CredentialUseCase, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, key, _ := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !strings.EqualFold(scheme, authScheme) {
				w.Header().Set("WWW-Authenticate", authScheme)
				respondWithDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.", logger)
				return
			}

			key = strings.TrimSpace(key)
			if key == "" || strings.ContainsAny(key, " \t") {
				w.Header().Set("WWW-Authenticate", authScheme)
				respondWithDetail(w, http.StatusUnauthorized, "Invalid token header.", logger)
				return
			}

			owner, err := credentials.OwnerByToken(r.Context(), key)
			if err != nil {
				handleError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}
