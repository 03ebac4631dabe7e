package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/usecase"
	"github.com/GoArmGo/ArtGallery/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger — проверка доступности бд для /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig — параметры HTTP-слоя
type RouterConfig struct {
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSEnabled    bool
	AllowedOrigins []string
}

// NewRouter собирает маршруты API.
func NewRouter(
	cfg RouterConfig,
	credentials usecase.CredentialUseCase,
	artPieces usecase.ArtPieceUseCase,
	v *validation.Validator,
	db Pinger,
	logger *slog.Logger,
) http.Handler {
	ownerHandler := NewOwnerHandler(credentials, v, logger)
	artPieceHandler := NewArtPieceHandler(artPieces, v, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.StripSlashes)
	if cfg.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(LimitBody(cfg.MaxBodySize))
	}

	// 404 без тела, как и для чужих произведений
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondEmpty(w, http.StatusNotFound)
	})

	r.Get("/healthz", healthz(db, logger))

	r.Post("/register", ownerHandler.Register)
	r.Post("/login", ownerHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(credentials, logger))

		r.Get("/art-pieces", artPieceHandler.List)
		r.Post("/art-pieces", artPieceHandler.Create)
		r.Get("/art-pieces/{id:[0-9]+}", artPieceHandler.Get)
		r.Put("/art-pieces/{id:[0-9]+}", artPieceHandler.Update)
		r.Delete("/art-pieces/{id:[0-9]+}", artPieceHandler.Delete)
	})

	return r
}

// LimitBody ограничивает размер тела запроса
func LimitBody(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthz(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Error("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
