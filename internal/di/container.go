package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/adapter/cloudinary"
	"github.com/GoArmGo/ArtGallery/internal/adapter/redis"
	"github.com/GoArmGo/ArtGallery/internal/adapter/storage/minio"
	"github.com/GoArmGo/ArtGallery/internal/app"
	"github.com/GoArmGo/ArtGallery/internal/auth/password"
	"github.com/GoArmGo/ArtGallery/internal/config"
	"github.com/GoArmGo/ArtGallery/internal/core/ports"
	"github.com/GoArmGo/ArtGallery/internal/database/client"
	"github.com/GoArmGo/ArtGallery/internal/database/postgres"
	"github.com/GoArmGo/ArtGallery/internal/database/storage"
	"github.com/GoArmGo/ArtGallery/internal/handler"
	"github.com/GoArmGo/ArtGallery/internal/logger"
	"github.com/GoArmGo/ArtGallery/internal/rabbitmq"
	"github.com/GoArmGo/ArtGallery/internal/usecase"
	"github.com/GoArmGo/ArtGallery/internal/validation"
	goredis "github.com/redis/go-redis/v9"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые ресурсы закрываются
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	// 2. Инициализация PostgreSQL клиента и схемы
	dbClient, err := client.NewClient(cfg, slogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, dbClient.Close)

	if cfg.Database.AutoMigrate {
		if err = postgres.ApplyMigrations(ctx, dbClient.DB.DB, slogger); err != nil {
			return nil, err
		}
	}

	gormDB, err := postgres.OpenGorm(dbClient.DB.DB)
	if err != nil {
		return nil, err
	}

	// 3. Инициализация хранилищ
	ownerStorage := postgres.NewGormOwnerStorage(gormDB, slogger)
	artPieceStorage := postgres.NewGormArtPieceStorage(gormDB, slogger)

	tokenStorage, closeTokens, err := buildTokenStorage(ctx, cfg, dbClient, slogger)
	if err != nil {
		return nil, err
	}
	if closeTokens != nil {
		closers = append(closers, closeTokens)
	}

	// 4. Медиа-хостинг
	media, err := buildMediaStore(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 5. Очередь очистки изображений: без RABBITMQ_URL события только логируются
	var (
		publisher ports.ImageCleanupPublisher = rabbitmq.NewNoopPublisher(slogger)
		consumer  ports.ImageCleanupConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() error {
			rabbitMQClient.Close()
			return nil
		})
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, image cleanup is disabled")
	}

	hasher, err := password.New(cfg.PasswordHasher)
	if err != nil {
		return nil, err
	}
	validator := validation.New()

	// 6. Лимитер одновременных загрузок на медиа-хостинг
	uploadLimiter := make(chan struct{}, cfg.UploadConcurrency)

	// 7. Инициализация бизнес-логики (usecases)
	credentialUseCase := usecase.NewCredentialUseCase(ownerStorage, tokenStorage, hasher, validator, slogger)
	artPieceUseCase := usecase.NewArtPieceUseCase(artPieceStorage, media, publisher, validator, uploadLimiter, slogger)

	router := handler.NewRouter(handler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxUploadSize,
		CORSEnabled:    cfg.CORS.Enabled,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, credentialUseCase, artPieceUseCase, validator, dbClient, slogger)

	// 8. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, router, media, artPieceStorage, consumer, closers...)

	slogger.Info("all dependencies initialized",
		"token_store", cfg.TokenStore,
		"password_hasher", cfg.PasswordHasher,
		"media_backend", cfg.MediaBackend,
	)
	return application, nil
}

// buildTokenStorage выбирает хранилище токенов по TOKEN_STORE
func buildTokenStorage(ctx context.Context, cfg *config.Config, dbClient *client.Client, logger *slog.Logger) (ports.TokenStorage, func() error, error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
		}
		logger.Info("redis token store connected", "addr", cfg.Redis.Addr)
		return redis.NewTokenStore(rdb, logger), rdb.Close, nil
	default:
		return storage.NewTokenStorage(dbClient.DB, logger), nil, nil
	}
}

// buildMediaStore выбирает медиа-хостинг по MEDIA_BACKEND
func buildMediaStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.MediaStore, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendS3:
		fileStorage, err := minio.NewMinioClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := fileStorage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return fileStorage, nil
	default:
		return cloudinary.NewCloudinaryClient(cfg, logger)
	}
}
