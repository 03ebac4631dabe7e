package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/ArtGallery/internal/config"
	"github.com/GoArmGo/ArtGallery/internal/core/ports"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// App — собранное приложение: HTTP API и воркер очистки изображений
type App struct {
	Config  *config.Config
	logger  *slog.Logger
	router  http.Handler
	media   ports.MediaStore
	refs    ports.ImageReferences
	cleanup ports.ImageCleanupConsumer
	closers []func() error
}

// NewApp создаёт App. cleanup может быть nil, если очередь не настроена,
// тогда режим worker недоступен. refs нужен воркеру, чтобы не удалять
// изображения, на которые ещё ссылаются произведения.
// closers вызываются в обратном порядке при Shutdown
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	router http.Handler,
	media ports.MediaStore,
	refs ports.ImageReferences,
	cleanup ports.ImageCleanupConsumer,
	closers ...func() error,
) *App {
	return &App{
		Config:  cfg,
		logger:  logger,
		router:  router,
		media:   media,
		refs:    refs,
		cleanup: cleanup,
		closers: closers,
	}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в режиме server или worker и блокируется до SIGINT/SIGTERM
// или отмены ctx
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("application starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.router, a.logger)
	case ModeWorker:
		if a.cleanup == nil {
			err = errors.New("режим worker требует RABBITMQ_URL")
			break
		}
		err = runWorker(ctx, a.cleanup, newImageCleanupHandler(a.media, a.refs, a.logger), a.logger)
	default:
		err = fmt.Errorf("неизвестный режим: %s (используйте 'server' или 'worker')", mode)
	}

	// аккуратно закрываем ресурсы
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}

	if err != nil {
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
