package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/core/ports"
	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/messaging/payloads"
)

type imageCleanupHandler func(context.Context, payloads.ImageCleanupPayload) error

// runWorker запускает потребителя RabbitMQ и ждёт отмены ctx
func runWorker(ctx context.Context, consumer ports.ImageCleanupConsumer, handler imageCleanupHandler, logger *slog.Logger) error {
	logger.Info("worker started, waiting for image cleanup messages")

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := consumer.StartConsumingImageCleanup(workerCtx, handler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}

	<-workerCtx.Done()
	logger.Info("worker stopped")
	return nil
}

// newImageCleanupHandler удаляет изображение с медиа-хостинга, если на него
// больше не ссылается ни одно произведение.
// Ошибка возвращает сообщение в очередь, кроме URL, которые хранилищу не принадлежат
func newImageCleanupHandler(media ports.MediaStore, refs ports.ImageReferences, logger *slog.Logger) imageCleanupHandler {
	return func(ctx context.Context, payload payloads.ImageCleanupPayload) error {
		log := logger.With(
			"image_url", payload.ImageURL,
			"art_piece_id", payload.ArtPieceID,
			"reason", payload.Reason,
		)

		if payload.ImageURL == "" {
			log.Warn("image cleanup skipped, empty url")
			return nil
		}

		inUse, err := refs.ImageURLInUse(ctx, payload.ImageURL)
		if err != nil {
			log.Error("image reference lookup failed", "error", err)
			return err
		}
		if inUse {
			log.Info("image cleanup skipped, url is still referenced")
			return nil
		}

		err = media.Delete(ctx, payload.ImageURL)
		switch {
		case errors.Is(err, domain.ErrForeignURL):
			log.Info("image cleanup skipped, url is not hosted by media store")
			return nil
		case err != nil:
			log.Error("image cleanup failed", "error", err)
			return err
		}

		log.Info("image deleted")
		return nil
	}
}
