package ports

import (
	"context"

	"github.com/GoArmGo/ArtGallery/internal/messaging/payloads"
)

// ImageCleanupPublisher публикует задачи на удаление изображений, которые больше не используются.
// Используется usecase'ом произведений после удаления записи или замены картинки
type ImageCleanupPublisher interface {
	PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error
}

// ImageCleanupConsumer определяет методы для потребления задач очистки
// будет использоваться воркером
type ImageCleanupConsumer interface {
	// StartConsumingImageCleanup начинает прослушивание очереди,
	// handler вызывается для каждого полученного сообщения
	StartConsumingImageCleanup(ctx context.Context, handler func(context.Context, payloads.ImageCleanupPayload) error) error
}
