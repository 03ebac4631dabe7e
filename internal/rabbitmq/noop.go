package rabbitmq

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/messaging/payloads"
)

// NoopPublisher используется, когда RABBITMQ_URL не задан: событие только логируется
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) PublishImageCleanup(_ context.Context, payload payloads.ImageCleanupPayload) error {
	p.logger.Info("image cleanup skipped, message queue is not configured",
		"image_url", payload.ImageURL,
		"art_piece_id", payload.ArtPieceID,
		"reason", payload.Reason,
	)
	return nil
}
