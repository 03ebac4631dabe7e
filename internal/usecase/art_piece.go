package usecase

import (
	"context"

	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// ArtPieceUseCase определяет интерфейс бизнес-логики работы с произведениями.
// ownerID всегда берётся из аутентифицированного запроса
type ArtPieceUseCase interface {
	// List возвращает все произведения владельца
	List(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error)

	// Get возвращает domain.ErrNotFound, если произведения нет или оно чужое
	Get(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error)

	// Create проверяет поля, при наличии image загружает файл на медиа-хостинг
	// и сохраняет произведение с серверными created_at и owner_id
	Create(ctx context.Context, ownerID uint, input domain.ArtPieceCreate, image *domain.Upload) (*domain.ArtPiece, error)

	// Update применяет частичное изменение, непереданные поля сохраняют прежние значения
	Update(ctx context.Context, id, ownerID uint, patch domain.ArtPiecePatch, image *domain.Upload) (*domain.ArtPiece, error)

	// Delete удаляет произведение владельца
	Delete(ctx context.Context, id, ownerID uint) error
}
