package ports

import (
	"context"

	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// OwnerStorage определяет методы для взаимодействия с хранилищем владельцев
type OwnerStorage interface {
	// CreateOwner сохраняет нового владельца и заполняет его ID.
	// При нарушении уникальности username/email возвращает domain.ErrDuplicate
	CreateOwner(ctx context.Context, owner *domain.Owner) error

	// FindOwnerConflicts сообщает, заняты ли username и email
	FindOwnerConflicts(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)

	// GetOwnerByUsername возвращает nil, nil если владельца нет
	GetOwnerByUsername(ctx context.Context, username string) (*domain.Owner, error)

	// GetOwnerByID возвращает nil, nil если владельца нет
	GetOwnerByID(ctx context.Context, id uint) (*domain.Owner, error)
}

// ArtPieceStorage определяет методы для работы с произведениями.
// Все методы, кроме CreateArtPiece, ограничены владельцем: чужая запись неотличима от отсутствующей.
type ArtPieceStorage interface {
	ListArtPieces(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error)
	GetArtPiece(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error)
	CreateArtPiece(ctx context.Context, piece *domain.ArtPiece) error
	// UpdateArtPiece пишет только переданные колонки, возвращает domain.ErrNotFound если ничего не обновлено
	UpdateArtPiece(ctx context.Context, id, ownerID uint, changes map[string]any) error
	DeleteArtPiece(ctx context.Context, id, ownerID uint) error
}

// ImageReferences отвечает воркеру очистки, нужен ли ещё URL изображения
type ImageReferences interface {
	// ImageURLInUse сообщает, ссылается ли на url хотя бы одно произведение любого владельца
	ImageURLInUse(ctx context.Context, url string) (bool, error)
}

// TokenStorage хранит по одному токену на владельца
type TokenStorage interface {
	// GetOrCreateToken сохраняет candidate, если у владельца ещё нет токена,
	// и в любом случае возвращает действующий токен владельца
	GetOrCreateToken(ctx context.Context, ownerID uint, candidate string) (string, error)

	// OwnerIDByToken возвращает domain.ErrInvalidToken для неизвестного токена
	OwnerIDByToken(ctx context.Context, token string) (uint, error)
}
