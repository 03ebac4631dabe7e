package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"gorm.io/gorm"
)

// ownedBy — единый предикат поиска и авторизации.
// Запись другого владельца им не находится, как и отсутствующая
const ownedBy = "id = ? AND owner_id = ?"

// GormArtPieceStorage реализует интерфейс ports.ArtPieceStorage с использованием GORM
type GormArtPieceStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormArtPieceStorage(db *gorm.DB, logger *slog.Logger) *GormArtPieceStorage {
	return &GormArtPieceStorage{db: db, logger: logger}
}

// ListArtPieces возвращает все произведения владельца в порядке добавления
func (s *GormArtPieceStorage) ListArtPieces(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error) {
	start := time.Now()

	pieces := make([]domain.ArtPiece, 0)
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Where("owner_id = ?", ownerID).Order("id").Find(&pieces).Error
	})
	if err != nil {
		s.logger.Error("failed to list art pieces", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("ошибка при получении списка произведений: %w", err)
	}

	s.logger.Debug("listed art pieces",
		"owner_id", ownerID,
		"count", len(pieces),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pieces, nil
}

// GetArtPiece возвращает nil, nil если записи нет или она принадлежит другому владельцу
func (s *GormArtPieceStorage) GetArtPiece(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error) {
	var piece domain.ArtPiece
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Where(ownedBy, id, ownerID).Take(&piece).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("art piece not found", "id", id, "owner_id", ownerID)
			return nil, nil
		}
		s.logger.Error("failed to get art piece", "id", id, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("ошибка при получении произведения по ID: %w", err)
	}
	return &piece, nil
}

// CreateArtPiece сохраняет произведение, ID заполняется бд
func (s *GormArtPieceStorage) CreateArtPiece(ctx context.Context, piece *domain.ArtPiece) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Create(piece).Error
	})
	if err != nil {
		s.logger.Error("failed to create art piece", "owner_id", piece.OwnerID, "error", err)
		return fmt.Errorf("ошибка при сохранении произведения: %w", err)
	}

	s.logger.Debug("art piece row inserted",
		"id", piece.ID,
		"owner_id", piece.OwnerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// UpdateArtPiece обновляет только переданные колонки
func (s *GormArtPieceStorage) UpdateArtPiece(ctx context.Context, id, ownerID uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	start := time.Now()

	var affected int64
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ArtPiece{}).Where(ownedBy, id, ownerID).Updates(changes)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.logger.Error("failed to update art piece", "id", id, "owner_id", ownerID, "error", err)
		return fmt.Errorf("ошибка при обновлении произведения: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("произведение %d: %w", id, domain.ErrNotFound)
	}

	s.logger.Debug("art piece row updated",
		"id", id,
		"owner_id", ownerID,
		"columns", len(changes),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteArtPiece удаляет произведение владельца
func (s *GormArtPieceStorage) DeleteArtPiece(ctx context.Context, id, ownerID uint) error {
	start := time.Now()

	var affected int64
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		res := tx.Where(ownedBy, id, ownerID).Delete(&domain.ArtPiece{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		s.logger.Error("failed to delete art piece", "id", id, "owner_id", ownerID, "error", err)
		return fmt.Errorf("ошибка при удалении произведения: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("произведение %d: %w", id, domain.ErrNotFound)
	}

	s.logger.Debug("art piece row deleted",
		"id", id,
		"owner_id", ownerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ImageURLInUse ищет url среди произведений всех владельцев
func (s *GormArtPieceStorage) ImageURLInUse(ctx context.Context, url string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Model(&domain.ArtPiece{}).Where("image_url = ?", url).Count(&count).Error
	})
	if err != nil {
		s.logger.Error("failed to look up image references", "image_url", url, "error", err)
		return false, fmt.Errorf("ошибка при поиске ссылок на изображение: %w", err)
	}
	return count > 0, nil
}
