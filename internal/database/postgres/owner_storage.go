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

// GormOwnerStorage реализует интерфейс ports.OwnerStorage с использованием GORM
type GormOwnerStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormOwnerStorage создает новый экземпляр GormOwnerStorage
func NewGormOwnerStorage(db *gorm.DB, logger *slog.Logger) *GormOwnerStorage {
	return &GormOwnerStorage{db: db, logger: logger}
}

// CreateOwner сохраняет владельца, ID заполняется бд
func (s *GormOwnerStorage) CreateOwner(ctx context.Context, owner *domain.Owner) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Create(owner).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("owner already exists", "username", owner.Username)
			return fmt.Errorf("ошибка при создании владельца %q: %w", owner.Username, domain.ErrDuplicate)
		}
		s.logger.Error("failed to create owner", "username", owner.Username, "error", err)
		return fmt.Errorf("ошибка при создании владельца %q: %w", owner.Username, err)
	}

	s.logger.Debug("owner row inserted",
		"owner_id", owner.ID,
		"username", owner.Username,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// FindOwnerConflicts одним запросом проверяет занятость username и email
func (s *GormOwnerStorage) FindOwnerConflicts(ctx context.Context, username, email string) (bool, bool, error) {
	var owners []domain.Owner
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Select("username", "email").
			Where("username = ? OR email = ?", username, email).
			Find(&owners).Error
	})
	if err != nil {
		s.logger.Error("failed to check owner conflicts", "username", username, "error", err)
		return false, false, fmt.Errorf("ошибка при проверке уникальности владельца: %w", err)
	}

	var usernameTaken, emailTaken bool
	for _, o := range owners {
		if o.Username == username {
			usernameTaken = true
		}
		if o.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

// GetOwnerByUsername ищет владельца по точному (регистрозависимому) совпадению username
func (s *GormOwnerStorage) GetOwnerByUsername(ctx context.Context, username string) (*domain.Owner, error) {
	return s.getOwner(ctx, "username = ?", username)
}

// GetOwnerByID ищет владельца по ID
func (s *GormOwnerStorage) GetOwnerByID(ctx context.Context, id uint) (*domain.Owner, error) {
	return s.getOwner(ctx, "id = ?", id)
}

func (s *GormOwnerStorage) getOwner(ctx context.Context, query string, arg any) (*domain.Owner, error) {
	var owner domain.Owner
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return tx.Where(query, arg).Take(&owner).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get owner", "query", query, "error", err)
		return nil, fmt.Errorf("ошибка при получении владельца: %w", err)
	}
	return &owner, nil
}
