package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Запросы пишутся с '?' и переводятся в плейсхолдеры драйвера через Rebind
const (
	insertTokenQuery = `
	INSERT INTO gallery_token (key, owner_id, created)
	VALUES (?, ?, ?)
	ON CONFLICT (owner_id) DO NOTHING
	`
	selectTokenByOwnerQuery = `SELECT key, owner_id FROM gallery_token WHERE owner_id = ? LIMIT 1`
	selectOwnerByTokenQuery = `SELECT owner_id FROM gallery_token WHERE key = ? LIMIT 1`
)

// TokenStorage реализует интерфейс ports.TokenStorage поверх sqlx.
// Один токен на владельца обеспечивается уникальным индексом по owner_id
type TokenStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewTokenStorage(db *sqlx.DB, logger *slog.Logger) *TokenStorage {
	return &TokenStorage{db: db, logger: logger}
}

// GetOrCreateToken вставляет candidate, если у владельца нет токена, и возвращает сохранённый.
// При гонке двух запросов оба получат токен победителя
func (s *TokenStorage) GetOrCreateToken(ctx context.Context, ownerID uint, candidate string) (string, error) {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(insertTokenQuery), candidate, ownerID, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to insert token", "owner_id", ownerID, "error", err)
		return "", fmt.Errorf("ошибка при сохранении токена: %w", err)
	}

	var token domain.Token
	if err = s.db.GetContext(ctx, &token, s.db.Rebind(selectTokenByOwnerQuery), ownerID); err != nil {
		s.logger.Error("failed to select token", "owner_id", ownerID, "error", err)
		return "", fmt.Errorf("ошибка при получении токена: %w", err)
	}

	created, _ := res.RowsAffected()
	s.logger.Info("token resolved",
		"owner_id", ownerID,
		"created", created > 0,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return token.Key, nil
}

// OwnerIDByToken возвращает владельца токена
func (s *TokenStorage) OwnerIDByToken(ctx context.Context, key string) (uint, error) {
	var ownerID uint
	err := s.db.GetContext(ctx, &ownerID, s.db.Rebind(selectOwnerByTokenQuery), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrInvalidToken
		}
		s.logger.Error("failed to look up token", "error", err)
		return 0, fmt.Errorf("ошибка при поиске токена: %w", err)
	}
	return ownerID, nil
}
