package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "gallery:token:"

func ownerKey(ownerID uint) string { return keyPrefix + "owner:" + strconv.FormatUint(uint64(ownerID), 10) }
func tokenKey(token string) string { return keyPrefix + "key:" + token }

// TokenStore реализует ports.TokenStorage на Redis.
// Хранятся две записи: владелец -> токен и токен -> владелец
type TokenStore struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewTokenStore(client redis.UniversalClient, logger *slog.Logger) *TokenStore {
	return &TokenStore{client: client, logger: logger}
}

// GetOrCreateToken закрепляет candidate за владельцем через SETNX.
// Обратная запись создаётся до SETNX, поэтому выданный токен всегда разрешается в владельца
func (s *TokenStore) GetOrCreateToken(ctx context.Context, ownerID uint, candidate string) (string, error) {
	start := time.Now()

	if err := s.client.Set(ctx, tokenKey(candidate), ownerID, 0).Err(); err != nil {
		return "", fmt.Errorf("redis set token: %w", err)
	}

	created, err := s.client.SetNX(ctx, ownerKey(ownerID), candidate, 0).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx owner token: %w", err)
	}
	if !created {
		if err := s.client.Del(ctx, tokenKey(candidate)).Err(); err != nil {
			s.logger.Warn("failed to drop unused token candidate", "owner_id", ownerID, "error", err)
		}
	}

	token, err := s.client.Get(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return "", fmt.Errorf("redis get owner token: %w", err)
	}

	s.logger.Info("token resolved",
		"owner_id", ownerID,
		"created", created,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return token, nil
}

// OwnerIDByToken возвращает domain.ErrInvalidToken для неизвестного токена
func (s *TokenStore) OwnerIDByToken(ctx context.Context, token string) (uint, error) {
	raw, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrInvalidToken
		}
		return 0, fmt.Errorf("redis get token: %w", err)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis token %q has malformed owner id: %w", token, err)
	}
	return uint(id), nil
}
