package usecase

import (
	"context"

	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// CredentialUseCase определяет интерфейс регистрации, входа и проверки токенов
type CredentialUseCase interface {
	// Register создаёт владельца. Ошибки полей и занятые username/email
	// возвращаются как *domain.ValidationError
	Register(ctx context.Context, input domain.RegisterInput) (*domain.Owner, error)

	// Authenticate находит владельца по точному username и сверяет пароль.
	// При любом несовпадении возвращает domain.ErrInvalidCredentials
	Authenticate(ctx context.Context, username, password string) (*domain.Owner, error)

	// IssueOrGetToken возвращает токен владельца, создавая его при первом обращении.
	// Повторные вызовы возвращают тот же токен
	IssueOrGetToken(ctx context.Context, ownerID uint) (string, error)

	// OwnerByToken разрешает токен в владельца или возвращает domain.ErrInvalidToken
	OwnerByToken(ctx context.Context, token string) (*domain.Owner, error)
}
