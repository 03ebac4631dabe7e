package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/auth/password"
	"github.com/GoArmGo/ArtGallery/internal/core/ports"
	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/validation"
)

const (
	// tokenBytes даёт 40 hex-символов
	tokenBytes = 20

	msgUsernameTaken = "owner with this username already exists."
	msgEmailTaken    = "owner with this email already exists."
)

// credentialUseCase implements CredentialUseCase
type credentialUseCase struct {
	owners    ports.OwnerStorage
	tokens    ports.TokenStorage
	hasher    password.Hasher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCredentialUseCase создает новый экземпляр CredentialUseCase
func NewCredentialUseCase(
	owners ports.OwnerStorage,
	tokens ports.TokenStorage,
	hasher password.Hasher,
	validator *validation.Validator,
	logger *slog.Logger,
) CredentialUseCase {
	return &credentialUseCase{
		owners:    owners,
		tokens:    tokens,
		hasher:    hasher,
		validator: validator,
		logger:    logger,
	}
}

func (uc *credentialUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.Owner, error) {
	verr, err := uc.validator.Struct(input)
	if err != nil {
		return nil, err
	}

	if err := uc.checkConflicts(ctx, input, verr); err != nil {
		return nil, err
	}

	stored, err := uc.hasher.Hash(input.Password)
	if errors.Is(err, password.ErrTooLong) {
		if _, ok := verr.Fields["password"]; !ok {
			verr.Add("password", "Ensure this field has no more than 72 bytes.")
		}
	} else if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обработке пароля: %w", err)
	}

	if verr.HasErrors() {
		return nil, verr
	}

	owner := &domain.Owner{Username: input.Username, Email: input.Email, Password: stored}
	if err := uc.owners.CreateOwner(ctx, owner); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("usecase: ошибка при создании владельца: %w", err)
		}
		// параллельная регистрация заняла username или email между проверкой и вставкой
		raced := domain.NewValidationError()
		if err := uc.checkConflicts(ctx, input, raced); err != nil {
			return nil, err
		}
		if !raced.HasErrors() {
			raced.Add("username", msgUsernameTaken)
		}
		return nil, raced
	}

	uc.logger.Info("owner registered", "owner_id", owner.ID, "username", owner.Username)
	return owner, nil
}

// checkConflicts добавляет в verr ошибки занятости для полей, которые прошли проверку формата
func (uc *credentialUseCase) checkConflicts(ctx context.Context, input domain.RegisterInput, verr *domain.ValidationError) error {
	_, badUsername := verr.Fields["username"]
	_, badEmail := verr.Fields["email"]
	if badUsername && badEmail {
		return nil
	}

	usernameTaken, emailTaken, err := uc.owners.FindOwnerConflicts(ctx, input.Username, input.Email)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при проверке уникальности владельца: %w", err)
	}
	if usernameTaken && !badUsername {
		verr.Add("username", msgUsernameTaken)
	}
	if emailTaken && !badEmail {
		verr.Add("email", msgEmailTaken)
	}
	return nil
}

func (uc *credentialUseCase) Authenticate(ctx context.Context, username, pw string) (*domain.Owner, error) {
	if username == "" || pw == "" {
		return nil, domain.ErrInvalidCredentials
	}

	owner, err := uc.owners.GetOwnerByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске владельца: %w", err)
	}
	if owner == nil || !uc.hasher.Compare(owner.Password, pw) {
		uc.logger.Warn("authentication failed", "username", username)
		return nil, domain.ErrInvalidCredentials
	}
	return owner, nil
}

func (uc *credentialUseCase) IssueOrGetToken(ctx context.Context, ownerID uint) (string, error) {
	candidate, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка генерации токена: %w", err)
	}

	token, err := uc.tokens.GetOrCreateToken(ctx, ownerID, candidate)
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка при получении токена владельца %d: %w", ownerID, err)
	}
	return token, nil
}

func (uc *credentialUseCase) OwnerByToken(ctx context.Context, token string) (*domain.Owner, error) {
	ownerID, err := uc.tokens.OwnerIDByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("usecase: ошибка при проверке токена: %w", err)
	}

	owner, err := uc.owners.GetOwnerByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении владельца %d: %w", ownerID, err)
	}
	if owner == nil {
		return nil, domain.ErrInvalidToken
	}
	return owner, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
