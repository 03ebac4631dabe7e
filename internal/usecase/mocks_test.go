package usecase

import (
	"context"
	"io"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/messaging/payloads"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

type MockOwnerStorage struct {
	mock.Mock
}

func (m *MockOwnerStorage) CreateOwner(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockOwnerStorage) FindOwnerConflicts(ctx context.Context, username, email string) (bool, bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockOwnerStorage) GetOwnerByUsername(ctx context.Context, username string) (*domain.Owner, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockOwnerStorage) GetOwnerByID(ctx context.Context, id uint) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

type MockTokenStorage struct {
	mock.Mock
}

func (m *MockTokenStorage) GetOrCreateToken(ctx context.Context, ownerID uint, candidate string) (string, error) {
	args := m.Called(ctx, ownerID, candidate)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStorage) OwnerIDByToken(ctx context.Context, token string) (uint, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uint), args.Error(1)
}

type MockArtPieceStorage struct {
	mock.Mock
}

func (m *MockArtPieceStorage) ListArtPieces(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceStorage) GetArtPiece(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceStorage) CreateArtPiece(ctx context.Context, piece *domain.ArtPiece) error {
	args := m.Called(ctx, piece)
	return args.Error(0)
}

func (m *MockArtPieceStorage) UpdateArtPiece(ctx context.Context, id, ownerID uint, changes map[string]any) error {
	args := m.Called(ctx, id, ownerID, changes)
	return args.Error(0)
}

func (m *MockArtPieceStorage) DeleteArtPiece(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, file domain.Upload) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, publicURL string) error {
	args := m.Called(ctx, publicURL)
	return args.Error(0)
}

type MockCleanupPublisher struct {
	mock.Mock
}

func (m *MockCleanupPublisher) PublishImageCleanup(ctx context.Context, payload payloads.ImageCleanupPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
