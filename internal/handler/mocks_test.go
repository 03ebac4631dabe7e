package handler_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockCredentialUseCase struct {
	mock.Mock
}

func (m *MockCredentialUseCase) Register(ctx context.Context, input domain.RegisterInput) (*domain.Owner, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockCredentialUseCase) Authenticate(ctx context.Context, username, password string) (*domain.Owner, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockCredentialUseCase) IssueOrGetToken(ctx context.Context, ownerID uint) (string, error) {
	args := m.Called(ctx, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialUseCase) OwnerByToken(ctx context.Context, token string) (*domain.Owner, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

type MockArtPieceUseCase struct {
	mock.Mock
}

func (m *MockArtPieceUseCase) List(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceUseCase) Get(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceUseCase) Create(ctx context.Context, ownerID uint, input domain.ArtPieceCreate, image *domain.Upload) (*domain.ArtPiece, error) {
	args := m.Called(ctx, ownerID, input, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceUseCase) Update(ctx context.Context, id, ownerID uint, patch domain.ArtPiecePatch, image *domain.Upload) (*domain.ArtPiece, error) {
	args := m.Called(ctx, id, ownerID, patch, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtPiece), args.Error(1)
}

func (m *MockArtPieceUseCase) Delete(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }
