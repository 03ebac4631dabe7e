package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/core/ports"
	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/messaging/payloads"
	"github.com/GoArmGo/ArtGallery/internal/validation"
)

// maxImageURLLength — ограничение колонки image_url
const maxImageURLLength = 255

// artPieceUseCase implements ArtPieceUseCase
type artPieceUseCase struct {
	pieces        ports.ArtPieceStorage
	media         ports.MediaStore
	cleanup       ports.ImageCleanupPublisher
	validator     *validation.Validator
	uploadLimiter chan struct{}
	logger        *slog.Logger
	now           func() time.Time
}

// NewArtPieceUseCase создает новый экземпляр ArtPieceUseCase.
// uploadLimiter ограничивает число одновременных загрузок на медиа-хостинг
func NewArtPieceUseCase(
	pieces ports.ArtPieceStorage,
	media ports.MediaStore,
	cleanup ports.ImageCleanupPublisher,
	validator *validation.Validator,
	uploadLimiter chan struct{},
	logger *slog.Logger,
) ArtPieceUseCase {
	return &artPieceUseCase{
		pieces:        pieces,
		media:         media,
		cleanup:       cleanup,
		validator:     validator,
		uploadLimiter: uploadLimiter,
		logger:        logger,
		now:           time.Now,
	}
}

func (uc *artPieceUseCase) List(ctx context.Context, ownerID uint) ([]domain.ArtPiece, error) {
	pieces, err := uc.pieces.ListArtPieces(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении произведений владельца %d: %w", ownerID, err)
	}
	if pieces == nil {
		pieces = []domain.ArtPiece{}
	}
	return pieces, nil
}

func (uc *artPieceUseCase) Get(ctx context.Context, id, ownerID uint) (*domain.ArtPiece, error) {
	piece, err := uc.pieces.GetArtPiece(ctx, id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении произведения %d: %w", id, err)
	}
	if piece == nil {
		return nil, fmt.Errorf("usecase: произведение %d: %w", id, domain.ErrNotFound)
	}
	return piece, nil
}

func (uc *artPieceUseCase) Create(ctx context.Context, ownerID uint, input domain.ArtPieceCreate, image *domain.Upload) (*domain.ArtPiece, error) {
	verr, err := uc.validator.Struct(input)
	if err != nil {
		return nil, err
	}
	if image != nil {
		// файл заменяет image_url из тела запроса
		verr.Drop("image_url")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	uploaded := false
	if image != nil {
		imageURL, err := uc.upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		input.ImageURL = imageURL
		uploaded = true
	}

	// URL из тела запроса может указывать на чужое изображение
	piece := &domain.ArtPiece{
		Title:        input.Title,
		Description:  input.Description,
		Price:        *input.Price,
		ImageURL:     input.ImageURL,
		CreatedAt:    uc.now().UTC().Truncate(time.Microsecond),
		OwnerID:      ownerID,
		ImageManaged: uploaded,
	}

	if err := uc.pieces.CreateArtPiece(ctx, piece); err != nil {
		if uploaded {
			uc.publishCleanup(ctx, piece.ImageURL, ownerID, 0, payloads.ReasonOrphaned)
		}
		return nil, fmt.Errorf("usecase: ошибка при сохранении произведения: %w", err)
	}

	uc.logger.Info("art piece created", "id", piece.ID, "owner_id", ownerID, "uploaded", uploaded)
	return piece, nil
}

func (uc *artPieceUseCase) Update(ctx context.Context, id, ownerID uint, patch domain.ArtPiecePatch, image *domain.Upload) (*domain.ArtPiece, error) {
	existing, err := uc.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	verr, err := uc.validator.Struct(patch)
	if err != nil {
		return nil, err
	}
	if image != nil {
		verr.Drop("image_url")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	uploaded := false
	if image != nil {
		imageURL, err := uc.upload(ctx, *image)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &imageURL
		uploaded = true
	}

	oldImageURL, oldManaged := existing.ImageURL, existing.ImageManaged
	changes := patch.Apply(existing)
	if uploaded {
		existing.ImageManaged = true
		changes["image_managed"] = true
	}

	if err := uc.pieces.UpdateArtPiece(ctx, id, ownerID, changes); err != nil {
		if uploaded {
			uc.publishCleanup(ctx, *patch.ImageURL, ownerID, id, payloads.ReasonOrphaned)
		}
		return nil, fmt.Errorf("usecase: ошибка при обновлении произведения %d: %w", id, err)
	}

	if oldManaged && existing.ImageURL != oldImageURL {
		uc.publishCleanup(ctx, oldImageURL, ownerID, id, payloads.ReasonReplaced)
	}

	uc.logger.Info("art piece updated", "id", id, "owner_id", ownerID, "columns", len(changes))
	return existing, nil
}

func (uc *artPieceUseCase) Delete(ctx context.Context, id, ownerID uint) error {
	existing, err := uc.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if err := uc.pieces.DeleteArtPiece(ctx, id, ownerID); err != nil {
		return fmt.Errorf("usecase: ошибка при удалении произведения %d: %w", id, err)
	}

	if existing.ImageManaged {
		uc.publishCleanup(ctx, existing.ImageURL, ownerID, id, payloads.ReasonDeleted)
	}
	uc.logger.Info("art piece deleted", "id", id, "owner_id", ownerID)
	return nil
}

// upload загружает файл на медиа-хостинг, соблюдая лимит параллельных загрузок
func (uc *artPieceUseCase) upload(ctx context.Context, image domain.Upload) (string, error) {
	select {
	case uc.uploadLimiter <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("usecase: ожидание слота загрузки: %w", ctx.Err())
	}
	defer func() { <-uc.uploadLimiter }()

	start := time.Now()
	imageURL, err := uc.media.Upload(ctx, image)
	if err != nil {
		uc.logger.Error("image upload failed", "filename", image.Filename, "error", err)
		return "", fmt.Errorf("usecase: %w: %w", domain.ErrUpstream, err)
	}

	if len(imageURL) > maxImageURLLength {
		uc.publishCleanup(ctx, imageURL, 0, 0, payloads.ReasonOrphaned)
		verr := domain.NewValidationError()
		verr.Add("image_url", fmt.Sprintf("Ensure this field has no more than %d characters.", maxImageURLLength))
		return "", verr
	}

	uc.logger.Info("image uploaded",
		"filename", image.Filename,
		"size", image.Size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return imageURL, nil
}

// publishCleanup ставит задачу удаления изображения. Ошибка публикации не прерывает запрос
func (uc *artPieceUseCase) publishCleanup(ctx context.Context, imageURL string, ownerID, pieceID uint, reason string) {
	if imageURL == "" {
		return
	}
	payload := payloads.ImageCleanupPayload{
		ImageURL:   imageURL,
		OwnerID:    ownerID,
		ArtPieceID: pieceID,
		Reason:     reason,
	}
	if err := uc.cleanup.PublishImageCleanup(context.WithoutCancel(ctx), payload); err != nil {
		uc.logger.Warn("failed to publish image cleanup", "image_url", imageURL, "reason", reason, "error", err)
	}
}
