package ports

import (
	"context"

	"github.com/GoArmGo/ArtGallery/internal/domain"
)

// MediaStore — внешний хостинг изображений
type MediaStore interface {
	// Upload загружает файл и возвращает его публичный URL
	Upload(ctx context.Context, file domain.Upload) (string, error)

	// Delete удаляет ранее загруженный файл по его публичному URL.
	// Для URL, который не был выдан этим хранилищем, возвращает domain.ErrForeignURL
	Delete(ctx context.Context, publicURL string) error
}
