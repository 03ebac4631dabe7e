package domain

import (
	"io"
	"time"
)

// ArtPiece представляет произведение в галерее,
// соответствует таблице gallery_artpiece в бд.
// Видно и изменяемо только через владельца (OwnerID).
type ArtPiece struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	Price       float64   `json:"price" gorm:"not null"`
	ImageURL    string    `json:"image_url" gorm:"size:255;not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;autoCreateTime:false"`
	OwnerID     uint      `json:"owner_id" gorm:"not null;index"`

	// ImageManaged — ImageURL получен загрузкой файла этого произведения,
	// и только тогда изображение можно удалять с медиа-хостинга
	ImageManaged bool `json:"-" gorm:"not null;default:false"`
}

func (ArtPiece) TableName() string {
	return "gallery_artpiece"
}

// ArtPieceCreate — поля, которые клиент может передать при создании.
// id, owner_id и created_at сервер выставляет сам.
type ArtPieceCreate struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	ImageURL    string   `json:"image_url" validate:"required,max=255"`
}

// ArtPiecePatch — частичное обновление, nil означает "оставить как есть"
type ArtPiecePatch struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
	ImageURL    *string  `json:"image_url" validate:"omitnil,min=1,max=255"`
}

// Empty сообщает, что патч ничего не меняет
func (p ArtPiecePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.ImageURL == nil
}

// Apply переносит заданные поля патча на piece и возвращает имена изменённых колонок.
func (p ArtPiecePatch) Apply(piece *ArtPiece) map[string]any {
	changed := make(map[string]any, 4)
	if p.Title != nil {
		piece.Title = *p.Title
		changed["title"] = piece.Title
	}
	if p.Description != nil {
		piece.Description = *p.Description
		changed["description"] = piece.Description
	}
	if p.Price != nil {
		piece.Price = *p.Price
		changed["price"] = piece.Price
	}
	if p.ImageURL != nil {
		if *p.ImageURL != piece.ImageURL {
			piece.ImageManaged = false
			changed["image_managed"] = false
		}
		piece.ImageURL = *p.ImageURL
		changed["image_url"] = piece.ImageURL
	}
	return changed
}

// Upload — файл изображения, пришедший в multipart-запросе
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
