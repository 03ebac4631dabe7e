// internal/domain/owner.go
package domain

import "time"

// Owner представляет владельца галереи.
// Соответствует таблице gallery_owner в бд
type Owner struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email    string `json:"email" gorm:"size:150;uniqueIndex;not null"`
	Password string `json:"-" gorm:"size:128;not null"`
}

func (Owner) TableName() string {
	return "gallery_owner"
}

// RegisterInput — данные формы регистрации
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,max=150,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// Token — непрозрачный токен сессии, один на владельца.
// Соответствует таблице gallery_token в бд
type Token struct {
	Key     string    `json:"token" db:"key"`
	OwnerID uint      `json:"-" db:"owner_id"`
	Created time.Time `json:"-" db:"created"`
}
