// Package password отвечает за хранение и сверку паролей владельцев.
package password

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	KindPlain  = "plain"
	KindBcrypt = "bcrypt"
)

// ErrTooLong — bcrypt не принимает пароли длиннее 72 байт
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hasher превращает пароль в хранимое значение и сверяет кандидата с ним
type Hasher interface {
	Hash(password string) (string, error)
	Compare(stored, candidate string) bool
}

// New возвращает Hasher по имени из конфигурации
func New(kind string) (Hasher, error) {
	switch kind {
	case "", KindPlain:
		return Plain{}, nil
	case KindBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}

// Plain хранит пароль как есть, сравнение точное
type Plain struct{}

func (Plain) Hash(password string) (string, error) {
	return password, nil
}

func (Plain) Compare(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Bcrypt хранит bcrypt-хеш (60 символов, помещается в колонку password)
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

func (Bcrypt) Compare(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
