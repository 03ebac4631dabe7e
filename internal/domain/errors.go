package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound — запись отсутствует или принадлежит другому владельцу
	ErrNotFound = errors.New("not found")
	// ErrDuplicate возвращается хранилищем при нарушении уникальности
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidCredentials — неверная пара логин/пароль
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — токен не найден
	ErrInvalidToken = errors.New("invalid token")
	// ErrUpstream — сбой внешнего медиа-хостинга
	ErrUpstream = errors.New("upstream failure")
	// ErrForeignURL — URL изображения не принадлежит настроенному хранилищу
	ErrForeignURL = errors.New("url does not belong to media store")
)

// ValidationError содержит сообщения об ошибках по полям запроса.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add добавляет сообщение для поля
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// Drop убирает все сообщения для поля
func (e *ValidationError) Drop(field string) {
	delete(e.Fields, field)
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Merge добавляет сообщения из other
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, messages := range other.Fields {
		e.Fields[field] = append(e.Fields[field], messages...)
	}
}

// OrNil возвращает nil, если ошибок нет. Нужен, чтобы не вернуть typed nil как error.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
