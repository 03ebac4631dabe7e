// Package validation переводит ошибки go-playground/validator в domain.ValidationError
// с сообщениями по полям в формате, который ожидают клиенты API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgInvalidNumber = "A valid number is required."
)

// Validator — обёртка над *validator.Validate, имена полей берутся из json-тегов
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct проверяет структуру и возвращает ошибки по полям.
// Ошибка не-валидационного характера (например, передан не struct) возвращается как есть.
func (v *Validator) Struct(s any) (*domain.ValidationError, error) {
	verr := domain.NewValidationError()

	err := v.validate.Struct(s)
	if err == nil {
		return verr, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validate %T: %w", s, err)
	}

	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		if fe.Param() == "1" {
			return MsgBlank
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "email":
		return MsgInvalidEmail
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
