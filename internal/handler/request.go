package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/validation"
)

const (
	imageField       = "image"
	msgInvalidString = "Not a valid string."
	// maxMemory — сколько multipart-формы держать в памяти, остальное уходит во временные файлы
	maxMemory = 8 << 20
)

// errMalformedBody — тело запроса не удалось разобрать
type errMalformedBody struct {
	prefix string
	err    error
}

func (e errMalformedBody) Error() string { return e.prefix + " - " + e.err.Error() }
func (e errMalformedBody) Unwrap() error { return e.err }

func malformedForm(err error) error { return errMalformedBody{prefix: "Malformed request body", err: err} }
func malformedJSON(err error) error { return errMalformedBody{prefix: "JSON parse error", err: err} }

// requestFields — поля запроса независимо от формата тела (JSON, multipart или urlencoded).
// Отсутствующее поле и поле со значением null неразличимы
type requestFields struct {
	values  map[string]string
	invalid map[string]bool
	image   *domain.Upload
	close   func()
}

// parseRequestFields читает тело запроса по его Content-Type.
// Числа в JSON принимаются как их текстовое представление
func parseRequestFields(r *http.Request) (*requestFields, error) {
	f := &requestFields{
		values:  make(map[string]string),
		invalid: make(map[string]bool),
		close:   func() {},
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, malformedForm(err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				f.values[k] = vs[0]
			}
		}
		f.close = func() { _ = r.MultipartForm.RemoveAll() }
		if err := f.attachImage(r); err != nil {
			f.close()
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, malformedForm(err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				f.values[k] = vs[0]
			}
		}
	default:
		if err := f.decodeJSON(r.Body); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *requestFields) attachImage(r *http.Request) error {
	headers := r.MultipartForm.File[imageField]
	if len(headers) == 0 {
		return nil
	}
	hdr := headers[0]
	file, err := hdr.Open()
	if err != nil {
		return malformedForm(err)
	}

	removeAll := f.close
	f.close = func() {
		_ = file.Close()
		removeAll()
	}
	f.image = &domain.Upload{
		Filename:    hdr.Filename,
		ContentType: contentType(hdr),
		Size:        hdr.Size,
		Body:        file,
	}
	return nil
}

func contentType(hdr *multipart.FileHeader) string {
	return hdr.Header.Get("Content-Type")
}

func (f *requestFields) decodeJSON(body io.Reader) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return malformedJSON(err)
	}

	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			f.values[k] = val
		case json.Number:
			f.values[k] = val.String()
		default:
			f.invalid[k] = true
		}
	}
	return nil
}

// str возвращает строковое поле. Значение неподдерживаемого типа даёт ошибку поля
func (f *requestFields) str(name string, errs *domain.ValidationError) (string, bool) {
	if f.invalid[name] {
		errs.Add(name, msgInvalidString)
		return "", false
	}
	v, ok := f.values[name]
	return v, ok
}

// text — строковое поле без пробелов по краям. Пароли так не читаются
func (f *requestFields) text(name string, errs *domain.ValidationError) (string, bool) {
	v, ok := f.str(name, errs)
	return strings.TrimSpace(v), ok
}

// number возвращает числовое поле
func (f *requestFields) number(name string, errs *domain.ValidationError) (*float64, bool) {
	if f.invalid[name] {
		errs.Add(name, validation.MsgInvalidNumber)
		return nil, false
	}
	raw, ok := f.values[name]
	if !ok {
		return nil, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		errs.Add(name, validation.MsgInvalidNumber)
		return nil, false
	}
	return &v, true
}

// registerInput собирает поля регистрации
func (f *requestFields) registerInput() (domain.RegisterInput, *domain.ValidationError) {
	errs := domain.NewValidationError()
	var in domain.RegisterInput
	in.Username, _ = f.text("username", errs)
	in.Email, _ = f.text("email", errs)
	in.Password, _ = f.str("password", errs)
	return in, errs
}

// artPieceCreate собирает поля нового произведения. owner_id, id и created_at игнорируются
func (f *requestFields) artPieceCreate() (domain.ArtPieceCreate, *domain.ValidationError) {
	errs := domain.NewValidationError()
	var in domain.ArtPieceCreate
	in.Title, _ = f.text("title", errs)
	in.Description, _ = f.text("description", errs)
	in.Price, _ = f.number("price", errs)
	in.ImageURL, _ = f.text("image_url", errs)
	return in, errs
}

// artPiecePatch собирает частичное изменение: nil для непереданных полей
func (f *requestFields) artPiecePatch() (domain.ArtPiecePatch, *domain.ValidationError) {
	errs := domain.NewValidationError()
	var p domain.ArtPiecePatch
	if v, ok := f.text("title", errs); ok {
		p.Title = &v
	}
	if v, ok := f.text("description", errs); ok {
		p.Description = &v
	}
	p.Price, _ = f.number("price", errs)
	if v, ok := f.text("image_url", errs); ok {
		p.ImageURL = &v
	}
	return p, errs
}

// isMalformedBody сообщает, что err вызвана неразборчивым телом запроса
func isMalformedBody(err error) bool {
	var body errMalformedBody
	return errors.As(err, &body)
}
