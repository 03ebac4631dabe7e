package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/domain"
	"github.com/GoArmGo/ArtGallery/internal/handler"
	"github.com/GoArmGo/ArtGallery/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const annToken = "0123456789abcdef0123456789abcdef01234567"

var ann = &domain.Owner{ID: 1, Username: "ann", Email: "ann@example.com"}

type routerFixture struct {
	credentials *MockCredentialUseCase
	artPieces   *MockArtPieceUseCase
	router      http.Handler
}

func newRouterFixture(cfg handler.RouterConfig) *routerFixture {
	f := &routerFixture{
		credentials: new(MockCredentialUseCase),
		artPieces:   new(MockArtPieceUseCase),
	}
	f.credentials.On("OwnerByToken", mock.Anything, annToken).Return(ann, nil).Maybe()
	f.router = handler.NewRouter(cfg, f.credentials, f.artPieces, validation.New(), stubPinger{}, discardLogger())
	return f
}

func (f *routerFixture) do(method, path, body string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Token "+annToken)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeFields(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var fields map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields), rec.Body.String())
	return fields
}

func TestRegister(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	input := domain.RegisterInput{Username: "ann", Email: "ann@example.com", Password: "pw1"}
	f.credentials.On("Register", mock.Anything, input).Return(ann, nil)
	f.credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)

	rec := f.do(http.MethodPost, "/register/", `{"username":"ann","email":"ann@example.com","password":"pw1"}`, false)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"token":%q}`, annToken), rec.Body.String())
}

func TestRegister_TrimsWhitespace(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	input := domain.RegisterInput{Username: "ann", Email: "ann@example.com", Password: " pw1 "}
	f.credentials.On("Register", mock.Anything, input).Return(ann, nil)
	f.credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)

	rec := f.do(http.MethodPost, "/register", `{"username":" ann ","email":"ann@example.com\t","password":" pw1 "}`, false)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.credentials.AssertExpectations(t)
}

func TestRegister_FieldErrors(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	verr := domain.NewValidationError()
	verr.Add("username", "owner with this username already exists.")
	f.credentials.On("Register", mock.Anything, mock.Anything).Return(nil, verr)

	rec := f.do(http.MethodPost, "/register", `{"username":"ann","email":"ann@example.com","password":"pw1"}`, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, verr.Fields, decodeFields(t, rec))
	f.credentials.AssertNotCalled(t, "IssueOrGetToken", mock.Anything, mock.Anything)
}

func TestRegister_NonStringField(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})

	rec := f.do(http.MethodPost, "/register", `{"username":{"a":1},"email":"ann@example.com"}`, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{
		"username": {"Not a valid string."},
		"password": {validation.MsgRequired},
	}, decodeFields(t, rec))
	f.credentials.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_MalformedJSON(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})

	rec := f.do(http.MethodPost, "/register", `{"username":`, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["detail"], "JSON parse error"), body["detail"])
}

func TestLogin(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.credentials.On("Authenticate", mock.Anything, "ann", "pw1").Return(ann, nil)
	f.credentials.On("Authenticate", mock.Anything, "ann", "wrong").Return(nil, domain.ErrInvalidCredentials)
	f.credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)

	rec := f.do(http.MethodPost, "/login", `{"username":"ann","password":"pw1"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"token":%q}`, annToken), rec.Body.String())

	rec = f.do(http.MethodPost, "/login", `{"username":"ann","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
}

func TestLogin_FormEncoded(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.credentials.On("Authenticate", mock.Anything, "ann", "pw1").Return(ann, nil)
	f.credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=ann&password=pw1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_TrimsUsername(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.credentials.On("Authenticate", mock.Anything, "ann", " pw1").Return(ann, nil)
	f.credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)

	rec := f.do(http.MethodPost, "/login", `{"username":"ann  ","password":" pw1"}`, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.credentials.AssertExpectations(t)
}

// Записи о созданных и удалённых данных пишет бизнес-логика, роутер пишет только строку запроса
func TestHandlers_LogOnlyRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	credentials := new(MockCredentialUseCase)
	artPieces := new(MockArtPieceUseCase)
	credentials.On("OwnerByToken", mock.Anything, annToken).Return(ann, nil)
	credentials.On("Register", mock.Anything, mock.Anything).Return(ann, nil)
	credentials.On("IssueOrGetToken", mock.Anything, uint(1)).Return(annToken, nil)
	artPieces.On("Create", mock.Anything, uint(1), mock.Anything, (*domain.Upload)(nil)).
		Return(&domain.ArtPiece{ID: 7, Title: "Sun", Price: 100, OwnerID: 1}, nil)
	artPieces.On("Update", mock.Anything, uint(7), uint(1), mock.Anything, (*domain.Upload)(nil)).
		Return(&domain.ArtPiece{ID: 7, Title: "Sun", Price: 5, OwnerID: 1}, nil)
	artPieces.On("Delete", mock.Anything, uint(7), uint(1)).Return(nil)
	router := handler.NewRouter(handler.RouterConfig{}, credentials, artPieces, validation.New(), stubPinger{}, logger)

	requests := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/register", `{"username":"ann","email":"ann@example.com","password":"pw1"}`},
		{http.MethodPost, "/art-pieces", `{"title":"Sun","price":100,"image_url":"http://img/sun.jpg"}`},
		{http.MethodPut, "/art-pieces/7", `{"price":5}`},
		{http.MethodDelete, "/art-pieces/7", ""},
	}
	for _, tc := range requests {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Token "+annToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Less(t, rec.Code, 300, tc.path)
	}

	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		assert.Equal(t, "http request", entry["msg"])
		lines++
	}
	assert.Equal(t, len(requests), lines)
}

func TestTokenAuth(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.credentials.On("OwnerByToken", mock.Anything, "unknown").Return(nil, domain.ErrInvalidToken)

	rec := f.do(http.MethodGet, "/art-pieces", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/art-pieces", nil)
	req.Header.Set("Authorization", "Token unknown")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"detail":"Invalid token."}`, rec.Body.String())

	f.artPieces.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListArtPieces_Empty(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("List", mock.Anything, uint(1)).Return([]domain.ArtPiece{}, nil)

	rec := f.do(http.MethodGet, "/art-pieces/", "", true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetArtPiece(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.artPieces.On("Get", mock.Anything, uint(3), uint(1)).Return(&domain.ArtPiece{
		ID: 3, Title: "Sun", Price: 100, ImageURL: "http://img/sun.jpg", CreatedAt: created, OwnerID: 1,
	}, nil)
	f.artPieces.On("Get", mock.Anything, uint(4), uint(1)).Return(nil, domain.ErrNotFound)

	rec := f.do(http.MethodGet, "/art-pieces/3", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": 3,
		"title": "Sun",
		"description": "",
		"price": 100,
		"image_url": "http://img/sun.jpg",
		"created_at": "2024-05-01T12:00:00Z",
		"owner_id": 1
	}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/art-pieces/4", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestArtPiece_NonIntegerID(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := f.do(method, "/art-pieces/abc", "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Empty(t, rec.Body.String(), method)
	}
	f.artPieces.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestArtPiece_IDOutOfRange(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := f.do(method, "/art-pieces/99999999999", "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Empty(t, rec.Body.String(), method)
	}

	// граница SERIAL ещё доходит до хранилища
	f.artPieces.On("Delete", mock.Anything, uint(2147483647), uint(1)).Return(domain.ErrNotFound)
	rec := f.do(http.MethodDelete, "/art-pieces/2147483647", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodDelete, "/art-pieces/2147483648", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.artPieces.AssertNumberOfCalls(t, "Delete", 1)
	f.artPieces.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	f.artPieces.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateArtPiece_TrimsText(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	want := domain.ArtPieceCreate{Title: "Sun", Description: "warm", Price: ptr(100.0), ImageURL: "http://img/sun.jpg"}
	f.artPieces.On("Create", mock.Anything, uint(1), want, (*domain.Upload)(nil)).
		Return(&domain.ArtPiece{ID: 7, Title: "Sun", Price: 100, ImageURL: "http://img/sun.jpg", OwnerID: 1}, nil)

	rec := f.do(http.MethodPost, "/art-pieces",
		`{"title":"  Sun ","description":" warm\n","price":100,"image_url":" http://img/sun.jpg "}`, true)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f.artPieces.AssertExpectations(t)
}

func TestCreateArtPiece_IgnoresClientOwnerAndCreatedAt(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	want := domain.ArtPieceCreate{Title: "Sun", Price: ptr(100.0), ImageURL: "http://img/sun.jpg"}
	f.artPieces.On("Create", mock.Anything, uint(1), want, (*domain.Upload)(nil)).
		Return(&domain.ArtPiece{ID: 7, Title: "Sun", Price: 100, ImageURL: "http://img/sun.jpg", OwnerID: 1}, nil)

	rec := f.do(http.MethodPost, "/art-pieces",
		`{"title":"Sun","price":100,"image_url":"http://img/sun.jpg","owner_id":99,"created_at":"1999-01-01T00:00:00Z","id":500}`, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.artPieces.AssertExpectations(t)
}

func TestCreateArtPiece_InvalidPrice(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})

	rec := f.do(http.MethodPost, "/art-pieces", `{"price":"abc","image_url":"http://img/sun.jpg"}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string][]string{
		"title": {validation.MsgRequired},
		"price": {validation.MsgInvalidNumber},
	}, decodeFields(t, rec))
	f.artPieces.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateArtPiece_Multipart(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{MaxBodySize: 1 << 20})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Sun"))
	require.NoError(t, mw.WriteField("price", "12.5"))
	part, err := mw.CreateFormFile("image", "sun.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	var uploaded string
	f.artPieces.On("Create", mock.Anything, uint(1),
		domain.ArtPieceCreate{Title: "Sun", Price: ptr(12.5)},
		mock.MatchedBy(func(u *domain.Upload) bool { return u != nil && u.Filename == "sun.jpg" }),
	).Run(func(args mock.Arguments) {
		data, _ := io.ReadAll(args.Get(3).(*domain.Upload).Body)
		uploaded = string(data)
	}).Return(&domain.ArtPiece{ID: 1, Title: "Sun", Price: 12.5, ImageURL: "https://cdn/sun.jpg", OwnerID: 1}, nil)

	req := httptest.NewRequest(http.MethodPost, "/art-pieces", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Token "+annToken)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "jpeg-bytes", uploaded)
}

func TestCreateArtPiece_UpstreamFailure(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("Create", mock.Anything, uint(1), mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: %w", domain.ErrUpstream, errors.New("timeout")))

	rec := f.do(http.MethodPost, "/art-pieces", `{"title":"Sun","price":1,"image_url":"http://img/sun.jpg"}`, true)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUpdateArtPiece_OnlyPrice(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("Update", mock.Anything, uint(3), uint(1),
		mock.MatchedBy(func(p domain.ArtPiecePatch) bool {
			return p.Price != nil && *p.Price == 42.5 && p.Title == nil && p.Description == nil && p.ImageURL == nil
		}),
		(*domain.Upload)(nil),
	).Return(&domain.ArtPiece{ID: 3, Title: "Sun", Price: 42.5, OwnerID: 1}, nil)

	rec := f.do(http.MethodPut, "/art-pieces/3/", `{"price":42.5}`, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.artPieces.AssertExpectations(t)
}

func TestUpdateArtPiece_DecodeErrorOnForeignPiece(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("Get", mock.Anything, uint(3), uint(1)).Return(nil, domain.ErrNotFound)

	rec := f.do(http.MethodPut, "/art-pieces/3", `{"price":"abc"}`, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.artPieces.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteArtPiece(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("Delete", mock.Anything, uint(3), uint(1)).Return(nil)
	f.artPieces.On("Delete", mock.Anything, uint(99), uint(1)).Return(domain.ErrNotFound)

	rec := f.do(http.MethodDelete, "/art-pieces/3", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(http.MethodDelete, "/art-pieces/99", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestInternalErrorIsHidden(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{})
	f.artPieces.On("List", mock.Anything, uint(1)).Return(nil, errors.New("connection reset"))

	rec := f.do(http.MethodGet, "/art-pieces", "", true)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestBodyTooLarge(t *testing.T) {
	f := newRouterFixture(handler.RouterConfig{MaxBodySize: 16})

	rec := f.do(http.MethodPost, "/login", `{"username":"ann","password":"a very long password"}`, false)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	f.credentials.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	r := handler.NewRouter(handler.RouterConfig{}, new(MockCredentialUseCase), new(MockArtPieceUseCase), validation.New(), stubPinger{}, discardLogger())
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r = handler.NewRouter(handler.RouterConfig{}, new(MockCredentialUseCase), new(MockArtPieceUseCase), validation.New(), stubPinger{err: errors.New("down")}, discardLogger())
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func ptr[T any](v T) *T { return &v }
