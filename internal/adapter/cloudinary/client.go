// internal/adapter/cloudinary/client.go
package cloudinary

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/GoArmGo/ArtGallery/internal/config"
	"github.com/GoArmGo/ArtGallery/internal/domain"
	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
)

const (
	resourceType   = "image"
	requestTimeout = 30 * time.Second
)

// versionSegment — необязательный сегмент версии в URL доставки, например v1700000000/
var versionSegment = regexp.MustCompile(`^v\d+/`)

// Client — клиент Cloudinary Upload API поверх cloudinary-go, реализует ports.MediaStore.
type Client struct {
	cld       *cld.Cloudinary
	cloudName string
	folder    string
	logger    *slog.Logger
}

// NewCloudinaryClient создает новый экземпляр Client.
// CLOUDINARY_API_BASE подменяет адрес Upload API, например для тестов
func NewCloudinaryClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conf, err := cldconfig.NewFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации Cloudinary: %w", err)
	}
	if base := strings.TrimRight(cfg.Cloudinary.APIBase, "/"); base != "" {
		conf.API.UploadPrefix = base
	}

	client, err := cld.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Cloudinary: %w", err)
	}

	logger.Info("cloudinary client configured", "cloud_name", cfg.Cloudinary.CloudName, "upload_prefix", conf.API.UploadPrefix)
	return &Client{
		cld:       client,
		cloudName: cfg.Cloudinary.CloudName,
		folder:    strings.Trim(cfg.Cloudinary.Folder, "/"),
		logger:    logger,
	}, nil
}

// Upload загружает изображение и возвращает его secure_url
func (c *Client) Upload(ctx context.Context, file domain.Upload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	start := time.Now()

	res, err := c.cld.Upload.Upload(ctx, file.Body, uploader.UploadParams{
		PublicID:     uuid.NewString(),
		Folder:       c.folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки %q в Cloudinary: %w", file.Filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary отклонил загрузку %q: %s", file.Filename, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary не вернул secure_url для %q", file.Filename)
	}

	c.logger.Info("image uploaded to cloudinary",
		"public_id", res.PublicID,
		"bytes", res.Bytes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res.SecureURL, nil
}

// Delete удаляет изображение по URL доставки. Уже удалённое изображение ошибкой не считается
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	publicID, err := c.PublicID(publicURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления %q из Cloudinary: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary отклонил удаление %q: %s", publicID, res.Error.Message)
	}

	switch res.Result {
	case "ok", "not found":
		c.logger.Info("image destroyed in cloudinary", "public_id", publicID, "result", res.Result)
		return nil
	default:
		return fmt.Errorf("удаление %q из Cloudinary: неожиданный результат %q", publicID, res.Result)
	}
}

// PublicID извлекает public_id из URL доставки вида
// https://res.cloudinary.com/<cloud>/image/upload/v123/<folder>/<id>.<ext>
func (c *Client) PublicID(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("%q: %w", publicURL, domain.ErrForeignURL)
	}

	marker := "/" + c.cloudName + "/image/upload/"
	idx := strings.Index(u.Path, marker)
	if c.cloudName == "" || idx < 0 {
		return "", fmt.Errorf("%q: %w", publicURL, domain.ErrForeignURL)
	}

	rest := versionSegment.ReplaceAllString(u.Path[idx+len(marker):], "")
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	if rest == "" {
		return "", fmt.Errorf("%q: %w", publicURL, domain.ErrForeignURL)
	}
	return rest, nil
}
