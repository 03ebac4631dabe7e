package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	TokenStoreSQL   = "sql"
	TokenStoreRedis = "redis"

	MediaBackendCloudinary = "cloudinary"
	MediaBackendS3         = "s3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort        string        `env:"SERVER_PORT" envDefault:"8080" validate:"required"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	MaxUploadSize     int64         `env:"MAX_UPLOAD_SIZE" envDefault:"10485760" validate:"gt=0"`
	UploadConcurrency int           `env:"UPLOAD_CONCURRENCY" envDefault:"5" validate:"gt=0"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text tint"`
	TokenStore        string        `env:"TOKEN_STORE" envDefault:"sql" validate:"oneof=sql redis"`
	PasswordHasher    string        `env:"PASSWORD_HASHER" envDefault:"plain" validate:"oneof=plain bcrypt"`
	MediaBackend      string        `env:"MEDIA_BACKEND" envDefault:"cloudinary" validate:"oneof=cloudinary s3"`

	Database struct {
		URL         string `env:"DATABASE_URL"`
		Host        string `env:"DB_HOST" envDefault:"localhost"`
		Port        string `env:"DB_PORT" envDefault:"5432"`
		User        string `env:"DB_USER" envDefault:"postgres"`
		Password    string `env:"DB_PASSWORD"`
		Name        string `env:"DB_NAME" envDefault:"gallery"`
		SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
		AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	// Настройки Cloudinary
	Cloudinary struct {
		CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
		APIKey    string `env:"CLOUDINARY_API_KEY"`
		APISecret string `env:"CLOUDINARY_API_SECRET"`
		Folder    string `env:"CLOUDINARY_FOLDER"`
		APIBase   string `env:"CLOUDINARY_API_BASE" envDefault:"https://api.cloudinary.com" validate:"url"`
	}

	// Настройки для MinIO
	Minio struct {
		Endpoint        string `env:"MINIO_ENDPOINT"`
		AccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
		UseSSL          bool   `env:"MINIO_USE_SSL"`
		BucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"art-gallery"`
		Region          string `env:"MINIO_REGION" envDefault:"us-east-1"`
		// PublicBaseURL — адрес, по которому клиенты видят бакет. Если пуст, берётся Endpoint
		PublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"`
	}

	// RabbitMQ необязателен: без URL события очистки только логируются
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"image_cleanup_queue"`
	}

	CORS struct {
		Enabled        bool     `env:"CORS_ENABLED"`
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения и обязательные параметры выбранных бэкендов
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("некорректная конфигурация: %w", err)
	}

	var errs []error
	switch c.MediaBackend {
	case MediaBackendCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set for MEDIA_BACKEND=cloudinary"))
		}
	case MediaBackendS3:
		if c.Minio.Endpoint == "" || c.Minio.AccessKeyID == "" || c.Minio.SecretAccessKey == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY must be set for MEDIA_BACKEND=s3"))
		}
	}
	if c.TokenStore == TokenStoreRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR must be set for TOKEN_STORE=redis"))
	}
	return errors.Join(errs...)
}

// DSN возвращает строку подключения к PostgreSQL.
// DATABASE_URL имеет приоритет над отдельными DB_* параметрами
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// MinioEndpointURL возвращает адрес S3 API с учётом MINIO_USE_SSL
func (c *Config) MinioEndpointURL() string {
	if c.Minio.UseSSL {
		return "https://" + c.Minio.Endpoint
	}
	return "http://" + c.Minio.Endpoint
}

// MinioPublicBaseURL возвращает адрес, от которого строятся публичные URL объектов
func (c *Config) MinioPublicBaseURL() string {
	if c.Minio.PublicBaseURL != "" {
		return c.Minio.PublicBaseURL
	}
	return c.MinioEndpointURL()
}
