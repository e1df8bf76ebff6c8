package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Storage - файловое хранилище (резюме, аватары, логотипы)
type Storage interface {
	// Save сохраняет файл по пути path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error

	Exists(ctx context.Context, path string) (bool, error)

	// GetURL возвращает публичный URL файла
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL возвращает временную ссылку на приватный файл
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type Config struct {
	Type       string // local, s3
	BasePath   string // local
	BaseURL    string // публичный префикс URL
	Bucket     string // s3
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string // S3-совместимые хранилища (minio, r2)
	PublicRead bool
}

func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanPath нормализует путь и запрещает выход за корень хранилища
func CleanPath(p string) (string, error) {
	cleaned := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}
