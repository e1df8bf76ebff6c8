package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"placement_backend/internal/imageprocessor"
	"placement_backend/internal/logger"
	"placement_backend/internal/storage"
	"placement_backend/pkg/apperrors"
)

// UploadConfig - ограничения загрузок
type UploadConfig struct {
	MaxSize           int64
	ResumeTypes       []string
	ImageTypes        []string
	AvatarSize        int
	CompanyLogoHeight int
}

// UploadFile - файл из multipart формы
type UploadFile struct {
	Reader      io.Reader
	Filename    string
	Size        int64
	ContentType string
}

type UploadService interface {
	UploadResume(ctx context.Context, userID string, file *UploadFile) (string, error)
	UploadAvatar(ctx context.Context, userID string, file *UploadFile) (string, error)
	UploadLogo(ctx context.Context, companyID string, file *UploadFile) (string, error)
	// Remove удаляет ранее сохраненный файл по его URL (best effort)
	Remove(ctx context.Context, url string)
}

type uploadService struct {
	storage   storage.Storage
	processor *imageprocessor.Processor
	config    UploadConfig
}

func NewUploadService(storage storage.Storage, processor *imageprocessor.Processor, config UploadConfig) UploadService {
	if config.MaxSize <= 0 {
		config.MaxSize = 5 * 1024 * 1024
	}
	if config.AvatarSize <= 0 {
		config.AvatarSize = 256
	}
	if config.CompanyLogoHeight <= 0 {
		config.CompanyLogoHeight = 200
	}
	return &uploadService{
		storage:   storage,
		processor: processor,
		config:    config,
	}
}

// UploadResume сохраняет резюме как есть: resumes/<userId>/<uuid><ext>
func (s *uploadService) UploadResume(ctx context.Context, userID string, file *UploadFile) (string, error) {
	mimeType, err := s.validateFile(file, s.config.ResumeTypes)
	if err != nil {
		return "", err
	}

	data, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	// Расширение и содержимое должны совпадать для pdf
	if mimeType == "application/pdf" && http.DetectContentType(data) != "application/pdf" {
		return "", apperrors.ErrInvalidFileType
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	key := path.Join("resumes", userID, uuid.NewString()+ext)
	return s.save(ctx, key, bytes.NewReader(data), mimeType)
}

// UploadAvatar - квадрат AvatarSize×AvatarSize в JPEG
func (s *uploadService) UploadAvatar(ctx context.Context, userID string, file *UploadFile) (string, error) {
	if _, err := s.validateFile(file, s.config.ImageTypes); err != nil {
		return "", err
	}

	data, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	buf, err := s.processor.Avatar(bytes.NewReader(data), s.config.AvatarSize)
	if err != nil {
		return "", apperrors.ErrInvalidFileType
	}

	key := path.Join("avatars", userID, uuid.NewString()+".jpg")
	return s.save(ctx, key, buf, imageprocessor.ContentType("jpeg"))
}

func (s *uploadService) UploadLogo(ctx context.Context, companyID string, file *UploadFile) (string, error) {
	if _, err := s.validateFile(file, s.config.ImageTypes); err != nil {
		return "", err
	}

	data, err := s.readLimited(file)
	if err != nil {
		return "", err
	}

	buf, format, err := s.processor.Logo(bytes.NewReader(data), s.config.CompanyLogoHeight)
	if err != nil {
		return "", apperrors.ErrInvalidFileType
	}

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	key := path.Join("logos", companyID, uuid.NewString()+ext)
	return s.save(ctx, key, buf, imageprocessor.ContentType(format))
}

func (s *uploadService) Remove(ctx context.Context, url string) {
	key := keyFromURL(url)
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to delete stored file", err, "path", key)
	}
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

func (s *uploadService) validateFile(file *UploadFile, allowedTypes []string) (string, error) {
	if file == nil || file.Reader == nil {
		return "", apperrors.NewBadRequestError("file is required")
	}
	if file.Size > s.config.MaxSize {
		return "", apperrors.ErrFileTooLarge
	}

	// MIME определяем по расширению: заголовок клиента ненадежен
	mimeType := getMimeTypeFromFilename(file.Filename)
	if !contains(allowedTypes, mimeType) {
		return "", apperrors.ErrInvalidFileType
	}
	return mimeType, nil
}

// readLimited читает не больше MaxSize байт, размер из заголовка не доверяем
func (s *uploadService) readLimited(file *UploadFile) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file.Reader, s.config.MaxSize+1))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if int64(len(data)) > s.config.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, apperrors.NewBadRequestError("file is empty")
	}
	return data, nil
}

func (s *uploadService) save(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if err := s.storage.Save(ctx, key, reader, contentType); err != nil {
		return "", apperrors.InternalError(fmt.Errorf("save %s: %w", key, err))
	}
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

// keyFromURL восстанавливает ключ хранилища из публичного URL
func keyFromURL(url string) string {
	if url == "" {
		return ""
	}
	for _, prefix := range []string{"resumes/", "avatars/", "logos/"} {
		if idx := strings.Index(url, "/"+prefix); idx >= 0 {
			return url[idx+1:]
		}
		if strings.HasPrefix(url, prefix) {
			return url
		}
	}
	return ""
}

// ============================================
// УТИЛИТЫ
// ============================================

func getMimeTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
