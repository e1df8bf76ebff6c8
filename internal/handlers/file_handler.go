package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/logger"
	"placement_backend/internal/storage"
	"placement_backend/pkg/apperrors"
)

// FileHandler раздает файлы локального хранилища по публичному префиксу /files
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/files/*path", h.ServeFile)
	r.HEAD("/files/*path", h.ServeFile)
}

func (h *FileHandler) ServeFile(c *gin.Context) {
	ctx := c.Request.Context()

	p, err := storage.CleanPath(c.Param("path"))
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	reader, err := h.storage.Get(ctx, p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			apperrors.HandleError(c, apperrors.New(apperrors.CodeNotFound, "storage", "File not found", http.StatusNotFound))
			return
		}
		logger.CtxWithError(ctx, "Failed to read file from storage", err, "path", p)
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)

	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.CtxWarn(ctx, "File stream interrupted", "path", p, "error", err.Error())
	}
}
