package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/cache"
	"placement_backend/internal/logger"
)

// HealthHandler - проверка живости для балансировщика
type HealthHandler struct {
	*BaseHandler
	store cache.Store
}

func NewHealthHandler(base *BaseHandler, store cache.Store) *HealthHandler {
	return &HealthHandler{BaseHandler: base, store: store}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.CtxWarn(ctx, "Health check: database unavailable", "error", err.Error())
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			// без кэша сервис работает, статус не роняем
			logger.CtxWarn(ctx, "Health check: cache unavailable", "error", err.Error())
			checks["cache"] = "unavailable"
		}
	}

	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
