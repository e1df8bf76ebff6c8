package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

// AdminHandler - статистика, пользователи, рассылки и фиды вакансий
type AdminHandler struct {
	*BaseHandler
	userService      services.UserService
	analyticsService services.AnalyticsService
	feedService      services.FeedService
}

func NewAdminHandler(
	base *BaseHandler,
	userService services.UserService,
	analyticsService services.AnalyticsService,
	feedService services.FeedService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:      base,
		userService:      userService,
		analyticsService: analyticsService,
		feedService:      feedService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/stats", h.Stats)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/status", h.UpdateUserStatus)
		admin.PUT("/recruiters/:id/verify", h.VerifyRecruiter)
		admin.POST("/notifications/broadcast", h.Broadcast)

		admin.GET("/feeds", h.ListFeeds)
		admin.POST("/feeds", h.CreateFeed)
		admin.DELETE("/feeds/:id", h.DeleteFeed)
		admin.POST("/feeds/:id/sync", h.SyncFeed)
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.analyticsService.PlatformStats(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.userService.List(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	userID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateStatus(h.GetDB(c), adminID, userID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.analyticsService.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) VerifyRecruiter(c *gin.Context) {
	userID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	verified, ok := h.bindVerified(c)
	if !ok {
		return
	}

	profile, err := h.userService.VerifyRecruiter(h.GetDB(c), userID, verified)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.userService.Broadcast(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListFeeds(c *gin.Context) {
	feeds, err := h.feedService.List(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": feeds})
}

func (h *AdminHandler) CreateFeed(c *gin.Context) {
	var req dto.CreateFeedRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	feed, err := h.feedService.Create(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, feed)
}

func (h *AdminHandler) DeleteFeed(c *gin.Context) {
	feedID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.feedService.Delete(h.GetDB(c), feedID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Feed deleted")
}

func (h *AdminHandler) SyncFeed(c *gin.Context) {
	feedID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.feedService.Sync(c.Request.Context(), h.GetDB(c), feedID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
