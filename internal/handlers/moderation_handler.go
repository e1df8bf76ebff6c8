package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type ModerationHandler struct {
	*BaseHandler
	moderationService services.ModerationService
	analyticsService  services.AnalyticsService
}

func NewModerationHandler(base *BaseHandler, moderationService services.ModerationService, analyticsService services.AnalyticsService) *ModerationHandler {
	return &ModerationHandler{
		BaseHandler:       base,
		moderationService: moderationService,
		analyticsService:  analyticsService,
	}
}

func (h *ModerationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reports", middleware.AuthMiddleware(), h.Report)

	admin := r.Group("/admin/reports")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", h.List)
		admin.PUT("/:id", h.Resolve)
	}
}

func (h *ModerationHandler) Report(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateReportRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	report, err := h.moderationService.Report(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.analyticsService.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusCreated, report)
}

func (h *ModerationHandler) List(c *gin.Context) {
	var req dto.ReportListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.moderationService.List(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ModerationHandler) Resolve(c *gin.Context) {
	adminID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	reportID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveReportRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	report, err := h.moderationService.Resolve(h.GetDB(c), adminID, reportID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.analyticsService.InvalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, report)
}
