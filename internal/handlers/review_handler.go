package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public routes
	r.GET("/companies/:id/reviews", h.ListByCompany)

	r.POST("/companies/:id/reviews",
		middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleStudent), h.Create)
	r.DELETE("/reviews/:id", middleware.AuthMiddleware(), h.Delete)

	// Admin routes
	admin := r.Group("/admin/reviews")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", h.ListForModeration)
		admin.PUT("/:id", h.Moderate)
	}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(h.GetDB(c), userID, companyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) ListByCompany(c *gin.Context) {
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.reviewService.ListByCompany(h.GetDB(c), companyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(h.GetDB(c), userID, role, reviewID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Review deleted")
}

func (h *ReviewHandler) ListForModeration(c *gin.Context) {
	var req dto.ReviewListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.reviewService.ListForModeration(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ReviewHandler) Moderate(c *gin.Context) {
	reviewID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.ModerateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	review, err := h.reviewService.Moderate(h.GetDB(c), reviewID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}
