package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type TalentHandler struct {
	*BaseHandler
	talentService services.TalentService
}

func NewTalentHandler(base *BaseHandler, talentService services.TalentService) *TalentHandler {
	return &TalentHandler{
		BaseHandler:   base,
		talentService: talentService,
	}
}

func (h *TalentHandler) RegisterRoutes(r *gin.RouterGroup) {
	talent := r.Group("/talent")
	talent.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin))
	{
		talent.GET("/search", h.Search)
	}
}

func (h *TalentHandler) Search(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.TalentSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.talentService.Search(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
