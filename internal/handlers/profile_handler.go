package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.GET("", h.GetMyProfile)
		profile.PUT("", h.UpdateProfile)
		profile.GET("/:userId", h.GetProfile)
		profile.POST("/resume", middleware.RequireRoles(models.UserRoleStudent), h.UploadResume)
		profile.POST("/avatar", h.UploadAvatar)
	}
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	targetID, ok := h.ParamUUID(c, "userId")
	if !ok {
		return
	}

	profile, err := h.profileService.GetPublicProfile(h.GetDB(c), userID, role, targetID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UploadResume(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	file, closeFile, ok := h.ReadUploadFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.profileService.UploadResume(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{URL: url})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	file, closeFile, ok := h.ReadUploadFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.profileService.UploadAvatar(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{URL: url})
}
