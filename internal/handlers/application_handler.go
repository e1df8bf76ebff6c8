package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
	invitationService  services.InvitationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService, invitationService services.InvitationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
		invitationService:  invitationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	studentOnly := middleware.RequireRoles(models.UserRoleStudent)
	recruiterOrAdmin := middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin)

	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware())
	{
		jobs.POST("/:id/apply", studentOnly, h.Apply)
		jobs.GET("/:id/applications", recruiterOrAdmin, h.ListForJob)
	}

	applications := r.Group("/applications")
	applications.Use(middleware.AuthMiddleware())
	{
		applications.GET("", studentOnly, h.ListMine)
		applications.GET("/:id", h.Get)
		applications.DELETE("/:id", studentOnly, h.Withdraw)
		applications.PUT("/:id/status", recruiterOrAdmin, h.UpdateStatus)
	}

	invitations := r.Group("/invitations")
	invitations.Use(middleware.AuthMiddleware())
	{
		invitations.POST("", recruiterOrAdmin, h.Invite)
		invitations.GET("", h.ListInvitations)
		invitations.POST("/:id/respond", studentOnly, h.RespondInvitation)
	}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	// тело необязательно
	var req dto.ApplyRequest
	if c.Request.ContentLength != 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.Apply(h.GetDB(c), userID, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	applicationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	application, err := h.applicationService.Get(h.GetDB(c), userID, role, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.ApplicationListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.applicationService.ListMine(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	applicationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	application, err := h.applicationService.Withdraw(h.GetDB(c), userID, applicationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApplicationListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.applicationService.ListForJob(h.GetDB(c), userID, role, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	applicationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	application, err := h.applicationService.UpdateStatus(h.GetDB(c), userID, role, applicationID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) Invite(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateInvitationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	invitation, err := h.invitationService.Create(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invitation)
}

func (h *ApplicationHandler) ListInvitations(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.invitationService.List(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ApplicationHandler) RespondInvitation(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	invitationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.RespondInvitationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	invitation, err := h.invitationService.Respond(h.GetDB(c), userID, invitationID, *req.Accept)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, invitation)
}
