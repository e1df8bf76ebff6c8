package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Публичный просмотр, авторизация добавляет eligible_only и is_saved
	public := r.Group("/jobs")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("", h.Search)
		public.GET("/search", h.Search)
		public.GET("/:id", h.Get)
	}

	student := r.Group("/jobs")
	student.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleStudent))
	{
		student.GET("/recommended", h.Recommended)
		student.GET("/saved", h.ListSaved)
		student.POST("/:id/save", h.Save)
		student.DELETE("/:id/save", h.Unsave)
	}

	recruiter := r.Group("/jobs")
	recruiter.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin))
	{
		recruiter.POST("", h.Create)
		recruiter.GET("/mine", h.Mine)
		recruiter.PUT("/:id", h.Update)
		recruiter.DELETE("/:id", h.Delete)
		recruiter.POST("/:id/close", h.Close)
	}
}

func (h *JobHandler) Create(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Update(h.GetDB(c), userID, role, jobID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.Delete(h.GetDB(c), userID, role, jobID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Job deleted")
}

func (h *JobHandler) Close(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.Close(h.GetDB(c), userID, role, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Get(c *gin.Context) {
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID, role := h.OptionalUser(c)

	job, err := h.jobService.Get(h.GetDB(c), userID, role, jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Search(c *gin.Context) {
	var req dto.JobSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}
	userID, role := h.OptionalUser(c)

	page, err := h.jobService.Search(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JobHandler) Mine(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.jobService.Mine(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JobHandler) Recommended(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.jobService.Recommended(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *JobHandler) Save(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.Save(h.GetDB(c), userID, jobID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Job saved")
}

func (h *JobHandler) Unsave(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	jobID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.Unsave(h.GetDB(c), userID, jobID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Job removed from saved")
}

func (h *JobHandler) ListSaved(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.jobService.ListSaved(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
