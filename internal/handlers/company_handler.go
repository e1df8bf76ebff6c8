package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type CompanyHandler struct {
	*BaseHandler
	companyService services.CompanyService
}

func NewCompanyHandler(base *BaseHandler, companyService services.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler:    base,
		companyService: companyService,
	}
}

func (h *CompanyHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/companies")
	{
		public.GET("", h.List)
		public.GET("/:id", h.Get)
	}

	companies := r.Group("/companies")
	companies.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin))
	{
		companies.POST("", h.Create)
		companies.PUT("/:id", h.Update)
		companies.POST("/:id/logo", h.UploadLogo)
	}

	admin := r.Group("/admin/companies")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.PUT("/:id/verify", h.Verify)
	}
}

func (h *CompanyHandler) List(c *gin.Context) {
	var req dto.CompanyListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.companyService.List(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.Get(h.GetDB(c), companyID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Create(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateCompanyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	company, err := h.companyService.Create(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCompanyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	company, err := h.companyService.Update(h.GetDB(c), userID, role, companyID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	file, closeFile, ok := h.ReadUploadFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	url, err := h.companyService.UploadLogo(c.Request.Context(), h.GetDB(c), userID, role, companyID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{URL: url})
}

// Verify - PUT /admin/companies/:id/verify, пустое тело означает verified=true
func (h *CompanyHandler) Verify(c *gin.Context) {
	companyID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	verified, ok := h.bindVerified(c)
	if !ok {
		return
	}

	company, err := h.companyService.SetVerified(h.GetDB(c), companyID, verified)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

func (h *BaseHandler) bindVerified(c *gin.Context) (bool, bool) {
	if c.Request.ContentLength == 0 {
		return true, true
	}
	var req dto.VerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return false, false
	}
	if req.Verified == nil {
		return true, true
	}
	return *req.Verified, true
}
