package dto

import "placement_backend/internal/models"

type CreateCompanyRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Website     string `json:"website" validate:"omitempty,url"`
	Industry    string `json:"industry" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Location    string `json:"location" validate:"omitempty,max=255"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Industry    *string `json:"industry" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
}

type CompanyListRequest struct {
	PageRequest
	Query    string `form:"q"`
	Industry string `form:"industry"`
}

type CompanyResponse struct {
	*models.Company
	OpenJobs int64 `json:"open_jobs"`
}
