package dto

import "placement_backend/internal/models"

type CreateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"omitempty,max=255"`
	Body   string `json:"body" validate:"omitempty,max=5000"`
}

type ModerateReviewRequest struct {
	Status models.ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
}

type ReviewListRequest struct {
	PageRequest
	Status string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
}
