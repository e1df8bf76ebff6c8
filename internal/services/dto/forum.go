package dto

type CreatePostRequest struct {
	Title string   `json:"title" validate:"required,max=255"`
	Body  string   `json:"body" validate:"required,max=20000"`
	Tags  []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type UpdatePostRequest struct {
	Title *string   `json:"title" validate:"omitempty,max=255"`
	Body  *string   `json:"body" validate:"omitempty,max=20000"`
	Tags  *[]string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

type PostListRequest struct {
	PageRequest
	Query string `form:"q"`
	Tag   string `form:"tag"`
}

type PinPostRequest struct {
	Pinned *bool `json:"pinned"`
}
