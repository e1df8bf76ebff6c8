package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type ForumHandler struct {
	*BaseHandler
	forumService services.ForumService
}

func NewForumHandler(base *BaseHandler, forumService services.ForumService) *ForumHandler {
	return &ForumHandler{
		BaseHandler:  base,
		forumService: forumService,
	}
}

func (h *ForumHandler) RegisterRoutes(r *gin.RouterGroup) {
	forum := r.Group("/forum")
	forum.Use(middleware.AuthMiddleware())
	{
		forum.GET("/posts", h.ListPosts)
		forum.POST("/posts", h.CreatePost)
		forum.GET("/posts/:id", h.GetPost)
		forum.PUT("/posts/:id", h.UpdatePost)
		forum.DELETE("/posts/:id", h.DeletePost)
		forum.POST("/posts/:id/comments", h.AddComment)
		forum.DELETE("/comments/:id", h.DeleteComment)
	}

	admin := r.Group("/admin/forum")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.POST("/posts/:id/pin", h.PinPost)
	}
}

func (h *ForumHandler) ListPosts(c *gin.Context) {
	_, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PostListRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.forumService.ListPosts(h.GetDB(c), role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ForumHandler) GetPost(c *gin.Context) {
	_, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	post, err := h.forumService.GetPost(h.GetDB(c), role, postID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) CreatePost(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.forumService.CreatePost(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (h *ForumHandler) UpdatePost(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.forumService.UpdatePost(h.GetDB(c), userID, role, postID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *ForumHandler) DeletePost(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.forumService.DeletePost(h.GetDB(c), userID, role, postID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Post deleted")
}

func (h *ForumHandler) AddComment(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	comment, err := h.forumService.AddComment(h.GetDB(c), userID, role, postID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *ForumHandler) DeleteComment(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	commentID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.forumService.DeleteComment(h.GetDB(c), userID, role, commentID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Comment deleted")
}

// PinPost - пустое тело закрепляет пост, {"pinned": false} открепляет
func (h *ForumHandler) PinPost(c *gin.Context) {
	postID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	pinned := true
	if c.Request.ContentLength != 0 {
		var req dto.PinPostRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
		if req.Pinned != nil {
			pinned = *req.Pinned
		}
	}

	if err := h.forumService.SetPinned(h.GetDB(c), postID, pinned); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pinned": pinned})
}
