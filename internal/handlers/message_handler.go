package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

func (h *MessageHandler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("", h.Send)
		messages.GET("/conversations", h.ListConversations)
		messages.GET("/conversations/:id", h.GetMessages)
		messages.PUT("/conversations/:id/read", h.MarkRead)
	}
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.messageService.Send(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.messageService.ListConversations(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	conversationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.PageRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	page, err := h.messageService.GetMessages(h.GetDB(c), userID, conversationID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	conversationID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	updated, err := h.messageService.MarkRead(h.GetDB(c), userID, conversationID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
