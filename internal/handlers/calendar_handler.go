package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
)

type CalendarHandler struct {
	*BaseHandler
	calendarService services.CalendarService
}

func NewCalendarHandler(base *BaseHandler, calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		BaseHandler:     base,
		calendarService: calendarService,
	}
}

func (h *CalendarHandler) RegisterRoutes(r *gin.RouterGroup) {
	calendar := r.Group("/calendar")
	calendar.Use(middleware.AuthMiddleware())
	{
		calendar.GET("", h.Calendar)
		calendar.GET("/deadlines", middleware.RequireRoles(models.UserRoleStudent), h.Deadlines)
		calendar.POST("/events", h.CreateEvent)
		calendar.PUT("/events/:id", h.UpdateEvent)
		calendar.DELETE("/events/:id", h.DeleteEvent)
	}
}

func (h *CalendarHandler) Calendar(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CalendarRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	entries, err := h.calendarService.Calendar(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Deadlines - опрос раз в минуту, ?days=7 по умолчанию
func (h *CalendarHandler) Deadlines(c *gin.Context) {
	userID, _, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	entries, err := h.calendarService.UpcomingDeadlines(h.GetDB(c), userID, ParseQueryInt(c, "days", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	event, err := h.calendarService.CreateEvent(h.GetDB(c), userID, role, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	eventID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	event, err := h.calendarService.UpdateEvent(h.GetDB(c), userID, role, eventID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	userID, role, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	eventID, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.calendarService.DeleteEvent(h.GetDB(c), userID, role, eventID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respondMessage(c, "Event deleted")
}
