package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/handler"
	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/service/health"
)

type Handler struct {
	service *health.Service
}

func NewHandler(service *health.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	monitor := r.Group("/health")
	{
		monitor.GET("/monitor", h.GetMemberHealth)
		monitor.POST("/monitor", h.RecordHealth)
	}
}

func (h *Handler) GetMemberHealth(c *gin.Context) {
	raw := c.Query("member_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "member_id is required"))
		return
	}
	memberID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid member id"))
		return
	}

	info, err := h.service.GetMemberHealth(c.Request.Context(), memberID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondOK(c, http.StatusOK, gin.H{"member_info": info})
}

func (h *Handler) RecordHealth(c *gin.Context) {
	var req model.RecordHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.service.RecordHealth(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse(http.StatusCreated, "health record updated", result))
}
