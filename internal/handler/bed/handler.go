package bed

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/handler"
	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/service/bed"
)

type Handler struct {
	service *bed.Service
}

func NewHandler(service *bed.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the bed routes; deletion requires the admin guard.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	beds := r.Group("/beds")
	{
		beds.GET("", h.ListBeds)
		beds.GET("/statistics", h.Statistics)
		beds.POST("", h.CreateBed)
		beds.PUT("/:id", h.UpdateBed)
		beds.POST("/assign", h.AssignBed)
		beds.POST("/:id/unassign", h.UnassignBed)
		beds.DELETE("/:id", adminOnly, h.DeleteBed)
	}
}

func (h *Handler) ListBeds(c *gin.Context) {
	var filters model.BedFilters
	var page model.Pagination
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	views, total, err := h.service.ListBeds(c.Request.Context(), &filters, &page)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondOK(c, http.StatusOK, gin.H{
		"total": total,
		"page":  page.Page,
		"limit": page.Limit,
		"beds":  views,
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	handler.RespondOK(c, http.StatusOK, stats)
}

func (h *Handler) CreateBed(c *gin.Context) {
	var req model.CreateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.service.CreateBed(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse(http.StatusCreated, "bed created", gin.H{
		"id": created.ID,
	}))
}

func (h *Handler) UpdateBed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid bed id"))
		return
	}

	var req model.UpdateBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	if err := h.service.UpdateBed(c.Request.Context(), id, &req); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "bed updated", nil))
}

func (h *Handler) AssignBed(c *gin.Context) {
	var req model.AssignBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid member id"))
		return
	}
	bedID, err := uuid.Parse(req.BedID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid bed id"))
		return
	}

	if err := h.service.Assign(c.Request.Context(), memberID, bedID); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "bed assigned", nil))
}

func (h *Handler) UnassignBed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid bed id"))
		return
	}

	if err := h.service.Unassign(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "bed unassigned", nil))
}

func (h *Handler) DeleteBed(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid bed id"))
		return
	}

	if err := h.service.DeleteBed(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "bed deleted", nil))
}
