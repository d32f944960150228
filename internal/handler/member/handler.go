package member

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell/carehome-api/internal/handler"
	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/service/member"
)

type Handler struct {
	service *member.Service
}

func NewHandler(service *member.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the member routes; deletion requires the admin guard.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	members := r.Group("/members")
	{
		members.GET("", h.ListMembers)
		members.GET("/:id", h.GetMember)
		members.POST("", h.CreateMember)
		members.PUT("/:id", h.UpdateMember)
		members.DELETE("/:id", adminOnly, h.DeleteMember)
	}
}

func (h *Handler) ListMembers(c *gin.Context) {
	var filters model.MemberFilters
	var page model.Pagination
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	views, total, err := h.service.ListMembers(c.Request.Context(), &filters, &page)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondOK(c, http.StatusOK, gin.H{
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
		"members": views,
	})
}

func (h *Handler) GetMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid member id"))
		return
	}

	view, err := h.service.GetMember(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	handler.RespondOK(c, http.StatusOK, gin.H{"member": view})
}

func (h *Handler) CreateMember(c *gin.Context) {
	var req model.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	view, err := h.service.CreateMember(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse(http.StatusCreated, "member created", gin.H{
		"id":     view.ID,
		"member": view,
	}))
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid member id"))
		return
	}

	var req model.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	view, err := h.service.UpdateMember(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "member updated", gin.H{"member": view}))
}

func (h *Handler) DeleteMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(http.StatusBadRequest, "invalid member id"))
		return
	}

	if err := h.service.DeleteMember(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(http.StatusOK, "member deleted", nil))
}
