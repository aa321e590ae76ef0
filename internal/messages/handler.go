package messages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	msgs := rg.Group("/messages")
	{
		msgs.POST("", h.Send)
		msgs.GET("", h.List)
		msgs.GET("/unread-count", h.UnreadCount)
		msgs.PUT("/:id/read", h.MarkRead)
		msgs.PUT("/:id/archive", h.Archive)
	}
}

func (h *Handler) Send(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var in struct {
		RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
		Title       string    `json:"title" binding:"required"`
		Content     string    `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := h.service.Send(c.Request.Context(), actor.ID, in.RecipientID, in.Title, in.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	msgs, err := h.service.ListFor(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	n, err := h.service.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	msg, err := h.service.MarkRead(c.Request.Context(), id, actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) Archive(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	if err := h.service.Archive(c.Request.Context(), id, actor.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "message archived"})
}

func (h *Handler) actorAndID(c *gin.Context) (identity.Actor, uuid.UUID, bool) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return identity.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return identity.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case errors.Is(err, ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
