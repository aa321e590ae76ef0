package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Connect)
}

// Connect upgrades an authenticated session to the live notification socket.
func (h *Handler) Connect(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, actor.ID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open socket"})
	}
}
