package banks

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/banks", h.ListBanks)
	rg.POST("/banks/seed", h.SeedBanks)
	rg.GET("/accounts", h.SearchAccounts)
	rg.POST("/accounts/import", h.ImportChart)
}

func (h *Handler) ListBanks(c *gin.Context) {
	out, err := h.service.ListBanks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch banks"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) SeedBanks(c *gin.Context) {
	seeded, err := h.service.SeedBanks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not seed banks"})
		return
	}
	if !seeded {
		c.JSON(http.StatusOK, gin.H{"message": "banks already exist, skipping seed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "banks seeded"})
}

func (h *Handler) SearchAccounts(c *gin.Context) {
	out, err := h.service.SearchAccounts(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch chart of accounts"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ImportChart replaces the chart of accounts from an uploaded listing
// workbook. Admin only.
func (h *Handler) ImportChart(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if actor.Role != identity.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "only an administrator may import the chart of accounts"})
		return
	}
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workbook file is required"})
		return
	}
	defer file.Close()

	n, err := h.service.ImportChart(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chart of accounts imported", "accounts": n})
}
