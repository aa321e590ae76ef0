package requests

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reqs := rg.Group("/requests")
	{
		reqs.POST("", h.Create)
		reqs.GET("", h.ListMine)
		reqs.GET("/queue", h.ListSubordinate)
		reqs.GET("/executive", h.ListExecutive)
		reqs.GET("/:id", h.Get)
		reqs.PUT("/:id", h.Edit)
		reqs.POST("/:id/submit", h.Submit)
		reqs.POST("/:id/process", h.Process)
		reqs.GET("/:id/history", h.History)
		reqs.POST("/:id/artifact/regenerate", h.Regenerate)
		reqs.POST("/:id/artifact/lock", h.RetryLock)
	}
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var in CreateRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}
	req, warnings, err := h.service.Create(c.Request.Context(), actor.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req, "warnings": warnings})
}

func (h *Handler) Get(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	req, err := h.service.Get(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) Edit(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var in EditRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}
	req, warnings, err := h.service.Edit(c.Request.Context(), id, actor.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "warnings": warnings})
}

func (h *Handler) Submit(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	req, err := h.service.Submit(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) Process(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var in struct {
		Action  string `json:"action" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "validation"})
		return
	}
	action := workflows.Action(strings.ToUpper(in.Action))
	switch action {
	case workflows.ActionApprove, workflows.ActionReject, workflows.ActionReturn:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be APPROVE, REJECT or RETURN", "kind": "validation"})
		return
	}
	req, warnings, err := h.service.Process(c.Request.Context(), id, actor.ID, action, in.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "warnings": warnings})
}

func (h *Handler) History(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) Regenerate(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	req, err := h.service.RegenerateArtifact(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) RetryLock(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	req, warnings, err := h.service.RetryLock(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req, "warnings": warnings})
}

func (h *Handler) ListMine(c *gin.Context) {
	h.listWith(c, func(actor identity.Actor, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
		return h.service.ListMine(c.Request.Context(), actor.ID, statuses, search)
	})
}

func (h *Handler) ListSubordinate(c *gin.Context) {
	h.listWith(c, func(actor identity.Actor, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
		return h.service.ListSubordinate(c.Request.Context(), actor.ID, statuses, search)
	})
}

func (h *Handler) ListExecutive(c *gin.Context) {
	h.listWith(c, func(actor identity.Actor, statuses []workflows.Status, search string) ([]PaymentRequest, error) {
		return h.service.ListExecutiveQueue(c.Request.Context(), actor.ID, statuses, search)
	})
}

func (h *Handler) listWith(c *gin.Context, fn func(identity.Actor, []workflows.Status, string) ([]PaymentRequest, error)) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	out, err := fn(actor, parseStatuses(c.Query("status")), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) actorAndID(c *gin.Context) (identity.Actor, uuid.UUID, bool) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return identity.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id", "kind": "validation"})
		return identity.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func parseStatuses(raw string) []workflows.Status {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]workflows.Status, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, workflows.Status(strings.ToUpper(p)))
		}
	}
	return out
}

// respondError maps the error taxonomy to HTTP statuses, always naming the
// kind so callers can tell the failures apart.
func respondError(c *gin.Context, err error) {
	var (
		valErr   *ValidationError
		authErr  *AuthorizationError
		transErr *InvalidTransitionError
		collErr  *CollaboratorError
	)
	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error(), "kind": "validation"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error(), "kind": "authorization"})
	case errors.As(err, &transErr):
		c.JSON(http.StatusConflict, gin.H{"error": transErr.Error(), "kind": "invalid_transition"})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "conflict"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "not_found"})
	case errors.As(err, &collErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": collErr.Error(), "kind": "collaborator"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
