package documents

import (
	"errors"
	"io"
	"net/http"
	"strings"

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
	docs := rg.Group("/documents")
	{
		docs.GET("/voucher/*handle", h.DownloadVoucher)
	}
	att := rg.Group("/requests/:id/attachments")
	{
		att.POST("", h.Upload)
		att.GET("", h.List)
	}
	rg.GET("/attachments/:id", h.Download)
	rg.DELETE("/attachments/:id", h.Remove)
}

// DownloadVoucher streams a voucher PDF by its handle.
func (h *Handler) DownloadVoucher(c *gin.Context) {
	handle := strings.TrimPrefix(c.Param("handle"), "/")
	if handle == "" || strings.Contains(handle, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document handle"})
		return
	}
	rc, err := h.service.Open(c.Request.Context(), handle)
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open document"})
		return
	}
	defer rc.Close()

	if locked, err := h.service.Locked(c.Request.Context(), handle); err == nil && locked {
		c.Header("X-Artifact-Locked", "true")
	}
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+sanitizeName(handle)+`"`)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}

func (h *Handler) Upload(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	att, err := h.service.AddAttachment(c.Request.Context(), requestID, header.Filename, fileType, header.Size, file, actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store attachment"})
		return
	}
	c.JSON(http.StatusCreated, att)
}

func (h *Handler) List(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	atts, err := h.service.ListAttachments(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list attachments"})
		return
	}
	c.JSON(http.StatusOK, atts)
}

func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}
	att, rc, err := h.service.OpenAttachment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrArtifactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open attachment"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", att.FileType)
	c.Header("Content-Disposition", `attachment; filename="`+sanitizeName(att.FileName)+`"`)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, rc)
}

func (h *Handler) Remove(c *gin.Context) {
	actor, ok := identity.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}
	if err := h.service.RemoveAttachment(c.Request.Context(), id, actor.ID); err != nil {
		switch {
		case errors.Is(err, ErrArtifactNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
		case errors.Is(err, ErrNotUploader):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove attachment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "attachment removed"})
}
