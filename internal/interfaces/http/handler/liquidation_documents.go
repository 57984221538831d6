package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	liquidationapp "github.com/chedfms/liqtrack/internal/application/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/interfaces/http/middleware"
)

// DocumentHandler handles supporting-document endpoints for liquidations
type DocumentHandler struct {
	BaseHandler
	service *liquidationapp.Service
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service *liquidationapp.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// RegisterRoutes registers document routes under liquidations
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/liquidations/:id/documents")
	docs.POST("", h.Upload)
	docs.POST("/link", h.Link)
	docs.GET("", h.List)
}

func (h *DocumentHandler) actor(c *gin.Context) (liquidationapp.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return liquidationapp.Actor{}, false
	}
	return actor, true
}

func (h *DocumentHandler) liquidationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid liquidation ID")
		return uuid.Nil, false
	}
	return id, true
}

// Upload stores an uploaded file in object storage and attaches it
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size <= 0 || header.Size > liquidation.MaxDocumentSize {
		h.Error(c, http.StatusUnprocessableEntity, shared.ErrCodeFileFormat,
			"file exceeds maximum size of 20MB")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := h.service.UploadDocument(c.Request.Context(), actor, id,
		header.Filename, contentType, header.Size, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Link attaches an externally hosted document by URL
func (h *DocumentHandler) Link(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.LinkDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.LinkDocument(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns all attached documents, with presigned download URLs for
// stored files
func (h *DocumentHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	docs, err := h.service.ListDocuments(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, docs)
}
