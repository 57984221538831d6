package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	liquidationapp "github.com/chedfms/liqtrack/internal/application/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/interfaces/http/middleware"
)

// maxImportFileSize caps beneficiary workbook uploads.
const maxImportFileSize = 10 << 20

// ImportHandler handles beneficiary bulk import from Excel workbooks
type ImportHandler struct {
	BaseHandler
	service *liquidationapp.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(service *liquidationapp.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// RegisterRoutes registers import routes under liquidations
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/liquidations/:id/beneficiaries/import", h.ImportBeneficiaries)
}

// ImportBeneficiaries accepts an .xlsx or .xls workbook and appends its rows
// to one liquidation. Any row error means nothing is written; the response
// still carries the per-row error detail.
func (h *ImportHandler) ImportBeneficiaries(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid liquidation ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusUnprocessableEntity, shared.ErrCodeFileFormat,
			"file exceeds maximum size of 10MB")
		return
	}

	if !liquidationapp.AcceptsFile(header.Filename, header.Size) {
		h.Error(c, http.StatusUnprocessableEntity, shared.ErrCodeFileFormat,
			"file must be an .xlsx or .xls workbook")
		return
	}

	result, err := h.service.ImportBeneficiaries(c.Request.Context(), actor, id,
		header.Filename, header.Size, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.HasErrors() {
		h.SuccessWithStatus(c, http.StatusUnprocessableEntity, result)
		return
	}

	h.Success(c, result)
}
