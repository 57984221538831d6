package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	liquidationapp "github.com/chedfms/liqtrack/internal/application/liquidation"
	"github.com/chedfms/liqtrack/internal/interfaces/http/middleware"
)

// LiquidationHandler handles liquidation report endpoints, including the
// review-workflow transitions.
type LiquidationHandler struct {
	BaseHandler
	service *liquidationapp.Service
}

// NewLiquidationHandler creates a new liquidation handler
func NewLiquidationHandler(service *liquidationapp.Service) *LiquidationHandler {
	return &LiquidationHandler{service: service}
}

// RegisterRoutes registers all liquidation routes
func (h *LiquidationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	lq := rg.Group("/liquidations")

	lq.POST("", h.Create)
	lq.GET("", h.List)
	lq.GET("/stats/status-summary", h.StatusSummary)
	lq.GET("/control-no/:control_no", h.GetByControlNo)
	lq.GET("/:id", h.GetByID)
	lq.PUT("/:id", h.Update)

	// Workflow transitions
	lq.POST("/:id/submit", h.Submit)
	lq.POST("/:id/endorse-to-accounting", h.EndorseToAccounting)
	lq.POST("/:id/return-to-hei", h.ReturnToHEI)
	lq.POST("/:id/endorse-to-coa", h.EndorseToCOA)
	lq.POST("/:id/return-to-rc", h.ReturnToRC)
	lq.GET("/:id/reviews", h.ListReviews)

	// Beneficiaries
	lq.POST("/:id/beneficiaries", h.AddBeneficiary)
	lq.GET("/:id/beneficiaries", h.ListBeneficiaries)
	lq.DELETE("/:id/beneficiaries/:beneficiary_id", h.RemoveBeneficiary)

	// Tracking entries
	lq.POST("/:id/tracking-entries", h.AddTrackingEntry)
	lq.GET("/:id/tracking-entries", h.ListTrackingEntries)
	lq.DELETE("/:id/tracking-entries/:entry_id", h.RemoveTrackingEntry)

	// Running liquidation data
	lq.POST("/:id/running-data", h.AddRunningData)
	lq.GET("/:id/running-data", h.ListRunningData)
	lq.DELETE("/:id/running-data/:entry_id", h.RemoveRunningData)

	// Transmittals
	lq.PUT("/:id/transmittals/:transmittal_id/location", h.ChangeTransmittalLocation)
}

func (h *LiquidationHandler) actor(c *gin.Context) (liquidationapp.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return liquidationapp.Actor{}, false
	}
	return actor, true
}

func (h *LiquidationHandler) liquidationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid liquidation ID")
		return uuid.Nil, false
	}
	return id, true
}

// Create registers a new liquidation record in draft
func (h *LiquidationHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req liquidationapp.CreateLiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns liquidations visible to the actor, filtered and paginated
func (h *LiquidationHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter liquidationapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// StatusSummary returns per-status counts scoped to the actor
func (h *LiquidationHandler) StatusSummary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.service.StatusSummary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetByID returns a single liquidation with its child records
func (h *LiquidationHandler) GetByID(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByControlNo looks up a liquidation by DV control number
func (h *LiquidationHandler) GetByControlNo(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByControlNo(c.Request.Context(), actor, c.Param("control_no"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update changes the editable fields of a liquidation
func (h *LiquidationHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.UpdateLiquidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Submit moves a draft or returned liquidation into initial review
func (h *LiquidationHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// EndorseToAccounting forwards a reviewed liquidation to the accounting unit
func (h *LiquidationHandler) EndorseToAccounting(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.EndorseToAccountingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.EndorseToAccounting(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ReturnToHEI sends a liquidation back to the HEI for compliance
func (h *LiquidationHandler) ReturnToHEI(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ReturnToHEI(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// EndorseToCOA closes a liquidation by endorsing it to the Commission on Audit
func (h *LiquidationHandler) EndorseToCOA(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.EndorseToCOARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.EndorseToCOA(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ReturnToRC sends a liquidation back from accounting to the regional office
func (h *LiquidationHandler) ReturnToRC(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ReturnToRC(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListReviews returns the append-only review history in chronological order
func (h *LiquidationHandler) ListReviews(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	reviews, err := h.service.GetReviews(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, reviews)
}

// AddBeneficiary appends one beneficiary row
func (h *LiquidationHandler) AddBeneficiary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.AddBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddBeneficiary(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListBeneficiaries returns all beneficiary rows of a liquidation
func (h *LiquidationHandler) ListBeneficiaries(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	items, err := h.service.ListBeneficiaries(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// RemoveBeneficiary deletes one beneficiary row
func (h *LiquidationHandler) RemoveBeneficiary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	beneficiaryID, err := uuid.Parse(c.Param("beneficiary_id"))
	if err != nil {
		h.BadRequest(c, "Invalid beneficiary ID")
		return
	}

	if err := h.service.RemoveBeneficiary(c.Request.Context(), actor, id, beneficiaryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddTrackingEntry appends a document-tracking milestone
func (h *LiquidationHandler) AddTrackingEntry(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.AddTrackingEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddTrackingEntry(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListTrackingEntries returns all tracking milestones
func (h *LiquidationHandler) ListTrackingEntries(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	items, err := h.service.ListTrackingEntries(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// RemoveTrackingEntry deletes one tracking milestone
func (h *LiquidationHandler) RemoveTrackingEntry(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		h.BadRequest(c, "Invalid tracking entry ID")
		return
	}

	if err := h.service.RemoveTrackingEntry(c.Request.Context(), actor, id, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddRunningData appends a running liquidation data point
func (h *LiquidationHandler) AddRunningData(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	var req liquidationapp.AddRunningDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.AddRunningData(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListRunningData returns the running data series in date order
func (h *LiquidationHandler) ListRunningData(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	items, err := h.service.ListRunningData(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// RemoveRunningData deletes one running data point
func (h *LiquidationHandler) RemoveRunningData(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		h.BadRequest(c, "Invalid running data entry ID")
		return
	}

	if err := h.service.RemoveRunningData(c.Request.Context(), actor, id, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangeTransmittalLocation records a document location change on a transmittal
func (h *LiquidationHandler) ChangeTransmittalLocation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.liquidationID(c)
	if !ok {
		return
	}

	transmittalID, err := uuid.Parse(c.Param("transmittal_id"))
	if err != nil {
		h.BadRequest(c, "Invalid transmittal ID")
		return
	}

	var req liquidationapp.ChangeLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.service.ChangeTransmittalLocation(c.Request.Context(), actor, id, transmittalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
