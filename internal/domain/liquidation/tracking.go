package liquidation

import (
	"strings"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// TrackingEntry is a free-form ledger row attached to a liquidation,
// maintained by coordinators to track paperwork outside the status machine.
type TrackingEntry struct {
	shared.BaseEntity
	LiquidationID uuid.UUID  `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	Label         string     `json:"label" gorm:"not null"`
	Reference     string     `json:"reference"`
	EntryDate     *time.Time `json:"entry_date"`
	Note          string     `json:"note"`
	CreatedBy     uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
}

// NewTrackingEntry validates and builds a tracking row.
func NewTrackingEntry(liquidationID uuid.UUID, label, reference string, entryDate *time.Time, note string, createdBy uuid.UUID) (*TrackingEntry, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.NewValidationError("Tracking entry label is required")
	}
	if len(label) > 255 {
		return nil, shared.NewValidationError("Tracking entry label cannot exceed 255 characters")
	}

	return &TrackingEntry{
		BaseEntity:    shared.NewBaseEntity(),
		LiquidationID: liquidationID,
		Label:         label,
		Reference:     strings.TrimSpace(reference),
		EntryDate:     entryDate,
		Note:          note,
		CreatedBy:     createdBy,
	}, nil
}
