package liquidation

import (
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunningDataEntry is one accounting progress row for a liquidation.
// Rows contribute to the aggregate's disbursed/refunded totals, so writes
// are validated against the financial invariants before acceptance.
type RunningDataEntry struct {
	shared.BaseEntity
	LiquidationID      uuid.UUID       `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	EntryDate          time.Time       `json:"entry_date" gorm:"not null"`
	AmountCompleteDocs decimal.Decimal `json:"amount_complete_docs" gorm:"type:decimal(15,2);not null"`
	AmountRefunded     decimal.Decimal `json:"amount_refunded" gorm:"type:decimal(15,2);not null"`
	GranteesLiquidated int             `json:"grantees_liquidated" gorm:"not null"`
	Note               string          `json:"note"`
	CreatedBy          uuid.UUID       `json:"created_by" gorm:"type:uuid;not null"`
}

// NewRunningDataEntry validates and builds a running data row. Invariants
// against the parent's totals are enforced by the aggregate, not here.
func NewRunningDataEntry(liquidationID uuid.UUID, entryDate time.Time, amountCompleteDocs, amountRefunded decimal.Decimal, granteesLiquidated int, note string, createdBy uuid.UUID) (*RunningDataEntry, error) {
	if amountCompleteDocs.IsNegative() {
		return nil, shared.NewValidationError("Amount of complete documents cannot be negative")
	}
	if amountRefunded.IsNegative() {
		return nil, shared.NewValidationError("Refunded amount cannot be negative")
	}
	if granteesLiquidated < 0 {
		return nil, shared.NewValidationError("Grantees liquidated cannot be negative")
	}
	if entryDate.IsZero() {
		return nil, shared.NewValidationError("Entry date is required")
	}

	return &RunningDataEntry{
		BaseEntity:         shared.NewBaseEntity(),
		LiquidationID:      liquidationID,
		EntryDate:          entryDate,
		AmountCompleteDocs: amountCompleteDocs,
		AmountRefunded:     amountRefunded,
		GranteesLiquidated: granteesLiquidated,
		Note:               note,
		CreatedBy:          createdBy,
	}, nil
}
