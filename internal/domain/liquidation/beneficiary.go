package liquidation

import (
	"strings"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Beneficiary is one scholar row under a liquidation report.
type Beneficiary struct {
	shared.BaseEntity
	LiquidationID    uuid.UUID       `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	LastName         string          `json:"last_name" gorm:"not null"`
	FirstName        string          `json:"first_name" gorm:"not null"`
	MiddleName       string          `json:"middle_name"`
	StudentNumber    string          `json:"student_number"`
	AwardNumber      string          `json:"award_number"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	DisbursementDate *time.Time      `json:"disbursement_date"`
}

// NewBeneficiary validates and builds a beneficiary row.
func NewBeneficiary(liquidationID uuid.UUID, lastName, firstName, middleName, studentNumber, awardNumber string, amount decimal.Decimal, disbursementDate *time.Time) (*Beneficiary, error) {
	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	if lastName == "" {
		return nil, shared.NewValidationError("Beneficiary last name is required")
	}
	if firstName == "" {
		return nil, shared.NewValidationError("Beneficiary first name is required")
	}
	if len(lastName) > 200 || len(firstName) > 200 || len(middleName) > 200 {
		return nil, shared.NewValidationError("Beneficiary name cannot exceed 200 characters")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Beneficiary amount cannot be negative")
	}

	return &Beneficiary{
		BaseEntity:       shared.NewBaseEntity(),
		LiquidationID:    liquidationID,
		LastName:         lastName,
		FirstName:        firstName,
		MiddleName:       strings.TrimSpace(middleName),
		StudentNumber:    strings.TrimSpace(studentNumber),
		AwardNumber:      strings.TrimSpace(awardNumber),
		Amount:           amount,
		DisbursementDate: disbursementDate,
	}, nil
}

// FullName returns "Last, First Middle" for display and import reporting.
func (b *Beneficiary) FullName() string {
	name := b.LastName + ", " + b.FirstName
	if b.MiddleName != "" {
		name += " " + b.MiddleName
	}
	return name
}
