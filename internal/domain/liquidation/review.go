package liquidation

import (
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// ReviewType classifies an entry in the review history.
type ReviewType string

const (
	ReviewTypeRCReturn              ReviewType = "RC_RETURN"
	ReviewTypeRCEndorsement         ReviewType = "RC_ENDORSEMENT"
	ReviewTypeHEIResubmission       ReviewType = "HEI_RESUBMISSION"
	ReviewTypeAccountantReturn      ReviewType = "ACCOUNTANT_RETURN"
	ReviewTypeAccountantEndorsement ReviewType = "ACCOUNTANT_ENDORSEMENT"
)

// IsValid reports whether the review type is known.
func (t ReviewType) IsValid() bool {
	switch t {
	case ReviewTypeRCReturn, ReviewTypeRCEndorsement, ReviewTypeHEIResubmission,
		ReviewTypeAccountantReturn, ReviewTypeAccountantEndorsement:
		return true
	default:
		return false
	}
}

// Review is one append-only entry in a liquidation's review history.
// Entries are written once at transition time and never updated or deleted;
// the reviewer's name is cached so history survives account changes.
type Review struct {
	shared.BaseEntity
	LiquidationID uuid.UUID  `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	Type          ReviewType `json:"type" gorm:"not null"`
	ReviewerID    uuid.UUID  `json:"reviewer_id" gorm:"type:uuid;not null"`
	ReviewerName  string     `json:"reviewer_name" gorm:"not null"`
	Remarks       string     `json:"remarks"`
	Checklist     []string   `json:"checklist" gorm:"serializer:json"`
	ReviewedAt    time.Time  `json:"reviewed_at" gorm:"not null"`
}

func newReview(liquidationID uuid.UUID, reviewType ReviewType, reviewerID uuid.UUID, reviewerName, remarks string, checklist []string) Review {
	return Review{
		BaseEntity:    shared.NewBaseEntity(),
		LiquidationID: liquidationID,
		Type:          reviewType,
		ReviewerID:    reviewerID,
		ReviewerName:  reviewerName,
		Remarks:       remarks,
		Checklist:     checklist,
		ReviewedAt:    time.Now(),
	}
}
