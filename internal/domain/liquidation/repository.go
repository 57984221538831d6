package liquidation

import (
	"context"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter carries listing parameters for liquidations.
type Filter struct {
	shared.Filter
	Status       *Status
	HEIUII       string
	Region       string
	AcademicYear string
}

// StatusCount is one row of the status summary.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

// Repository defines persistence operations for liquidations.
type Repository interface {
	Save(ctx context.Context, l *Liquidation) error
	// SaveWithLock persists the aggregate only if the stored version still
	// matches expectedVersion, otherwise CONCURRENCY_CONFLICT.
	SaveWithLock(ctx context.Context, l *Liquidation, expectedVersion int) error
	FindByID(ctx context.Context, id uuid.UUID) (*Liquidation, error)
	FindByControlNo(ctx context.Context, dvControlNo string) (*Liquidation, error)
	ExistsByControlNo(ctx context.Context, dvControlNo string) (bool, error)
	List(ctx context.Context, filter Filter) (*shared.Paginated[*Liquidation], error)
	CountByStatus(ctx context.Context, heiUII, region string) ([]StatusCount, error)
}
