package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// liquidationSortColumns whitelists the columns List may order by.
var liquidationSortColumns = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"dv_control_no": true,
	"hei_name":      true,
	"hei_uii":       true,
	"status":        true,
	"submitted_at":  true,
}

// GormLiquidationRepository implements liquidation.Repository using GORM
type GormLiquidationRepository struct {
	db *gorm.DB
}

// NewGormLiquidationRepository creates a new GormLiquidationRepository
func NewGormLiquidationRepository(db *gorm.DB) *GormLiquidationRepository {
	return &GormLiquidationRepository{db: db}
}

// FindByID finds a liquidation with all child collections loaded
func (r *GormLiquidationRepository) FindByID(ctx context.Context, id uuid.UUID) (*liquidation.Liquidation, error) {
	var l liquidation.Liquidation
	if err := r.preloadAll(r.db.WithContext(ctx)).
		First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByControlNo finds a liquidation by its DV control number
func (r *GormLiquidationRepository) FindByControlNo(ctx context.Context, dvControlNo string) (*liquidation.Liquidation, error) {
	var l liquidation.Liquidation
	if err := r.preloadAll(r.db.WithContext(ctx)).
		Where("dv_control_no = ?", dvControlNo).
		First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ExistsByControlNo checks whether a DV control number is already taken
func (r *GormLiquidationRepository) ExistsByControlNo(ctx context.Context, dvControlNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&liquidation.Liquidation{}).
		Where("dv_control_no = ?", dvControlNo).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a liquidation together with its child collections
func (r *GormLiquidationRepository) Save(ctx context.Context, l *liquidation.Liquidation) error {
	if err := l.CheckFinancials(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(l).Error; err != nil {
			return err
		}
		return r.syncChildren(tx, l)
	})
}

// SaveWithLock persists the aggregate only if the stored version still
// matches expectedVersion
func (r *GormLiquidationRepository) SaveWithLock(ctx context.Context, l *liquidation.Liquidation, expectedVersion int) error {
	if err := l.CheckFinancials(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&liquidation.Liquidation{}).
			Where("id = ? AND version = ?", l.ID, expectedVersion).
			Updates(map[string]interface{}{
				"hei_name":           l.HEIName,
				"region":             l.Region,
				"program_name":       l.ProgramName,
				"academic_year":      l.AcademicYear,
				"semester":           l.Semester,
				"batch_number":       l.BatchNumber,
				"amount_received":    l.AmountReceived,
				"amount_disbursed":   l.AmountDisbursed,
				"amount_refunded":    l.AmountRefunded,
				"number_of_grantees": l.NumberOfGrantees,
				"document_status":    l.DocumentStatus,
				"status":             l.Status,
				"submitted_at":       l.SubmittedAt,
				"endorsed_at":        l.EndorsedAt,
				"returned_at":        l.ReturnedAt,
				"endorsed_to_coa_at": l.EndorsedToCOAAt,
				"version":            l.Version,
				"updated_at":         l.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&liquidation.Liquidation{}).
				Where("id = ?", l.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.NewConcurrencyConflictError("The liquidation has been modified by another user")
		}

		return r.syncChildren(tx, l)
	})
}

// syncChildren reconciles every child collection with the aggregate's state.
// Reviews, transmittals and documents are append-only; beneficiaries,
// tracking entries and running data rows can also be removed.
func (r *GormLiquidationRepository) syncChildren(tx *gorm.DB, l *liquidation.Liquidation) error {
	beneficiaryIDs := make([]uuid.UUID, len(l.Beneficiaries))
	for i := range l.Beneficiaries {
		l.Beneficiaries[i].LiquidationID = l.ID
		beneficiaryIDs[i] = l.Beneficiaries[i].ID
	}
	if err := deleteMissing(tx, &liquidation.Beneficiary{}, l.ID, beneficiaryIDs); err != nil {
		return err
	}
	for i := range l.Beneficiaries {
		if err := tx.Save(&l.Beneficiaries[i]).Error; err != nil {
			return err
		}
	}

	trackingIDs := make([]uuid.UUID, len(l.TrackingEntries))
	for i := range l.TrackingEntries {
		l.TrackingEntries[i].LiquidationID = l.ID
		trackingIDs[i] = l.TrackingEntries[i].ID
	}
	if err := deleteMissing(tx, &liquidation.TrackingEntry{}, l.ID, trackingIDs); err != nil {
		return err
	}
	for i := range l.TrackingEntries {
		if err := tx.Save(&l.TrackingEntries[i]).Error; err != nil {
			return err
		}
	}

	runningIDs := make([]uuid.UUID, len(l.RunningData))
	for i := range l.RunningData {
		l.RunningData[i].LiquidationID = l.ID
		runningIDs[i] = l.RunningData[i].ID
	}
	if err := deleteMissing(tx, &liquidation.RunningDataEntry{}, l.ID, runningIDs); err != nil {
		return err
	}
	for i := range l.RunningData {
		if err := tx.Save(&l.RunningData[i]).Error; err != nil {
			return err
		}
	}

	for i := range l.Reviews {
		l.Reviews[i].LiquidationID = l.ID
		if err := tx.Save(&l.Reviews[i]).Error; err != nil {
			return err
		}
	}

	for i := range l.Transmittals {
		l.Transmittals[i].LiquidationID = l.ID
		if err := tx.Omit(clause.Associations).Save(&l.Transmittals[i]).Error; err != nil {
			return err
		}
		for j := range l.Transmittals[i].LocationHistory {
			l.Transmittals[i].LocationHistory[j].TransmittalID = l.Transmittals[i].ID
			if err := tx.Save(&l.Transmittals[i].LocationHistory[j]).Error; err != nil {
				return err
			}
		}
	}

	for i := range l.Documents {
		l.Documents[i].LiquidationID = l.ID
		if err := tx.Save(&l.Documents[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// deleteMissing removes child rows that are no longer part of the aggregate
func deleteMissing(tx *gorm.DB, model interface{}, liquidationID uuid.UUID, keepIDs []uuid.UUID) error {
	query := tx.Where("liquidation_id = ?", liquidationID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.Delete(model).Error
}

// List returns a page of liquidations matching the filter
func (r *GormLiquidationRepository) List(ctx context.Context, filter liquidation.Filter) (*shared.Paginated[*liquidation.Liquidation], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&liquidation.Liquidation{})
	query = applyLiquidationFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := filter.OrderBy
	if !liquidationSortColumns[orderBy] {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if strings.ToLower(filter.OrderDir) == "asc" {
		orderDir = "ASC"
	}

	var items []*liquidation.Liquidation
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return &shared.Paginated[*liquidation.Liquidation]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// CountByStatus returns per-status counts, optionally scoped to one HEI or region
func (r *GormLiquidationRepository) CountByStatus(ctx context.Context, heiUII, region string) ([]liquidation.StatusCount, error) {
	query := r.db.WithContext(ctx).Model(&liquidation.Liquidation{})
	if heiUII != "" {
		query = query.Where("hei_uii = ?", heiUII)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}

	var counts []liquidation.StatusCount
	if err := query.
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormLiquidationRepository) preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Beneficiaries").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviewed_at ASC")
		}).
		Preload("Transmittals").
		Preload("Transmittals.LocationHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("changed_at ASC")
		}).
		Preload("TrackingEntries").
		Preload("RunningData", func(db *gorm.DB) *gorm.DB {
			return db.Order("entry_date ASC")
		}).
		Preload("Documents")
}

func applyLiquidationFilter(query *gorm.DB, filter liquidation.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.HEIUII != "" {
		query = query.Where("hei_uii = ?", filter.HEIUII)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.AcademicYear != "" {
		query = query.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("dv_control_no LIKE ? OR hei_name LIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormLiquidationRepository implements liquidation.Repository
var _ liquidation.Repository = (*GormLiquidationRepository)(nil)
