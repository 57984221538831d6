package liquidation

import (
	"context"
	"io"
	"strings"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/infrastructure/importer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportResult reports the outcome of a beneficiary bulk import. The import
// is all-or-nothing: with any row error, nothing is persisted.
type ImportResult struct {
	TotalRows    int                 `json:"total_rows"`
	ImportedRows int                 `json:"imported_rows"`
	ErrorRows    int                 `json:"error_rows"`
	Errors       []importer.RowError `json:"errors,omitempty"`
	IsTruncated  bool                `json:"is_truncated,omitempty"`
	TotalErrors  int                 `json:"total_errors,omitempty"`
}

// HasErrors reports whether any row failed validation.
func (r *ImportResult) HasErrors() bool {
	return r.ErrorRows > 0
}

// ImportService handles beneficiary bulk import from Excel workbooks.
type ImportService struct {
	liquidations *Service
	repo         liquidation.Repository
}

// NewImportService creates a new beneficiary import service.
func NewImportService(liquidations *Service, repo liquidation.Repository) *ImportService {
	return &ImportService{liquidations: liquidations, repo: repo}
}

// validationRules returns the column rules for the beneficiary sheet.
func (s *ImportService) validationRules() []importer.FieldRule {
	return []importer.FieldRule{
		importer.Field("last_name").Required().String().MaxLength(200).Build(),
		importer.Field("first_name").Required().String().MaxLength(200).Build(),
		importer.Field("middle_name").String().MaxLength(200).Build(),
		importer.Field("student_number").String().MaxLength(100).Build(),
		importer.Field("award_number").String().MaxLength(100).Build(),
		importer.Field("amount").Required().Decimal().MinValue(decimal.Zero).Build(),
		importer.Field("disbursement_date").Date().Build(),
	}
}

// ImportBeneficiaries parses, validates and appends beneficiary rows to one
// liquidation. All rows are appended in a single optimistic-lock save; any
// validation error means no row is written.
func (s *ImportService) ImportBeneficiaries(ctx context.Context, actor Actor, liquidationID uuid.UUID, fileName string, size int64, file io.Reader) (*ImportResult, error) {
	if err := requireCapability(actor, identity.CapBulkImport, "Regional Coordinator", "bulk import beneficiaries"); err != nil {
		return nil, err
	}

	rows, err := importer.ParseWorkbook(fileName, file, size)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{TotalRows: len(rows)}

	validator := importer.NewFieldValidator(s.validationRules(), 100)
	for _, row := range rows {
		if !validator.ValidateRow(row) {
			result.ErrorRows++
		}
	}
	if validator.Errors().HasErrors() {
		result.Errors = validator.Errors().Errors()
		result.IsTruncated = validator.Errors().IsTruncated()
		result.TotalErrors = validator.Errors().TotalCount()
		return result, nil
	}

	l, err := s.repo.FindByID(ctx, liquidationID)
	if err != nil {
		return nil, err
	}
	if err := s.liquidations.authorizeModify(actor, l); err != nil {
		return nil, err
	}

	version := l.Version
	beneficiaries := make([]*liquidation.Beneficiary, 0, len(rows))
	dateFormats := importer.Field("disbursement_date").Date().Build().DateFormats
	for _, row := range rows {
		amount, parseErr := decimal.NewFromString(row.Get("amount"))
		if parseErr != nil {
			result.ErrorRows++
			continue
		}

		b, buildErr := liquidation.NewBeneficiary(
			l.ID,
			row.Get("last_name"),
			row.Get("first_name"),
			row.Get("middle_name"),
			row.Get("student_number"),
			row.Get("award_number"),
			amount,
			nil,
		)
		if buildErr != nil {
			return nil, buildErr
		}
		if raw := row.Get("disbursement_date"); raw != "" {
			if d, dateErr := importer.ParseDate(raw, dateFormats); dateErr == nil {
				b.DisbursementDate = &d
			}
		}
		beneficiaries = append(beneficiaries, b)
	}

	if err := l.AddBeneficiaries(beneficiaries); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, l, version); err != nil {
		return nil, err
	}

	result.ImportedRows = len(beneficiaries)
	return result, nil
}

// AcceptsFile is a cheap pre-check handlers use before reading the upload.
func AcceptsFile(fileName string, size int64) bool {
	if size <= 0 || size > importer.MaxWorkbookSize {
		return false
	}
	lower := strings.ToLower(fileName)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}
