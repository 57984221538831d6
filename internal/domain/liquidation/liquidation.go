package liquidation

import (
	"fmt"
	"strings"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentStatus summarizes how complete the supporting paperwork is.
type DocumentStatus string

const (
	DocumentStatusNone     DocumentStatus = "NONE"
	DocumentStatusPartial  DocumentStatus = "PARTIAL"
	DocumentStatusComplete DocumentStatus = "COMPLETE"
)

// IsValid reports whether the document status is known.
func (d DocumentStatus) IsValid() bool {
	switch d {
	case DocumentStatusNone, DocumentStatusPartial, DocumentStatusComplete:
		return true
	default:
		return false
	}
}

// Liquidation is the aggregate root for one liquidation report. It owns the
// workflow status, the financial totals, and all child collections. Reports
// are never deleted; terminal reports stay readable forever.
type Liquidation struct {
	shared.BaseAggregateRoot
	DVControlNo      string          `json:"dv_control_no" gorm:"uniqueIndex;not null"`
	HEIUII           string          `json:"hei_uii" gorm:"column:hei_uii;not null;index"`
	HEIName          string          `json:"hei_name" gorm:"not null"`
	Region           string          `json:"region" gorm:"index"`
	ProgramName      string          `json:"program_name"`
	AcademicYear     string          `json:"academic_year"`
	Semester         string          `json:"semester"`
	BatchNumber      string          `json:"batch_number"`
	AmountReceived   decimal.Decimal `json:"amount_received" gorm:"type:decimal(15,2);not null"`
	AmountDisbursed  decimal.Decimal `json:"amount_disbursed" gorm:"type:decimal(15,2);not null"`
	AmountRefunded   decimal.Decimal `json:"amount_refunded" gorm:"type:decimal(15,2);not null"`
	NumberOfGrantees int             `json:"number_of_grantees" gorm:"not null"`
	DocumentStatus   DocumentStatus  `json:"document_status" gorm:"not null;default:'NONE'"`
	Status           Status          `json:"status" gorm:"not null;index"`
	SubmittedAt      *time.Time      `json:"submitted_at"`
	EndorsedAt       *time.Time      `json:"endorsed_at"`
	ReturnedAt       *time.Time      `json:"returned_at"`
	EndorsedToCOAAt  *time.Time      `json:"endorsed_to_coa_at"`

	Beneficiaries   []Beneficiary      `json:"beneficiaries" gorm:"foreignKey:LiquidationID"`
	Reviews         []Review           `json:"reviews" gorm:"foreignKey:LiquidationID"`
	Transmittals    []Transmittal      `json:"transmittals" gorm:"foreignKey:LiquidationID"`
	TrackingEntries []TrackingEntry    `json:"tracking_entries" gorm:"foreignKey:LiquidationID"`
	RunningData     []RunningDataEntry `json:"running_data" gorm:"foreignKey:LiquidationID"`
	Documents       []Document         `json:"documents" gorm:"foreignKey:LiquidationID"`
}

// NewLiquidation creates a draft liquidation report.
func NewLiquidation(dvControlNo, heiUII, heiName, region, programName, academicYear, semester, batchNumber string, amountReceived decimal.Decimal, numberOfGrantees int, createdBy uuid.UUID) (*Liquidation, error) {
	dvControlNo = strings.TrimSpace(dvControlNo)
	if dvControlNo == "" {
		return nil, shared.NewValidationError("DV control number is required")
	}
	if len(dvControlNo) > 100 {
		return nil, shared.NewValidationError("DV control number cannot exceed 100 characters")
	}
	heiUII = strings.TrimSpace(heiUII)
	if heiUII == "" {
		return nil, shared.NewValidationError("HEI UII is required")
	}
	heiName = strings.TrimSpace(heiName)
	if heiName == "" {
		return nil, shared.NewValidationError("HEI name is required")
	}
	if amountReceived.IsNegative() {
		return nil, shared.NewValidationError("Amount received cannot be negative")
	}
	if numberOfGrantees < 0 {
		return nil, shared.NewValidationError("Number of grantees cannot be negative")
	}

	l := &Liquidation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DVControlNo:       dvControlNo,
		HEIUII:            heiUII,
		HEIName:           heiName,
		Region:            strings.TrimSpace(region),
		ProgramName:       strings.TrimSpace(programName),
		AcademicYear:      strings.TrimSpace(academicYear),
		Semester:          strings.TrimSpace(semester),
		BatchNumber:       strings.TrimSpace(batchNumber),
		AmountReceived:    amountReceived,
		AmountDisbursed:   decimal.Zero,
		AmountRefunded:    decimal.Zero,
		NumberOfGrantees:  numberOfGrantees,
		DocumentStatus:    DocumentStatusNone,
		Status:            StatusDraft,
	}
	l.CreatedBy = &createdBy

	l.AddDomainEvent(NewLiquidationCreatedEvent(l))

	return l, nil
}

// IsCreator reports whether the given user created this report.
func (l *Liquidation) IsCreator(userID uuid.UUID) bool {
	return l.CreatedBy != nil && *l.CreatedBy == userID
}

// Submit moves the report into initial review. Resubmission after a return
// appends an HEI_RESUBMISSION entry to the review history.
func (l *Liquidation) Submit(actorID uuid.UUID, actorName, remarks string) error {
	if !l.Status.CanTransitionTo(StatusForInitialReview) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot submit a liquidation in %s status", l.Status.DisplayName()))
	}
	if len(l.Beneficiaries) == 0 {
		return shared.NewInvalidStateError("Cannot submit a liquidation with no beneficiaries")
	}

	resubmission := l.Status == StatusReturnedToHEI

	l.Status = StatusForInitialReview
	now := time.Now()
	l.SubmittedAt = &now
	l.IncrementVersion()

	if resubmission {
		l.appendReview(ReviewTypeHEIResubmission, actorID, actorName, remarks, nil)
	}

	l.AddDomainEvent(NewLiquidationSubmittedEvent(l, actorID, resubmission))

	return nil
}

// EndorseToAccounting forwards the report to the accounting unit. Every
// endorsement carries a fresh transmittal; re-endorsement after a return
// from accounting needs a new reference number, the old transmittal stays
// in history.
func (l *Liquidation) EndorseToAccounting(actorID uuid.UUID, actorName, remarks string, transmittal *Transmittal) error {
	if !l.Status.CanTransitionTo(StatusEndorsedToAccounting) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot endorse to accounting a liquidation in %s status", l.Status.DisplayName()))
	}
	if transmittal == nil {
		return shared.NewValidationError("Transmittal is required for endorsement")
	}
	for _, existing := range l.Transmittals {
		if existing.ReferenceNo == transmittal.ReferenceNo {
			return shared.NewValidationError("Transmittal reference number was already used for this liquidation")
		}
	}

	transmittal.LiquidationID = l.ID
	l.Transmittals = append(l.Transmittals, *transmittal)

	l.Status = StatusEndorsedToAccounting
	now := time.Now()
	l.EndorsedAt = &now
	l.IncrementVersion()

	l.appendReview(ReviewTypeRCEndorsement, actorID, actorName, remarks, nil)
	l.AddDomainEvent(NewLiquidationEndorsedToAccountingEvent(l, actorID, transmittal.ReferenceNo))

	return nil
}

// ReturnToHEI sends the report back to the submitting institution for
// correction. Remarks are mandatory so the HEI knows what to fix.
func (l *Liquidation) ReturnToHEI(actorID uuid.UUID, actorName, remarks string, checklist []string) error {
	if !l.Status.CanTransitionTo(StatusReturnedToHEI) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot return to HEI a liquidation in %s status", l.Status.DisplayName()))
	}
	if strings.TrimSpace(remarks) == "" {
		return shared.NewValidationError("Remarks are required when returning a liquidation")
	}

	l.Status = StatusReturnedToHEI
	now := time.Now()
	l.ReturnedAt = &now
	l.IncrementVersion()

	l.appendReview(ReviewTypeRCReturn, actorID, actorName, remarks, checklist)
	l.AddDomainEvent(NewLiquidationReturnedEvent(l, actorID, StatusReturnedToHEI))

	return nil
}

// EndorseToCOA closes the workflow by forwarding to the Commission on Audit.
// This is the terminal transition.
func (l *Liquidation) EndorseToCOA(actorID uuid.UUID, actorName, remarks string) error {
	if !l.Status.CanTransitionTo(StatusEndorsedToCOA) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot endorse to COA a liquidation in %s status", l.Status.DisplayName()))
	}

	l.Status = StatusEndorsedToCOA
	now := time.Now()
	l.EndorsedToCOAAt = &now
	l.IncrementVersion()

	l.appendReview(ReviewTypeAccountantEndorsement, actorID, actorName, remarks, nil)
	l.AddDomainEvent(NewLiquidationEndorsedToCOAEvent(l, actorID))

	return nil
}

// ReturnToRC sends the report from accounting back to the regional
// coordinator. Remarks are mandatory.
func (l *Liquidation) ReturnToRC(actorID uuid.UUID, actorName, remarks string) error {
	if !l.Status.CanTransitionTo(StatusReturnedToRC) {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot return to RC a liquidation in %s status", l.Status.DisplayName()))
	}
	if strings.TrimSpace(remarks) == "" {
		return shared.NewValidationError("Remarks are required when returning a liquidation")
	}

	l.Status = StatusReturnedToRC
	now := time.Now()
	l.ReturnedAt = &now
	l.IncrementVersion()

	l.appendReview(ReviewTypeAccountantReturn, actorID, actorName, remarks, nil)
	l.AddDomainEvent(NewLiquidationReturnedEvent(l, actorID, StatusReturnedToRC))

	return nil
}

// UpdateDetails changes the editable descriptive and financial fields.
// The control number and status never change here. Lowering the amount
// received below what is already accounted for is rejected.
func (l *Liquidation) UpdateDetails(heiName, region, programName, academicYear, semester, batchNumber string, amountReceived decimal.Decimal, numberOfGrantees int) error {
	heiName = strings.TrimSpace(heiName)
	if heiName == "" {
		return shared.NewValidationError("HEI name is required")
	}
	if amountReceived.IsNegative() {
		return shared.NewValidationError("Amount received cannot be negative")
	}
	if numberOfGrantees < 0 {
		return shared.NewValidationError("Number of grantees cannot be negative")
	}
	if l.AmountDisbursed.Add(l.AmountRefunded).GreaterThan(amountReceived) {
		return shared.NewValidationError("Amount received cannot be less than the sum of disbursed and refunded amounts")
	}
	if l.totalGranteesLiquidated() > numberOfGrantees {
		return shared.NewValidationError("Number of grantees cannot be less than the grantees already liquidated")
	}

	l.HEIName = heiName
	l.Region = strings.TrimSpace(region)
	l.ProgramName = strings.TrimSpace(programName)
	l.AcademicYear = strings.TrimSpace(academicYear)
	l.Semester = strings.TrimSpace(semester)
	l.BatchNumber = strings.TrimSpace(batchNumber)
	l.AmountReceived = amountReceived
	l.NumberOfGrantees = numberOfGrantees
	l.IncrementVersion()

	return nil
}

// SetDocumentStatus records the document completeness assessment.
func (l *Liquidation) SetDocumentStatus(status DocumentStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Unknown document status: %s", status))
	}

	l.DocumentStatus = status
	l.IncrementVersion()

	return nil
}

// AddBeneficiary appends a beneficiary row. Rows can only change while the
// report is with the HEI.
func (l *Liquidation) AddBeneficiary(b *Beneficiary) error {
	if !l.Status.IsEditableByHEI() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot modify beneficiaries of a liquidation in %s status", l.Status.DisplayName()))
	}

	b.LiquidationID = l.ID
	l.Beneficiaries = append(l.Beneficiaries, *b)
	l.IncrementVersion()

	return nil
}

// AddBeneficiaries appends a batch of rows atomically. Either every row is
// accepted or none are; used by the bulk import.
func (l *Liquidation) AddBeneficiaries(rows []*Beneficiary) error {
	if !l.Status.IsEditableByHEI() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot modify beneficiaries of a liquidation in %s status", l.Status.DisplayName()))
	}

	for _, b := range rows {
		b.LiquidationID = l.ID
	}
	for _, b := range rows {
		l.Beneficiaries = append(l.Beneficiaries, *b)
	}
	l.IncrementVersion()

	return nil
}

// RemoveBeneficiary deletes a beneficiary row.
func (l *Liquidation) RemoveBeneficiary(beneficiaryID uuid.UUID) error {
	if !l.Status.IsEditableByHEI() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot modify beneficiaries of a liquidation in %s status", l.Status.DisplayName()))
	}

	for i, b := range l.Beneficiaries {
		if b.ID == beneficiaryID {
			l.Beneficiaries = append(l.Beneficiaries[:i], l.Beneficiaries[i+1:]...)
			l.IncrementVersion()
			return nil
		}
	}

	return shared.NewNotFoundError("Beneficiary not found")
}

// TotalBeneficiaryAmount sums the per-scholar amounts.
func (l *Liquidation) TotalBeneficiaryAmount() decimal.Decimal {
	total := decimal.Zero
	for _, b := range l.Beneficiaries {
		total = total.Add(b.Amount)
	}
	return total
}

// AddRunningData appends an accounting progress row and refreshes the
// aggregate totals. A row that would push disbursed + refunded past the
// amount received, or liquidated grantees past the grantee count, is
// rejected outright.
func (l *Liquidation) AddRunningData(entry *RunningDataEntry) error {
	if l.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot modify running data of a liquidation endorsed to COA")
	}

	newDisbursed := l.AmountDisbursed.Add(entry.AmountCompleteDocs)
	newRefunded := l.AmountRefunded.Add(entry.AmountRefunded)
	if newDisbursed.Add(newRefunded).GreaterThan(l.AmountReceived) {
		return shared.NewValidationError("Disbursed plus refunded amounts cannot exceed the amount received")
	}
	if l.totalGranteesLiquidated()+entry.GranteesLiquidated > l.NumberOfGrantees {
		return shared.NewValidationError("Grantees liquidated cannot exceed the number of grantees")
	}

	entry.LiquidationID = l.ID
	l.RunningData = append(l.RunningData, *entry)
	l.AmountDisbursed = newDisbursed
	l.AmountRefunded = newRefunded
	l.IncrementVersion()

	return nil
}

// RemoveRunningData deletes a progress row and recomputes the totals.
func (l *Liquidation) RemoveRunningData(entryID uuid.UUID) error {
	if l.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot modify running data of a liquidation endorsed to COA")
	}

	for i, entry := range l.RunningData {
		if entry.ID == entryID {
			l.RunningData = append(l.RunningData[:i], l.RunningData[i+1:]...)
			l.recomputeTotals()
			l.IncrementVersion()
			return nil
		}
	}

	return shared.NewNotFoundError("Running data entry not found")
}

// AddTrackingEntry appends a free-form tracking row.
func (l *Liquidation) AddTrackingEntry(entry *TrackingEntry) {
	entry.LiquidationID = l.ID
	l.TrackingEntries = append(l.TrackingEntries, *entry)
	l.IncrementVersion()
}

// RemoveTrackingEntry deletes a tracking row.
func (l *Liquidation) RemoveTrackingEntry(entryID uuid.UUID) error {
	for i, entry := range l.TrackingEntries {
		if entry.ID == entryID {
			l.TrackingEntries = append(l.TrackingEntries[:i], l.TrackingEntries[i+1:]...)
			l.IncrementVersion()
			return nil
		}
	}

	return shared.NewNotFoundError("Tracking entry not found")
}

// AddDocument attaches a supporting document.
func (l *Liquidation) AddDocument(doc *Document) {
	doc.LiquidationID = l.ID
	l.Documents = append(l.Documents, *doc)
	l.IncrementVersion()
}

// ActiveTransmittal returns the transmittal of the current endorsement
// cycle, or nil before any endorsement.
func (l *Liquidation) ActiveTransmittal() *Transmittal {
	if len(l.Transmittals) == 0 {
		return nil
	}
	return &l.Transmittals[len(l.Transmittals)-1]
}

// FindTransmittal returns the transmittal with the given ID, or nil.
func (l *Liquidation) FindTransmittal(transmittalID uuid.UUID) *Transmittal {
	for i := range l.Transmittals {
		if l.Transmittals[i].ID == transmittalID {
			return &l.Transmittals[i]
		}
	}
	return nil
}

// ChangeTransmittalLocation moves the documents of one transmittal,
// appending to its location history.
func (l *Liquidation) ChangeTransmittalLocation(transmittalID uuid.UUID, newLocation, note string) error {
	t := l.FindTransmittal(transmittalID)
	if t == nil {
		return shared.NewNotFoundError("Transmittal not found")
	}

	if err := t.ChangeLocation(newLocation, note); err != nil {
		return err
	}
	l.IncrementVersion()

	return nil
}

// CheckFinancials verifies the aggregate's money invariant. Repositories
// call this before persisting as a final guard.
func (l *Liquidation) CheckFinancials() error {
	if l.AmountDisbursed.Add(l.AmountRefunded).GreaterThan(l.AmountReceived) {
		return shared.NewValidationError("Disbursed plus refunded amounts cannot exceed the amount received")
	}
	return nil
}

func (l *Liquidation) appendReview(reviewType ReviewType, reviewerID uuid.UUID, reviewerName, remarks string, checklist []string) {
	l.Reviews = append(l.Reviews, newReview(l.ID, reviewType, reviewerID, reviewerName, remarks, checklist))
}

func (l *Liquidation) recomputeTotals() {
	disbursed := decimal.Zero
	refunded := decimal.Zero
	for _, entry := range l.RunningData {
		disbursed = disbursed.Add(entry.AmountCompleteDocs)
		refunded = refunded.Add(entry.AmountRefunded)
	}
	l.AmountDisbursed = disbursed
	l.AmountRefunded = refunded
}

func (l *Liquidation) totalGranteesLiquidated() int {
	total := 0
	for _, entry := range l.RunningData {
		total += entry.GranteesLiquidated
	}
	return total
}
