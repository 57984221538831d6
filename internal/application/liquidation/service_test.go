package liquidation

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
)

// memoryRepo is an in-memory liquidation.Repository with real optimistic
// locking, so workflow sequences can be driven end to end.
type memoryRepo struct {
	mu            sync.Mutex
	byID          map[uuid.UUID]*liquidation.Liquidation
	savedVersions map[uuid.UUID]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byID:          make(map[uuid.UUID]*liquidation.Liquidation),
		savedVersions: make(map[uuid.UUID]int),
	}
}

func (r *memoryRepo) Save(ctx context.Context, l *liquidation.Liquidation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[l.ID] = l
	r.savedVersions[l.ID] = l.Version
	return nil
}

func (r *memoryRepo) SaveWithLock(ctx context.Context, l *liquidation.Liquidation, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.savedVersions[l.ID]
	if !ok {
		return shared.NewNotFoundError("Liquidation not found")
	}
	if stored != expectedVersion {
		return shared.NewConcurrencyConflictError("Liquidation was modified by another user")
	}
	r.byID[l.ID] = l
	r.savedVersions[l.ID] = l.Version
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*liquidation.Liquidation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("Liquidation not found")
	}
	return l, nil
}

func (r *memoryRepo) FindByControlNo(ctx context.Context, dvControlNo string) (*liquidation.Liquidation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.byID {
		if l.DVControlNo == dvControlNo {
			return l, nil
		}
	}
	return nil, shared.NewNotFoundError("Liquidation not found")
}

func (r *memoryRepo) ExistsByControlNo(ctx context.Context, dvControlNo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.byID {
		if l.DVControlNo == dvControlNo {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) List(ctx context.Context, filter liquidation.Filter) (*shared.Paginated[*liquidation.Liquidation], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*liquidation.Liquidation, 0)
	for _, l := range r.byID {
		if filter.HEIUII != "" && l.HEIUII != filter.HEIUII {
			continue
		}
		if filter.Region != "" && l.Region != filter.Region {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		items = append(items, l)
	}
	return &shared.Paginated[*liquidation.Liquidation]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (r *memoryRepo) CountByStatus(ctx context.Context, heiUII, region string) ([]liquidation.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[liquidation.Status]int64)
	for _, l := range r.byID {
		if heiUII != "" && l.HEIUII != heiUII {
			continue
		}
		if region != "" && l.Region != region {
			continue
		}
		counts[l.Status]++
	}
	result := make([]liquidation.StatusCount, 0, len(counts))
	for status, count := range counts {
		result = append(result, liquidation.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

var (
	heiActor = Actor{
		ID:             uuid.New(),
		Name:           "Dela Cruz",
		Role:           identity.RoleHEI,
		InstitutionUII: "09-001",
		Region:         "Region IX",
	}
	otherHEIActor = Actor{
		ID:             uuid.New(),
		Name:           "Reyes",
		Role:           identity.RoleHEI,
		InstitutionUII: "09-002",
		Region:         "Region IX",
	}
	rcActor = Actor{
		ID:     uuid.New(),
		Name:   "Santos",
		Role:   identity.RoleRegionalCoordinator,
		Region: "Region IX",
	}
	accountantActor = Actor{
		ID:   uuid.New(),
		Name: "Garcia",
		Role: identity.RoleAccountant,
	}
)

func newTestService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo), repo
}

func createDraft(t *testing.T, svc *Service, controlNo string) *LiquidationResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), heiActor, CreateLiquidationRequest{
		DVControlNo:      controlNo,
		HEIUII:           heiActor.InstitutionUII,
		HEIName:          "Western Mindanao State University",
		Region:           "Region IX",
		ProgramName:      "TES",
		AcademicYear:     "2025-2026",
		AmountReceived:   decimal.NewFromInt(100000),
		NumberOfGrantees: 10,
	})
	require.NoError(t, err)
	return resp
}

// createSubmittable adds one beneficiary so the draft can be submitted.
func createSubmittable(t *testing.T, svc *Service, controlNo string) *LiquidationResponse {
	t.Helper()
	resp := createDraft(t, svc, controlNo)
	_, err := svc.AddBeneficiary(context.Background(), heiActor, resp.ID, AddBeneficiaryRequest{
		LastName:  "Lim",
		FirstName: "Maria",
		Amount:    decimal.NewFromInt(10000),
	})
	require.NoError(t, err)
	return resp
}

func submitReport(t *testing.T, svc *Service, id uuid.UUID) *LiquidationResponse {
	t.Helper()
	current, err := svc.GetByID(context.Background(), heiActor, id)
	require.NoError(t, err)
	resp, err := svc.Submit(context.Background(), heiActor, id, SubmitRequest{Version: current.Version})
	require.NoError(t, err)
	return resp
}

func endorseToAccounting(t *testing.T, svc *Service, id uuid.UUID, refNo string) *LiquidationResponse {
	t.Helper()
	current, err := svc.GetByID(context.Background(), rcActor, id)
	require.NoError(t, err)
	resp, err := svc.EndorseToAccounting(context.Background(), rcActor, id, EndorseToAccountingRequest{
		ReferenceNo: refNo,
		Version:     current.Version,
	})
	require.NoError(t, err)
	return resp
}

func assertDomainErrCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr, ok := shared.IsDomainError(err)
	require.True(t, ok, "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateLiquidation(t *testing.T) {
	svc, _ := newTestService(t)

	resp := createDraft(t, svc, "DV-2025-001")
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, "09-001", resp.HEIUII)
}

func TestCreateRejectsDuplicateControlNo(t *testing.T) {
	svc, _ := newTestService(t)
	createDraft(t, svc, "DV-2025-001")

	_, err := svc.Create(context.Background(), heiActor, CreateLiquidationRequest{
		DVControlNo:    "DV-2025-001",
		HEIUII:         heiActor.InstitutionUII,
		HEIName:        "WMSU",
		AmountReceived: decimal.NewFromInt(50000),
	})
	assertDomainErrCode(t, err, shared.ErrCodeDuplicateControlNumber)
}

func TestCreateDeniedForAccountant(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), accountantActor, CreateLiquidationRequest{
		DVControlNo:    "DV-2025-002",
		HEIUII:         "09-001",
		HEIName:        "WMSU",
		AmountReceived: decimal.NewFromInt(50000),
	})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)
}

func TestCreateDeniedForOtherInstitution(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), heiActor, CreateLiquidationRequest{
		DVControlNo:    "DV-2025-003",
		HEIUII:         "09-999",
		HEIName:        "Another HEI",
		AmountReceived: decimal.NewFromInt(50000),
	})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)
}

func TestSubmitRequiresBeneficiaries(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createDraft(t, svc, "DV-2025-004")

	_, err := svc.Submit(context.Background(), heiActor, resp.ID, SubmitRequest{Version: resp.Version})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)
}

func TestSubmitByNonCreatorDenied(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-005")

	sameInstitution := Actor{
		ID:             uuid.New(),
		Name:           "Tan",
		Role:           identity.RoleHEI,
		InstitutionUII: heiActor.InstitutionUII,
	}
	_, err := svc.Submit(context.Background(), sameInstitution, resp.ID, SubmitRequest{Version: 2})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)
}

func TestSubmitMovesToInitialReview(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-006")

	submitted := submitReport(t, svc, resp.ID)
	assert.Equal(t, "for_initial_review", submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)
}

func TestFullWorkflowToCOA(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-007")
	submitReport(t, svc, resp.ID)

	// RC endorses with a transmittal
	endorsed := endorseToAccounting(t, svc, resp.ID, "TRN-001")
	assert.Equal(t, "endorsed_to_accounting", endorsed.Status)
	require.Len(t, endorsed.Transmittals, 1)
	assert.Equal(t, "TRN-001", endorsed.Transmittals[0].ReferenceNo)

	// Accountant sends it back for corrections
	returned, err := svc.ReturnToRC(ctx, accountantActor, resp.ID, ReturnRequest{
		Remarks: "OR numbers missing on folder 2",
		Version: endorsed.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "returned_to_rc", returned.Status)

	// Re-endorsement reuses nothing: the old reference number is rejected
	_, err = svc.EndorseToAccounting(ctx, rcActor, resp.ID, EndorseToAccountingRequest{
		ReferenceNo: "TRN-001",
		Version:     returned.Version,
	})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)

	endorsed = endorseToAccounting(t, svc, resp.ID, "TRN-002")
	require.Len(t, endorsed.Transmittals, 2)

	// Terminal transition
	final, err := svc.EndorseToCOA(ctx, accountantActor, resp.ID, EndorseToCOARequest{Version: endorsed.Version})
	require.NoError(t, err)
	assert.Equal(t, "endorsed_to_coa", final.Status)
	assert.NotNil(t, final.EndorsedToCOAAt)

	// Nothing moves out of the terminal status
	_, err = svc.ReturnToRC(ctx, accountantActor, resp.ID, ReturnRequest{Remarks: "x", Version: final.Version})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)

	// History carries every transition in order
	reviews, err := svc.GetReviews(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(reviews))
	for _, r := range reviews {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{
		"RC_ENDORSEMENT",
		"ACCOUNTANT_RETURN",
		"RC_ENDORSEMENT",
		"ACCOUNTANT_ENDORSEMENT",
	}, types)
}

func TestReturnToHEIAndResubmit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-008")
	submitted := submitReport(t, svc, resp.ID)

	returned, err := svc.ReturnToHEI(ctx, rcActor, resp.ID, ReturnRequest{
		Remarks:   "Beneficiary list incomplete",
		Checklist: []string{"Signed DV", "Beneficiary masterlist"},
		Version:   submitted.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "returned_to_hei", returned.Status)

	// Resubmission appends an HEI_RESUBMISSION entry
	resubmitted, err := svc.Submit(ctx, heiActor, resp.ID, SubmitRequest{
		Remarks: "Masterlist attached",
		Version: returned.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "for_initial_review", resubmitted.Status)

	reviews, err := svc.GetReviews(ctx, heiActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "RC_RETURN", reviews[0].Type)
	assert.Equal(t, []string{"Signed DV", "Beneficiary masterlist"}, reviews[0].Checklist)
	assert.Equal(t, "HEI_RESUBMISSION", reviews[1].Type)
}

// Role failures and status failures must stay distinguishable: the same
// operation reports PERMISSION_DENIED for the wrong role even when the
// status is also wrong, and INVALID_STATE for the right role at the wrong
// time.
func TestRoleGateBeforeStatusGate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-009")

	// HEI can never endorse, draft status notwithstanding
	_, err := svc.EndorseToAccounting(ctx, heiActor, resp.ID, EndorseToAccountingRequest{
		ReferenceNo: "TRN-001",
		Version:     2,
	})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)

	// The RC holds the capability, but a draft is not endorsable yet
	_, err = svc.EndorseToAccounting(ctx, rcActor, resp.ID, EndorseToAccountingRequest{
		ReferenceNo: "TRN-001",
		Version:     2,
	})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)

	// Only the Accountant endorses to COA
	_, err = svc.EndorseToCOA(ctx, rcActor, resp.ID, EndorseToCOARequest{Version: 2})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)

	_, err = svc.EndorseToCOA(ctx, accountantActor, resp.ID, EndorseToCOARequest{Version: 2})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)

	// Same split for returns: the Accountant may return, but not a draft
	_, err = svc.ReturnToRC(ctx, accountantActor, resp.ID, ReturnRequest{Remarks: "premature", Version: 2})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)
}

func TestEndorseRequiresReferenceNo(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-030")
	submitted := submitReport(t, svc, resp.ID)

	_, err := svc.EndorseToAccounting(context.Background(), rcActor, resp.ID, EndorseToAccountingRequest{
		ReferenceNo: "   ",
		Version:     submitted.Version,
	})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)

	// The failed endorsement leaves the report where it was
	current, err := svc.GetByID(context.Background(), rcActor, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "for_initial_review", current.Status)
	assert.Equal(t, submitted.Version, current.Version)
}

func TestReturnRequiresRemarks(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-010")
	submitted := submitReport(t, svc, resp.ID)

	_, err := svc.ReturnToHEI(context.Background(), rcActor, resp.ID, ReturnRequest{
		Remarks: "   ",
		Version: submitted.Version,
	})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)
}

func TestStaleVersionConflict(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-011")

	// The add bumped the version to 2; submitting with 1 is a lost race
	_, err := svc.Submit(context.Background(), heiActor, resp.ID, SubmitRequest{Version: 1})
	assertDomainErrCode(t, err, shared.ErrCodeConcurrencyConflict)
}

func TestHEIVisibilityScoping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createDraft(t, svc, "DV-2025-012")

	// Another institution's HEI cannot see the record at all
	_, err := svc.GetByID(ctx, otherHEIActor, resp.ID)
	assertDomainErrCode(t, err, shared.ErrCodeNotFound)

	_, err = svc.GetByControlNo(ctx, otherHEIActor, "DV-2025-012")
	assertDomainErrCode(t, err, shared.ErrCodeNotFound)

	// Listing is forced to the actor's institution even with a foreign filter
	page, err := svc.List(ctx, otherHEIActor, ListFilter{HEIUII: heiActor.InstitutionUII})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// Coordinators see it
	got, err := svc.GetByID(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
}

func TestUpdateEditableOnlyWhileWithHEI(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-013")
	submitted := submitReport(t, svc, resp.ID)

	_, err := svc.Update(ctx, heiActor, resp.ID, UpdateLiquidationRequest{
		HEIName:          "WMSU",
		AmountReceived:   decimal.NewFromInt(100000),
		NumberOfGrantees: 10,
		Version:          submitted.Version,
	})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)

	// The coordinator may still correct fields after submission
	updated, err := svc.Update(ctx, rcActor, resp.ID, UpdateLiquidationRequest{
		HEIName:          "Western Mindanao State University",
		Region:           "Region IX",
		AmountReceived:   decimal.NewFromInt(120000),
		NumberOfGrantees: 12,
		DocumentStatus:   "PARTIAL",
		Version:          submitted.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", updated.DocumentStatus)
	assert.True(t, decimal.NewFromInt(120000).Equal(updated.AmountReceived))
}

func TestBeneficiariesLockedAfterSubmission(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createSubmittable(t, svc, "DV-2025-014")
	submitReport(t, svc, resp.ID)

	_, err := svc.AddBeneficiary(context.Background(), heiActor, resp.ID, AddBeneficiaryRequest{
		LastName:  "Uy",
		FirstName: "Jose",
		Amount:    decimal.NewFromInt(5000),
	})
	assertDomainErrCode(t, err, shared.ErrCodeInvalidState)
}

func TestRunningDataInvariants(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-015")

	// HEI cannot manage running data
	_, err := svc.AddRunningData(ctx, heiActor, resp.ID, AddRunningDataRequest{
		EntryDate:          time.Now(),
		AmountCompleteDocs: decimal.NewFromInt(1000),
	})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)

	// A valid row moves the totals
	entry, err := svc.AddRunningData(ctx, rcActor, resp.ID, AddRunningDataRequest{
		EntryDate:          time.Now(),
		AmountCompleteDocs: decimal.NewFromInt(60000),
		AmountRefunded:     decimal.NewFromInt(10000),
		GranteesLiquidated: 6,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(60000).Equal(got.AmountDisbursed))
	assert.True(t, decimal.NewFromInt(10000).Equal(got.AmountRefunded))

	// Disbursed + refunded can never exceed the amount received
	_, err = svc.AddRunningData(ctx, rcActor, resp.ID, AddRunningDataRequest{
		EntryDate:          time.Now(),
		AmountCompleteDocs: decimal.NewFromInt(40000),
	})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)

	// Grantee counts are capped the same way
	_, err = svc.AddRunningData(ctx, rcActor, resp.ID, AddRunningDataRequest{
		EntryDate:          time.Now(),
		GranteesLiquidated: 5,
	})
	assertDomainErrCode(t, err, shared.ErrCodeValidation)

	// Removing the row restores the totals
	err = svc.RemoveRunningData(ctx, rcActor, resp.ID, entry.ID)
	require.NoError(t, err)

	got, err = svc.GetByID(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountDisbursed.IsZero())
	assert.True(t, got.AmountRefunded.IsZero())
}

func TestTrackingEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-016")

	_, err := svc.AddTrackingEntry(ctx, heiActor, resp.ID, AddTrackingEntryRequest{Label: "Folder received"})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)

	entry, err := svc.AddTrackingEntry(ctx, rcActor, resp.ID, AddTrackingEntryRequest{
		Label:     "Folder received",
		Reference: "LOG-104",
	})
	require.NoError(t, err)

	rows, err := svc.ListTrackingEntries(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Folder received", rows[0].Label)

	require.NoError(t, svc.RemoveTrackingEntry(ctx, rcActor, resp.ID, entry.ID))

	rows, err = svc.ListTrackingEntries(ctx, rcActor, resp.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestChangeTransmittalLocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createSubmittable(t, svc, "DV-2025-017")
	submitReport(t, svc, resp.ID)
	endorsed := endorseToAccounting(t, svc, resp.ID, "TRN-001")
	transmittalID := endorsed.Transmittals[0].ID

	updated, err := svc.ChangeTransmittalLocation(ctx, rcActor, resp.ID, transmittalID, ChangeLocationRequest{
		Location: "Records Section, 2nd floor",
		Note:     "moved for audit",
	})
	require.NoError(t, err)
	require.Len(t, updated.LocationHistory, 1)
	assert.Equal(t, "Records Section, 2nd floor", updated.LocationHistory[0].NewValue)

	_, err = svc.ChangeTransmittalLocation(ctx, rcActor, resp.ID, uuid.New(), ChangeLocationRequest{
		Location: "elsewhere",
	})
	assertDomainErrCode(t, err, shared.ErrCodeNotFound)
}

func TestStatusSummaryScopedForHEI(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	createDraft(t, svc, "DV-2025-018")
	createDraft(t, svc, "DV-2025-019")

	summary, err := svc.StatusSummary(ctx, heiActor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
	assert.Equal(t, int64(2), summary.Counts["draft"])
	// Every status appears even when zero
	assert.Contains(t, summary.Counts, "endorsed_to_coa")

	summary, err = svc.StatusSummary(ctx, otherHEIActor)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total)
}

func TestWorkflowEventsPublished(t *testing.T) {
	svc, _ := newTestService(t)

	var published []shared.DomainEvent
	svc.SetEventPublisher(publisherFunc(func(ctx context.Context, events ...shared.DomainEvent) error {
		published = append(published, events...)
		return nil
	}))

	resp := createSubmittable(t, svc, "DV-2025-020")
	submitReport(t, svc, resp.ID)

	types := make([]string, 0, len(published))
	for _, ev := range published {
		types = append(types, ev.GetEventType())
	}
	assert.Contains(t, types, liquidation.EventTypeLiquidationCreated)
	assert.Contains(t, types, liquidation.EventTypeLiquidationSubmitted)
}

type publisherFunc func(ctx context.Context, events ...shared.DomainEvent) error

func (f publisherFunc) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return f(ctx, events...)
}

func TestLinkDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	resp := createDraft(t, svc, "DV-2025-021")

	doc, err := svc.LinkDocument(ctx, heiActor, resp.ID, LinkDocumentRequest{
		FileName:    "liquidation-report.pdf",
		ExternalURL: "https://drive.example.com/d/abc123",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example.com/d/abc123", doc.ExternalURL)

	docs, err := svc.ListDocuments(ctx, heiActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// Accountants review documents but never attach them
	_, err = svc.LinkDocument(ctx, accountantActor, resp.ID, LinkDocumentRequest{
		FileName:    "x.pdf",
		ExternalURL: "https://example.com/x.pdf",
	})
	assertDomainErrCode(t, err, shared.ErrCodePermissionDenied)
}

func TestUploadDocumentWithoutStoreFails(t *testing.T) {
	svc, _ := newTestService(t)
	resp := createDraft(t, svc, "DV-2025-022")

	_, err := svc.UploadDocument(context.Background(), heiActor, resp.ID,
		"report.pdf", "application/pdf", 1024, nil)
	assertDomainErrCode(t, err, shared.ErrCodeInternal)
}

// fakeDocumentStore records object keys so tests can check what was
// written to and removed from the bucket.
type fakeDocumentStore struct {
	puts    []string
	deletes []string
}

func (f *fakeDocumentStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeDocumentStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeDocumentStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.example.com/" + key, nil
}

// failingSaveRepo rejects every SaveWithLock, as if another user always
// wins the version race.
type failingSaveRepo struct {
	*memoryRepo
}

func (r *failingSaveRepo) SaveWithLock(ctx context.Context, l *liquidation.Liquidation, expectedVersion int) error {
	return shared.NewConcurrencyConflictError("Liquidation was modified by another user")
}

func TestUploadDocument(t *testing.T) {
	svc, _ := newTestService(t)
	store := &fakeDocumentStore{}
	svc.SetDocumentStore(store)
	resp := createDraft(t, svc, "DV-2025-023")

	doc, err := svc.UploadDocument(context.Background(), heiActor, resp.ID,
		"report.pdf", "application/pdf", 1024, strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", doc.FileName)
	require.Len(t, store.puts, 1)
	assert.Empty(t, store.deletes)

	docs, err := svc.ListDocuments(context.Background(), heiActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestUploadDocumentRemovesObjectWhenSaveFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(&failingSaveRepo{repo})
	store := &fakeDocumentStore{}
	svc.SetDocumentStore(store)
	resp := createDraft(t, svc, "DV-2025-024")

	_, err := svc.UploadDocument(context.Background(), heiActor, resp.ID,
		"report.pdf", "application/pdf", 1024, strings.NewReader("pdf bytes"))
	assertDomainErrCode(t, err, shared.ErrCodeConcurrencyConflict)

	// the stored object is rolled back together with the record
	require.Len(t, store.puts, 1)
	assert.Equal(t, store.puts, store.deletes)
}
