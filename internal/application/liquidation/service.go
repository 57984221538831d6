package liquidation

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentStore abstracts the object storage used for supporting documents.
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Service orchestrates the liquidation workflow. It owns the role gate for
// every operation; status gates live in the aggregate itself.
type Service struct {
	repo      liquidation.Repository
	store     DocumentStore
	publisher shared.EventPublisher
}

// NewService creates a new liquidation service.
func NewService(repo liquidation.Repository) *Service {
	return &Service{repo: repo}
}

// SetDocumentStore wires the object storage for document uploads.
func (s *Service) SetDocumentStore(store DocumentStore) {
	s.store = store
}

// SetEventPublisher wires an event publisher for workflow notifications.
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create registers a new draft liquidation report.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateLiquidationRequest) (*LiquidationResponse, error) {
	if err := requireCapability(actor, identity.CapCreateLiquidation, "HEI", "create a liquidation report"); err != nil {
		return nil, err
	}
	if actor.Role == identity.RoleHEI && actor.InstitutionUII != "" && req.HEIUII != actor.InstitutionUII {
		return nil, shared.NewPermissionDeniedError("HEI users can only create reports for their own institution")
	}

	exists, err := s.repo.ExistsByControlNo(ctx, req.DVControlNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrCodeDuplicateControlNumber, fmt.Sprintf("A liquidation with DV control number %s already exists", req.DVControlNo))
	}

	l, err := liquidation.NewLiquidation(
		req.DVControlNo, req.HEIUII, req.HEIName, req.Region,
		req.ProgramName, req.AcademicYear, req.Semester, req.BatchNumber,
		req.AmountReceived, req.NumberOfGrantees, actor.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}
	s.publish(ctx, l)

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// GetByID retrieves one report, scoped to the actor's institution for HEI users.
func (s *Service) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*LiquidationResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// GetByControlNo retrieves one report by its DV control number.
func (s *Service) GetByControlNo(ctx context.Context, actor Actor, dvControlNo string) (*LiquidationResponse, error) {
	l, err := s.repo.FindByControlNo(ctx, dvControlNo)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(actor, l) {
		return nil, shared.NewNotFoundError("Liquidation not found")
	}
	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// List returns a page of reports. HEI users only ever see their own
// institution's records regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter) (*shared.Paginated[LiquidationListItem], error) {
	domainFilter := liquidation.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		HEIUII:       filter.HEIUII,
		Region:       filter.Region,
		AcademicYear: filter.AcademicYear,
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		status := liquidation.Status(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError(fmt.Sprintf("Unknown status: %s", filter.Status))
		}
		domainFilter.Status = &status
	}

	if !canSeeAllInstitutions(actor) {
		domainFilter.HEIUII = actor.InstitutionUII
	} else if actor.Role == identity.RoleRegionalCoordinator && !actor.Role.Can(identity.CapViewAllRegions) && actor.Region != "" && domainFilter.Region == "" {
		domainFilter.Region = actor.Region
	}

	page, err := s.repo.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]LiquidationListItem, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, ToLiquidationListItem(l))
	}

	return &shared.Paginated[LiquidationListItem]{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// Update changes the editable fields of a report.
func (s *Service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateLiquidationRequest) (*LiquidationResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeModify(actor, l); err != nil {
		return nil, err
	}

	if err := l.UpdateDetails(req.HEIName, req.Region, req.ProgramName, req.AcademicYear, req.Semester, req.BatchNumber, req.AmountReceived, req.NumberOfGrantees); err != nil {
		return nil, err
	}
	if req.DocumentStatus != "" {
		if err := l.SetDocumentStatus(liquidation.DocumentStatus(req.DocumentStatus)); err != nil {
			return nil, err
		}
	}

	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// Submit moves a report into initial review. Only the record's creator may
// submit it; there is no admin override for this step.
func (s *Service) Submit(ctx context.Context, actor Actor, id uuid.UUID, req SubmitRequest) (*LiquidationResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !l.IsCreator(actor.ID) {
		return nil, shared.NewPermissionDeniedError("Only the creator of the record can submit it for review")
	}

	if err := l.Submit(actor.ID, actor.Name, req.Remarks); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// EndorseToAccounting forwards a report from initial review to accounting.
func (s *Service) EndorseToAccounting(ctx context.Context, actor Actor, id uuid.UUID, req EndorseToAccountingRequest) (*LiquidationResponse, error) {
	if err := requireCapability(actor, identity.CapEndorseToAccounting, "Regional Coordinator", "endorse to accounting"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	transmittal, err := liquidation.NewTransmittal(l.ID, req.ReferenceNo, req.ReceiverName, req.DocumentLocation, req.NumberOfFolders, req.FolderLocationNo, req.GroupTransmittal)
	if err != nil {
		return nil, err
	}

	if err := l.EndorseToAccounting(actor.ID, actor.Name, req.Remarks, transmittal); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// ReturnToHEI sends a report back to the institution for rework.
func (s *Service) ReturnToHEI(ctx context.Context, actor Actor, id uuid.UUID, req ReturnRequest) (*LiquidationResponse, error) {
	if err := requireCapability(actor, identity.CapReturnToHEI, "Regional Coordinator", "return a liquidation to the HEI"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.ReturnToHEI(actor.ID, actor.Name, req.Remarks, req.Checklist); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// EndorseToCOA performs the terminal transition.
func (s *Service) EndorseToCOA(ctx context.Context, actor Actor, id uuid.UUID, req EndorseToCOARequest) (*LiquidationResponse, error) {
	if err := requireCapability(actor, identity.CapEndorseToCOA, "Accountant", "endorse to COA"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.EndorseToCOA(actor.ID, actor.Name, req.Remarks); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// ReturnToRC sends a report from accounting back to the coordinator.
func (s *Service) ReturnToRC(ctx context.Context, actor Actor, id uuid.UUID, req ReturnRequest) (*LiquidationResponse, error) {
	if err := requireCapability(actor, identity.CapReturnToRC, "Accountant", "return a liquidation to the Regional Coordinator"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := l.ReturnToRC(actor.ID, actor.Name, req.Remarks); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, req.Version); err != nil {
		return nil, err
	}

	resp := ToLiquidationResponse(l)
	return &resp, nil
}

// GetReviews returns the append-only review history, oldest first.
func (s *Service) GetReviews(ctx context.Context, actor Actor, id uuid.UUID) ([]ReviewResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	reviews := make([]ReviewResponse, 0, len(l.Reviews))
	for i := range l.Reviews {
		reviews = append(reviews, ToReviewResponse(&l.Reviews[i]))
	}
	return reviews, nil
}

// AddBeneficiary appends one beneficiary row.
func (s *Service) AddBeneficiary(ctx context.Context, actor Actor, id uuid.UUID, req AddBeneficiaryRequest) (*BeneficiaryResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeModify(actor, l); err != nil {
		return nil, err
	}

	version := l.Version
	b, err := liquidation.NewBeneficiary(l.ID, req.LastName, req.FirstName, req.MiddleName, req.StudentNumber, req.AwardNumber, req.Amount, req.DisbursementDate)
	if err != nil {
		return nil, err
	}
	if err := l.AddBeneficiary(b); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		return nil, err
	}

	resp := ToBeneficiaryResponse(b)
	return &resp, nil
}

// ListBeneficiaries returns the beneficiary rows of a report.
func (s *Service) ListBeneficiaries(ctx context.Context, actor Actor, id uuid.UUID) ([]BeneficiaryResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rows := make([]BeneficiaryResponse, 0, len(l.Beneficiaries))
	for i := range l.Beneficiaries {
		rows = append(rows, ToBeneficiaryResponse(&l.Beneficiaries[i]))
	}
	return rows, nil
}

// RemoveBeneficiary deletes one beneficiary row.
func (s *Service) RemoveBeneficiary(ctx context.Context, actor Actor, id, beneficiaryID uuid.UUID) error {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.authorizeModify(actor, l); err != nil {
		return err
	}

	version := l.Version
	if err := l.RemoveBeneficiary(beneficiaryID); err != nil {
		return err
	}
	return s.saveAndPublish(ctx, l, version)
}

// AddTrackingEntry appends a tracking row.
func (s *Service) AddTrackingEntry(ctx context.Context, actor Actor, id uuid.UUID, req AddTrackingEntryRequest) (*TrackingEntryResponse, error) {
	if err := requireCapability(actor, identity.CapManageTracking, "Regional Coordinator", "manage tracking entries"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	version := l.Version
	entry, err := liquidation.NewTrackingEntry(l.ID, req.Label, req.Reference, req.EntryDate, req.Note, actor.ID)
	if err != nil {
		return nil, err
	}
	l.AddTrackingEntry(entry)
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		return nil, err
	}

	resp := ToTrackingEntryResponse(entry)
	return &resp, nil
}

// ListTrackingEntries returns a report's tracking rows.
func (s *Service) ListTrackingEntries(ctx context.Context, actor Actor, id uuid.UUID) ([]TrackingEntryResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rows := make([]TrackingEntryResponse, 0, len(l.TrackingEntries))
	for i := range l.TrackingEntries {
		rows = append(rows, ToTrackingEntryResponse(&l.TrackingEntries[i]))
	}
	return rows, nil
}

// RemoveTrackingEntry deletes a tracking row.
func (s *Service) RemoveTrackingEntry(ctx context.Context, actor Actor, id, entryID uuid.UUID) error {
	if err := requireCapability(actor, identity.CapManageTracking, "Regional Coordinator", "manage tracking entries"); err != nil {
		return err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	version := l.Version
	if err := l.RemoveTrackingEntry(entryID); err != nil {
		return err
	}
	return s.saveAndPublish(ctx, l, version)
}

// AddRunningData appends an accounting progress row, enforcing the money
// and grantee invariants.
func (s *Service) AddRunningData(ctx context.Context, actor Actor, id uuid.UUID, req AddRunningDataRequest) (*RunningDataResponse, error) {
	if err := requireCapability(actor, identity.CapManageRunningData, "Regional Coordinator", "manage running data"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	version := l.Version
	entry, err := liquidation.NewRunningDataEntry(l.ID, req.EntryDate, req.AmountCompleteDocs, req.AmountRefunded, req.GranteesLiquidated, req.Note, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := l.AddRunningData(entry); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		return nil, err
	}

	resp := ToRunningDataResponse(entry)
	return &resp, nil
}

// ListRunningData returns a report's progress rows.
func (s *Service) ListRunningData(ctx context.Context, actor Actor, id uuid.UUID) ([]RunningDataResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	rows := make([]RunningDataResponse, 0, len(l.RunningData))
	for i := range l.RunningData {
		rows = append(rows, ToRunningDataResponse(&l.RunningData[i]))
	}
	return rows, nil
}

// RemoveRunningData deletes a progress row and recomputes the totals.
func (s *Service) RemoveRunningData(ctx context.Context, actor Actor, id, entryID uuid.UUID) error {
	if err := requireCapability(actor, identity.CapManageRunningData, "Regional Coordinator", "manage running data"); err != nil {
		return err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	version := l.Version
	if err := l.RemoveRunningData(entryID); err != nil {
		return err
	}
	return s.saveAndPublish(ctx, l, version)
}

// ChangeTransmittalLocation moves the physical documents of one
// transmittal, appending to its location history.
func (s *Service) ChangeTransmittalLocation(ctx context.Context, actor Actor, id, transmittalID uuid.UUID, req ChangeLocationRequest) (*TransmittalResponse, error) {
	if err := requireCapability(actor, identity.CapManageTracking, "Regional Coordinator", "update document locations"); err != nil {
		return nil, err
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	version := l.Version
	if err := l.ChangeTransmittalLocation(transmittalID, req.Location, req.Note); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		return nil, err
	}

	resp := ToTransmittalResponse(l.FindTransmittal(transmittalID))
	return &resp, nil
}

// UploadDocument stores a supporting file in object storage and records it.
func (s *Service) UploadDocument(ctx context.Context, actor Actor, id uuid.UUID, fileName, contentType string, size int64, body io.Reader) (*DocumentResponse, error) {
	if err := requireCapability(actor, identity.CapUploadDocuments, "HEI", "upload documents"); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, shared.NewDomainError(shared.ErrCodeInternal, "Document storage is not configured")
	}
	if size > liquidation.MaxDocumentSize {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Document cannot exceed 20MB")
	}

	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	version := l.Version
	key := fmt.Sprintf("liquidations/%s/%s%s", l.ID, uuid.New(), path.Ext(fileName))
	if err := s.store.Put(ctx, key, contentType, body, size); err != nil {
		return nil, err
	}

	doc, err := liquidation.NewStoredDocument(l.ID, fileName, key, contentType, size, actor.ID)
	if err != nil {
		_ = s.store.Delete(ctx, key)
		return nil, err
	}
	l.AddDocument(doc)
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		// the record does not exist, so the object must not either
		_ = s.store.Delete(ctx, key)
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// LinkDocument records an externally hosted document.
func (s *Service) LinkDocument(ctx context.Context, actor Actor, id uuid.UUID, req LinkDocumentRequest) (*DocumentResponse, error) {
	if err := requireCapability(actor, identity.CapUploadDocuments, "HEI", "upload documents"); err != nil {
		return nil, err
	}

	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	version := l.Version
	doc, err := liquidation.NewLinkedDocument(l.ID, req.FileName, req.ExternalURL, actor.ID)
	if err != nil {
		return nil, err
	}
	l.AddDocument(doc)
	if err := s.saveAndPublish(ctx, l, version); err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// ListDocuments returns document metadata with short-lived download URLs
// for stored files.
func (s *Service) ListDocuments(ctx context.Context, actor Actor, id uuid.UUID) ([]DocumentResponse, error) {
	l, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	docs := make([]DocumentResponse, 0, len(l.Documents))
	for i := range l.Documents {
		resp := ToDocumentResponse(&l.Documents[i])
		if l.Documents[i].ObjectKey != "" && s.store != nil {
			url, err := s.store.PresignGet(ctx, l.Documents[i].ObjectKey, 15*time.Minute)
			if err == nil {
				resp.ExternalURL = url
			}
		}
		docs = append(docs, resp)
	}
	return docs, nil
}

// StatusSummary returns per-status report counts, scoped like List.
func (s *Service) StatusSummary(ctx context.Context, actor Actor) (*StatusSummaryResponse, error) {
	heiUII := ""
	region := ""
	if !canSeeAllInstitutions(actor) {
		heiUII = actor.InstitutionUII
	} else if actor.Role == identity.RoleRegionalCoordinator && !actor.Role.Can(identity.CapViewAllRegions) {
		region = actor.Region
	}

	counts, err := s.repo.CountByStatus(ctx, heiUII, region)
	if err != nil {
		return nil, err
	}

	summary := &StatusSummaryResponse{Counts: make(map[string]int64, len(counts))}
	for _, c := range counts {
		summary.Counts[string(c.Status)] = c.Count
		summary.Total += c.Count
	}
	for _, status := range liquidation.AllStatuses() {
		if _, ok := summary.Counts[string(status)]; !ok {
			summary.Counts[string(status)] = 0
		}
	}
	return summary, nil
}

// loadVisible fetches a report and hides it from HEI users of other
// institutions.
func (s *Service) loadVisible(ctx context.Context, actor Actor, id uuid.UUID) (*liquidation.Liquidation, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(actor, l) {
		return nil, shared.NewNotFoundError("Liquidation not found")
	}
	return l, nil
}

func (s *Service) visibleTo(actor Actor, l *liquidation.Liquidation) bool {
	if canSeeAllInstitutions(actor) {
		return true
	}
	return actor.InstitutionUII == "" || l.HEIUII == actor.InstitutionUII
}

// authorizeModify applies the field-update rule: admins anywhere,
// coordinators within their region, the creating HEI only while the report
// is back in its hands.
func (s *Service) authorizeModify(actor Actor, l *liquidation.Liquidation) error {
	switch actor.Role {
	case identity.RoleAdmin, identity.RoleSuperAdmin:
		return nil
	case identity.RoleRegionalCoordinator:
		if actor.Region != "" && l.Region != "" && actor.Region != l.Region {
			return shared.NewPermissionDeniedError("Regional Coordinators can only modify reports in their own region")
		}
		return nil
	case identity.RoleHEI:
		if !l.IsCreator(actor.ID) {
			return shared.NewPermissionDeniedError("Only the creator of the record can modify it")
		}
		if !l.Status.IsEditableByHEI() {
			return shared.NewInvalidStateError(fmt.Sprintf("Cannot modify a liquidation in %s status", l.Status.DisplayName()))
		}
		return nil
	default:
		return shared.NewPermissionDeniedError("Your role cannot modify liquidation reports")
	}
}

func (s *Service) saveAndPublish(ctx context.Context, l *liquidation.Liquidation, expectedVersion int) error {
	if err := l.CheckFinancials(); err != nil {
		return err
	}
	if err := s.repo.SaveWithLock(ctx, l, expectedVersion); err != nil {
		return err
	}
	s.publish(ctx, l)
	return nil
}

func (s *Service) publish(ctx context.Context, l *liquidation.Liquidation) {
	if s.publisher == nil {
		return
	}
	events := l.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
	l.ClearDomainEvents()
}
