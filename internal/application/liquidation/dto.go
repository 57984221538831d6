package liquidation

import (
	"time"

	"github.com/chedfms/liqtrack/internal/domain/liquidation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Requests

type CreateLiquidationRequest struct {
	DVControlNo      string          `json:"dv_control_no" binding:"required,max=100"`
	HEIUII           string          `json:"hei_uii" binding:"required,max=50"`
	HEIName          string          `json:"hei_name" binding:"required,max=255"`
	Region           string          `json:"region" binding:"max=100"`
	ProgramName      string          `json:"program_name" binding:"max=255"`
	AcademicYear     string          `json:"academic_year" binding:"omitempty,academic_year,max=20"`
	Semester         string          `json:"semester" binding:"max=20"`
	BatchNumber      string          `json:"batch_number" binding:"max=50"`
	AmountReceived   decimal.Decimal `json:"amount_received" binding:"required"`
	NumberOfGrantees int             `json:"number_of_grantees" binding:"min=0"`
}

type UpdateLiquidationRequest struct {
	HEIName          string          `json:"hei_name" binding:"required,max=255"`
	Region           string          `json:"region" binding:"max=100"`
	ProgramName      string          `json:"program_name" binding:"max=255"`
	AcademicYear     string          `json:"academic_year" binding:"omitempty,academic_year,max=20"`
	Semester         string          `json:"semester" binding:"max=20"`
	BatchNumber      string          `json:"batch_number" binding:"max=50"`
	AmountReceived   decimal.Decimal `json:"amount_received" binding:"required"`
	NumberOfGrantees int             `json:"number_of_grantees" binding:"min=0"`
	DocumentStatus   string          `json:"document_status" binding:"omitempty,oneof=NONE PARTIAL COMPLETE"`
	Version          int             `json:"version" binding:"required,min=1"`
}

type SubmitRequest struct {
	Remarks string `json:"remarks" binding:"max=2000"`
	Version int    `json:"version" binding:"required,min=1"`
}

type EndorseToAccountingRequest struct {
	Remarks          string `json:"remarks" binding:"max=2000"`
	ReferenceNo      string `json:"reference_no" binding:"max=255"`
	ReceiverName     string `json:"receiver_name" binding:"max=255"`
	DocumentLocation string `json:"document_location" binding:"max=255"`
	NumberOfFolders  int    `json:"number_of_folders" binding:"min=0"`
	FolderLocationNo string `json:"folder_location_no" binding:"max=100"`
	GroupTransmittal bool   `json:"group_transmittal"`
	Version          int    `json:"version" binding:"required,min=1"`
}

type ReturnRequest struct {
	Remarks   string   `json:"remarks" binding:"max=2000"`
	Checklist []string `json:"checklist" binding:"max=50,dive,max=255"`
	Version   int      `json:"version" binding:"required,min=1"`
}

type EndorseToCOARequest struct {
	Remarks string `json:"remarks" binding:"max=2000"`
	Version int    `json:"version" binding:"required,min=1"`
}

type AddBeneficiaryRequest struct {
	LastName         string          `json:"last_name" binding:"required,max=200"`
	FirstName        string          `json:"first_name" binding:"required,max=200"`
	MiddleName       string          `json:"middle_name" binding:"max=200"`
	StudentNumber    string          `json:"student_number" binding:"max=100"`
	AwardNumber      string          `json:"award_number" binding:"max=100"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	DisbursementDate *time.Time      `json:"disbursement_date"`
}

type AddTrackingEntryRequest struct {
	Label     string     `json:"label" binding:"required,max=255"`
	Reference string     `json:"reference" binding:"max=255"`
	EntryDate *time.Time `json:"entry_date"`
	Note      string     `json:"note" binding:"max=2000"`
}

type AddRunningDataRequest struct {
	EntryDate          time.Time       `json:"entry_date" binding:"required"`
	AmountCompleteDocs decimal.Decimal `json:"amount_complete_docs"`
	AmountRefunded     decimal.Decimal `json:"amount_refunded"`
	GranteesLiquidated int             `json:"grantees_liquidated" binding:"min=0"`
	Note               string          `json:"note" binding:"max=2000"`
}

type ChangeLocationRequest struct {
	Location string `json:"location" binding:"required,max=255"`
	Note     string `json:"note" binding:"max=2000"`
}

type LinkDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ExternalURL string `json:"external_url" binding:"required,url,max=2000"`
}

type ListFilter struct {
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir"`
	Search       string `form:"search"`
	Status       string `form:"status"`
	HEIUII       string `form:"hei_uii"`
	Region       string `form:"region"`
	AcademicYear string `form:"academic_year"`
}

// Responses

type BeneficiaryResponse struct {
	ID               uuid.UUID       `json:"id"`
	LastName         string          `json:"last_name"`
	FirstName        string          `json:"first_name"`
	MiddleName       string          `json:"middle_name,omitempty"`
	StudentNumber    string          `json:"student_number,omitempty"`
	AwardNumber      string          `json:"award_number,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	DisbursementDate *time.Time      `json:"disbursement_date,omitempty"`
}

type ReviewResponse struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Remarks      string    `json:"remarks,omitempty"`
	Checklist    []string  `json:"checklist,omitempty"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

type LocationChangeResponse struct {
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	Note          string    `json:"note,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

type TransmittalResponse struct {
	ID               uuid.UUID                `json:"id"`
	ReferenceNo      string                   `json:"reference_no"`
	ReceiverName     string                   `json:"receiver_name,omitempty"`
	DocumentLocation string                   `json:"document_location,omitempty"`
	NumberOfFolders  int                      `json:"number_of_folders"`
	FolderLocationNo string                   `json:"folder_location_no,omitempty"`
	GroupTransmittal bool                     `json:"group_transmittal"`
	LocationHistory  []LocationChangeResponse `json:"location_history,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
}

type TrackingEntryResponse struct {
	ID        uuid.UUID  `json:"id"`
	Label     string     `json:"label"`
	Reference string     `json:"reference,omitempty"`
	EntryDate *time.Time `json:"entry_date,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RunningDataResponse struct {
	ID                 uuid.UUID       `json:"id"`
	EntryDate          time.Time       `json:"entry_date"`
	AmountCompleteDocs decimal.Decimal `json:"amount_complete_docs"`
	AmountRefunded     decimal.Decimal `json:"amount_refunded"`
	GranteesLiquidated int             `json:"grantees_liquidated"`
	Note               string          `json:"note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type DocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ExternalURL string    `json:"external_url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type LiquidationResponse struct {
	ID               uuid.UUID             `json:"id"`
	DVControlNo      string                `json:"dv_control_no"`
	HEIUII           string                `json:"hei_uii"`
	HEIName          string                `json:"hei_name"`
	Region           string                `json:"region,omitempty"`
	ProgramName      string                `json:"program_name,omitempty"`
	AcademicYear     string                `json:"academic_year,omitempty"`
	Semester         string                `json:"semester,omitempty"`
	BatchNumber      string                `json:"batch_number,omitempty"`
	AmountReceived   decimal.Decimal       `json:"amount_received"`
	AmountDisbursed  decimal.Decimal       `json:"amount_disbursed"`
	AmountRefunded   decimal.Decimal       `json:"amount_refunded"`
	NumberOfGrantees int                   `json:"number_of_grantees"`
	DocumentStatus   string                `json:"document_status"`
	Status           string                `json:"status"`
	StatusDisplay    string                `json:"status_display"`
	SubmittedAt      *time.Time            `json:"submitted_at,omitempty"`
	EndorsedAt       *time.Time            `json:"endorsed_at,omitempty"`
	ReturnedAt       *time.Time            `json:"returned_at,omitempty"`
	EndorsedToCOAAt  *time.Time            `json:"endorsed_to_coa_at,omitempty"`
	Version          int                   `json:"version"`
	Beneficiaries    []BeneficiaryResponse `json:"beneficiaries,omitempty"`
	Transmittals     []TransmittalResponse `json:"transmittals,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

type LiquidationListItem struct {
	ID               uuid.UUID       `json:"id"`
	DVControlNo      string          `json:"dv_control_no"`
	HEIUII           string          `json:"hei_uii"`
	HEIName          string          `json:"hei_name"`
	Region           string          `json:"region,omitempty"`
	AcademicYear     string          `json:"academic_year,omitempty"`
	AmountReceived   decimal.Decimal `json:"amount_received"`
	AmountDisbursed  decimal.Decimal `json:"amount_disbursed"`
	AmountRefunded   decimal.Decimal `json:"amount_refunded"`
	NumberOfGrantees int             `json:"number_of_grantees"`
	Status           string          `json:"status"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// Converters

func ToBeneficiaryResponse(b *liquidation.Beneficiary) BeneficiaryResponse {
	return BeneficiaryResponse{
		ID:               b.ID,
		LastName:         b.LastName,
		FirstName:        b.FirstName,
		MiddleName:       b.MiddleName,
		StudentNumber:    b.StudentNumber,
		AwardNumber:      b.AwardNumber,
		Amount:           b.Amount,
		DisbursementDate: b.DisbursementDate,
	}
}

func ToReviewResponse(r *liquidation.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		Type:         string(r.Type),
		ReviewerID:   r.ReviewerID,
		ReviewerName: r.ReviewerName,
		Remarks:      r.Remarks,
		Checklist:    r.Checklist,
		ReviewedAt:   r.ReviewedAt,
	}
}

func ToTransmittalResponse(t *liquidation.Transmittal) TransmittalResponse {
	history := make([]LocationChangeResponse, 0, len(t.LocationHistory))
	for _, c := range t.LocationHistory {
		history = append(history, LocationChangeResponse{
			PreviousValue: c.PreviousValue,
			NewValue:      c.NewValue,
			Note:          c.Note,
			ChangedAt:     c.ChangedAt,
		})
	}
	return TransmittalResponse{
		ID:               t.ID,
		ReferenceNo:      t.ReferenceNo,
		ReceiverName:     t.ReceiverName,
		DocumentLocation: t.DocumentLocation,
		NumberOfFolders:  t.NumberOfFolders,
		FolderLocationNo: t.FolderLocationNo,
		GroupTransmittal: t.GroupTransmittal,
		LocationHistory:  history,
		CreatedAt:        t.CreatedAt,
	}
}

func ToTrackingEntryResponse(e *liquidation.TrackingEntry) TrackingEntryResponse {
	return TrackingEntryResponse{
		ID:        e.ID,
		Label:     e.Label,
		Reference: e.Reference,
		EntryDate: e.EntryDate,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

func ToRunningDataResponse(e *liquidation.RunningDataEntry) RunningDataResponse {
	return RunningDataResponse{
		ID:                 e.ID,
		EntryDate:          e.EntryDate,
		AmountCompleteDocs: e.AmountCompleteDocs,
		AmountRefunded:     e.AmountRefunded,
		GranteesLiquidated: e.GranteesLiquidated,
		Note:               e.Note,
		CreatedAt:          e.CreatedAt,
	}
}

func ToDocumentResponse(d *liquidation.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		FileName:    d.FileName,
		ExternalURL: d.ExternalURL,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

func ToLiquidationResponse(l *liquidation.Liquidation) LiquidationResponse {
	beneficiaries := make([]BeneficiaryResponse, 0, len(l.Beneficiaries))
	for i := range l.Beneficiaries {
		beneficiaries = append(beneficiaries, ToBeneficiaryResponse(&l.Beneficiaries[i]))
	}
	transmittals := make([]TransmittalResponse, 0, len(l.Transmittals))
	for i := range l.Transmittals {
		transmittals = append(transmittals, ToTransmittalResponse(&l.Transmittals[i]))
	}

	return LiquidationResponse{
		ID:               l.ID,
		DVControlNo:      l.DVControlNo,
		HEIUII:           l.HEIUII,
		HEIName:          l.HEIName,
		Region:           l.Region,
		ProgramName:      l.ProgramName,
		AcademicYear:     l.AcademicYear,
		Semester:         l.Semester,
		BatchNumber:      l.BatchNumber,
		AmountReceived:   l.AmountReceived,
		AmountDisbursed:  l.AmountDisbursed,
		AmountRefunded:   l.AmountRefunded,
		NumberOfGrantees: l.NumberOfGrantees,
		DocumentStatus:   string(l.DocumentStatus),
		Status:           string(l.Status),
		StatusDisplay:    l.Status.DisplayName(),
		SubmittedAt:      l.SubmittedAt,
		EndorsedAt:       l.EndorsedAt,
		ReturnedAt:       l.ReturnedAt,
		EndorsedToCOAAt:  l.EndorsedToCOAAt,
		Version:          l.Version,
		Beneficiaries:    beneficiaries,
		Transmittals:     transmittals,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func ToLiquidationListItem(l *liquidation.Liquidation) LiquidationListItem {
	return LiquidationListItem{
		ID:               l.ID,
		DVControlNo:      l.DVControlNo,
		HEIUII:           l.HEIUII,
		HEIName:          l.HEIName,
		Region:           l.Region,
		AcademicYear:     l.AcademicYear,
		AmountReceived:   l.AmountReceived,
		AmountDisbursed:  l.AmountDisbursed,
		AmountRefunded:   l.AmountRefunded,
		NumberOfGrantees: l.NumberOfGrantees,
		Status:           string(l.Status),
		UpdatedAt:        l.UpdatedAt,
	}
}
