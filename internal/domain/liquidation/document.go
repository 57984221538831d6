package liquidation

import (
	"strings"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxDocumentSize is the upload ceiling for supporting documents.
const MaxDocumentSize = 20 * 1024 * 1024

// Document is a supporting file attached to a liquidation. Either ObjectKey
// (object storage) or ExternalURL is set, never both.
type Document struct {
	shared.BaseEntity
	LiquidationID uuid.UUID `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	FileName      string    `json:"file_name" gorm:"not null"`
	ObjectKey     string    `json:"object_key"`
	ExternalURL   string    `json:"external_url"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	UploadedBy    uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`
}

// NewStoredDocument builds a document backed by object storage.
func NewStoredDocument(liquidationID uuid.UUID, fileName, objectKey, contentType string, size int64, uploadedBy uuid.UUID) (*Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, shared.NewValidationError("Document file name is required")
	}
	if objectKey == "" {
		return nil, shared.NewValidationError("Document object key is required")
	}
	if size <= 0 {
		return nil, shared.NewValidationError("Document size must be positive")
	}
	if size > MaxDocumentSize {
		return nil, shared.NewDomainError(shared.ErrCodeFileFormat, "Document cannot exceed 20MB")
	}

	return &Document{
		BaseEntity:    shared.NewBaseEntity(),
		LiquidationID: liquidationID,
		FileName:      fileName,
		ObjectKey:     objectKey,
		ContentType:   contentType,
		Size:          size,
		UploadedBy:    uploadedBy,
	}, nil
}

// NewLinkedDocument builds a document referencing an external URL.
func NewLinkedDocument(liquidationID uuid.UUID, fileName, externalURL string, uploadedBy uuid.UUID) (*Document, error) {
	fileName = strings.TrimSpace(fileName)
	externalURL = strings.TrimSpace(externalURL)
	if fileName == "" {
		return nil, shared.NewValidationError("Document file name is required")
	}
	if externalURL == "" {
		return nil, shared.NewValidationError("Document URL is required")
	}
	if len(externalURL) > 2000 {
		return nil, shared.NewValidationError("Document URL cannot exceed 2000 characters")
	}
	if !strings.HasPrefix(externalURL, "http://") && !strings.HasPrefix(externalURL, "https://") {
		return nil, shared.NewValidationError("Document URL must be http or https")
	}

	return &Document{
		BaseEntity:    shared.NewBaseEntity(),
		LiquidationID: liquidationID,
		FileName:      fileName,
		ExternalURL:   externalURL,
		UploadedBy:    uploadedBy,
	}, nil
}
