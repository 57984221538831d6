package liquidation

import (
	"strings"
	"time"

	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// LocationChange is one append-only entry in a transmittal's location history.
type LocationChange struct {
	shared.BaseEntity
	TransmittalID uuid.UUID `json:"transmittal_id" gorm:"type:uuid;not null;index"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value" gorm:"not null"`
	Note          string    `json:"note"`
	ChangedAt     time.Time `json:"changed_at" gorm:"not null"`
}

// Transmittal records the physical hand-off of documents for one
// endorsement cycle. Each re-endorsement creates a fresh transmittal with
// its own reference number.
type Transmittal struct {
	shared.BaseEntity
	LiquidationID    uuid.UUID        `json:"liquidation_id" gorm:"type:uuid;not null;index"`
	ReferenceNo      string           `json:"reference_no" gorm:"not null"`
	ReceiverName     string           `json:"receiver_name"`
	DocumentLocation string           `json:"document_location"`
	NumberOfFolders  int              `json:"number_of_folders"`
	FolderLocationNo string           `json:"folder_location_no"`
	GroupTransmittal bool             `json:"group_transmittal"`
	LocationHistory  []LocationChange `json:"location_history" gorm:"foreignKey:TransmittalID"`
}

// NewTransmittal validates and builds a transmittal for an endorsement.
func NewTransmittal(liquidationID uuid.UUID, referenceNo, receiverName, documentLocation string, numberOfFolders int, folderLocationNo string, groupTransmittal bool) (*Transmittal, error) {
	referenceNo = strings.TrimSpace(referenceNo)
	if referenceNo == "" {
		return nil, shared.NewValidationError("Transmittal reference number is required")
	}
	if len(referenceNo) > 255 {
		return nil, shared.NewValidationError("Transmittal reference number cannot exceed 255 characters")
	}
	if numberOfFolders < 0 {
		return nil, shared.NewValidationError("Number of folders cannot be negative")
	}

	return &Transmittal{
		BaseEntity:       shared.NewBaseEntity(),
		LiquidationID:    liquidationID,
		ReferenceNo:      referenceNo,
		ReceiverName:     strings.TrimSpace(receiverName),
		DocumentLocation: strings.TrimSpace(documentLocation),
		NumberOfFolders:  numberOfFolders,
		FolderLocationNo: strings.TrimSpace(folderLocationNo),
		GroupTransmittal: groupTransmittal,
	}, nil
}

// ChangeLocation moves the documents to a new location, appending the
// change to the history. The history is never rewritten.
func (t *Transmittal) ChangeLocation(newLocation, note string) error {
	newLocation = strings.TrimSpace(newLocation)
	if newLocation == "" {
		return shared.NewValidationError("Document location cannot be empty")
	}
	if len(newLocation) > 255 {
		return shared.NewValidationError("Document location cannot exceed 255 characters")
	}

	change := LocationChange{
		BaseEntity:    shared.NewBaseEntity(),
		TransmittalID: t.ID,
		PreviousValue: t.DocumentLocation,
		NewValue:      newLocation,
		Note:          strings.TrimSpace(note),
		ChangedAt:     time.Now(),
	}

	t.LocationHistory = append(t.LocationHistory, change)
	t.DocumentLocation = newLocation
	t.Touch()

	return nil
}
