package liquidation

import (
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the liquidation domain
const (
	EventTypeLiquidationCreated              = "liquidation.created"
	EventTypeLiquidationSubmitted            = "liquidation.submitted"
	EventTypeLiquidationEndorsedToAccounting = "liquidation.endorsed_to_accounting"
	EventTypeLiquidationEndorsedToCOA        = "liquidation.endorsed_to_coa"
	EventTypeLiquidationReturned             = "liquidation.returned"
)

// LiquidationCreatedEvent is raised when a new report enters the system.
type LiquidationCreatedEvent struct {
	shared.BaseDomainEvent
	DVControlNo string `json:"dv_control_no"`
	HEIUII      string `json:"hei_uii"`
}

func NewLiquidationCreatedEvent(l *Liquidation) *LiquidationCreatedEvent {
	return &LiquidationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLiquidationCreated, l.ID),
		DVControlNo:     l.DVControlNo,
		HEIUII:          l.HEIUII,
	}
}

// LiquidationSubmittedEvent is raised on submission or resubmission.
type LiquidationSubmittedEvent struct {
	shared.BaseDomainEvent
	DVControlNo  string    `json:"dv_control_no"`
	ActorID      uuid.UUID `json:"actor_id"`
	Resubmission bool      `json:"resubmission"`
}

func NewLiquidationSubmittedEvent(l *Liquidation, actorID uuid.UUID, resubmission bool) *LiquidationSubmittedEvent {
	return &LiquidationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLiquidationSubmitted, l.ID),
		DVControlNo:     l.DVControlNo,
		ActorID:         actorID,
		Resubmission:    resubmission,
	}
}

// LiquidationEndorsedToAccountingEvent is raised when the RC forwards a
// report to accounting.
type LiquidationEndorsedToAccountingEvent struct {
	shared.BaseDomainEvent
	DVControlNo   string    `json:"dv_control_no"`
	ActorID       uuid.UUID `json:"actor_id"`
	TransmittalNo string    `json:"transmittal_no"`
}

func NewLiquidationEndorsedToAccountingEvent(l *Liquidation, actorID uuid.UUID, transmittalNo string) *LiquidationEndorsedToAccountingEvent {
	return &LiquidationEndorsedToAccountingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLiquidationEndorsedToAccounting, l.ID),
		DVControlNo:     l.DVControlNo,
		ActorID:         actorID,
		TransmittalNo:   transmittalNo,
	}
}

// LiquidationEndorsedToCOAEvent is raised on the terminal transition.
type LiquidationEndorsedToCOAEvent struct {
	shared.BaseDomainEvent
	DVControlNo string    `json:"dv_control_no"`
	ActorID     uuid.UUID `json:"actor_id"`
}

func NewLiquidationEndorsedToCOAEvent(l *Liquidation, actorID uuid.UUID) *LiquidationEndorsedToCOAEvent {
	return &LiquidationEndorsedToCOAEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLiquidationEndorsedToCOA, l.ID),
		DVControlNo:     l.DVControlNo,
		ActorID:         actorID,
	}
}

// LiquidationReturnedEvent is raised when a report is sent back for rework.
type LiquidationReturnedEvent struct {
	shared.BaseDomainEvent
	DVControlNo string    `json:"dv_control_no"`
	ActorID     uuid.UUID `json:"actor_id"`
	ReturnedTo  Status    `json:"returned_to"`
}

func NewLiquidationReturnedEvent(l *Liquidation, actorID uuid.UUID, returnedTo Status) *LiquidationReturnedEvent {
	return &LiquidationReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLiquidationReturned, l.ID),
		DVControlNo:     l.DVControlNo,
		ActorID:         actorID,
		ReturnedTo:      returnedTo,
	}
}
