package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	GetEventID() uuid.UUID
	GetEventType() string
	GetAggregateID() uuid.UUID
	GetOccurredAt() time.Time
}

// EventPublisher publishes domain events after a successful save.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// BaseDomainEvent provides common event fields.
type BaseDomainEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewBaseDomainEvent creates a new base domain event.
func NewBaseDomainEvent(eventType string, aggregateID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		EventID:     uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		OccurredAt:  time.Now(),
	}
}

func (e BaseDomainEvent) GetEventID() uuid.UUID {
	return e.EventID
}

func (e BaseDomainEvent) GetEventType() string {
	return e.EventType
}

func (e BaseDomainEvent) GetAggregateID() uuid.UUID {
	return e.AggregateID
}

func (e BaseDomainEvent) GetOccurredAt() time.Time {
	return e.OccurredAt
}
