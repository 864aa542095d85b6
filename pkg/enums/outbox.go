package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateReservation  OutboxAggregateType = "reservation"
	AggregateSubscription OutboxAggregateType = "subscription"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateReservation,
	AggregateSubscription,
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// OutboxEventType enumerates the domain events published to Pub/Sub.
type OutboxEventType string

const (
	EventReservationCreated   OutboxEventType = "reservation.created"
	EventReservationPaid      OutboxEventType = "reservation.paid"
	EventReservationCancelled OutboxEventType = "reservation.cancelled"
	EventSubscriptionActive   OutboxEventType = "subscription.activated"
	EventSubscriptionCanceled OutboxEventType = "subscription.cancelled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventReservationCreated,
	EventReservationPaid,
	EventReservationCancelled,
	EventSubscriptionActive,
	EventSubscriptionCanceled,
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
