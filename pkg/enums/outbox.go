package enums

import "fmt"

// OutboxEventType names the domain events written through the outbox.
type OutboxEventType string

const (
	EventVoteCast            OutboxEventType = "trip.vote_cast"
	EventProposalCreated     OutboxEventType = "trip.proposal_created"
	EventMembershipChanged   OutboxEventType = "trip.membership_changed"
	EventDeadlineChanged     OutboxEventType = "trip.deadline_changed"
	EventDestinationLocked   OutboxEventType = "trip.destination_locked"
	EventItineraryItemLocked OutboxEventType = "trip.itinerary_item_locked"
	EventPhaseChanged        OutboxEventType = "trip.phase_changed"
	EventTripReady           OutboxEventType = "trip.ready"
	EventExpenseCreated      OutboxEventType = "trip.expense_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventVoteCast,
	EventProposalCreated,
	EventMembershipChanged,
	EventDeadlineChanged,
	EventDestinationLocked,
	EventItineraryItemLocked,
	EventPhaseChanged,
	EventTripReady,
	EventExpenseCreated,
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

// TriggersResolution reports whether the event should cause the voting
// monitor to re-evaluate the trip. Lock/phase events are informational; the
// monitor's idempotency guard makes re-evaluating them harmless, but skipping
// them avoids pointless passes.
func (o OutboxEventType) TriggersResolution() bool {
	switch o {
	case EventVoteCast, EventProposalCreated, EventMembershipChanged, EventDeadlineChanged:
		return true
	default:
		return false
	}
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

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateTrip     OutboxAggregateType = "trip"
	AggregateProposal OutboxAggregateType = "proposal"
	AggregateExpense  OutboxAggregateType = "expense"
)

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	switch o {
	case AggregateTrip, AggregateProposal, AggregateExpense:
		return true
	default:
		return false
	}
}
