package enums

import "fmt"

// TripPhase tracks the stage of a trip's planning lifecycle.
type TripPhase string

const (
	TripPhaseDestination    TripPhase = "destination"
	TripPhaseItinerary      TripPhase = "itinerary"
	TripPhaseTransportation TripPhase = "transportation"
	TripPhaseFinalize       TripPhase = "finalize"
	TripPhaseReady          TripPhase = "ready"
)

// phaseOrder is the linear planning progression. Forward transitions move one
// index at a time; reopen moves one index back.
var phaseOrder = []TripPhase{
	TripPhaseDestination,
	TripPhaseItinerary,
	TripPhaseTransportation,
	TripPhaseFinalize,
	TripPhaseReady,
}

// String implements fmt.Stringer.
func (p TripPhase) String() string {
	return string(p)
}

// IsValid reports whether the value is a known TripPhase.
func (p TripPhase) IsValid() bool {
	for _, candidate := range phaseOrder {
		if candidate == p {
			return true
		}
	}
	return false
}

// Index returns the position of the phase in the planning progression, or -1.
func (p TripPhase) Index() int {
	for i, candidate := range phaseOrder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p, or false when p is terminal.
func (p TripPhase) Next() (TripPhase, bool) {
	i := p.Index()
	if i < 0 || i+1 >= len(phaseOrder) {
		return "", false
	}
	return phaseOrder[i+1], true
}

// Previous returns the phase that precedes p, or false when p is initial.
func (p TripPhase) Previous() (TripPhase, bool) {
	i := p.Index()
	if i <= 0 {
		return "", false
	}
	return phaseOrder[i-1], true
}

// HasLockedDestination reports whether a trip in this phase carries a locked
// destination proposal.
func (p TripPhase) HasLockedDestination() bool {
	return p.Index() >= TripPhaseItinerary.Index()
}

// ParseTripPhase converts raw input into a TripPhase.
func ParseTripPhase(value string) (TripPhase, error) {
	for _, candidate := range phaseOrder {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid trip phase %q", value)
}
