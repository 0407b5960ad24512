package enums

import "testing"

func TestTripPhaseProgression(t *testing.T) {
	next, ok := TripPhaseDestination.Next()
	if !ok || next != TripPhaseItinerary {
		t.Fatalf("expected destination -> itinerary, got %s (%v)", next, ok)
	}

	if _, ok := TripPhaseReady.Next(); ok {
		t.Fatal("ready must be terminal")
	}

	prev, ok := TripPhaseItinerary.Previous()
	if !ok || prev != TripPhaseDestination {
		t.Fatalf("expected itinerary -> destination, got %s (%v)", prev, ok)
	}

	if _, ok := TripPhaseDestination.Previous(); ok {
		t.Fatal("destination has no previous phase")
	}
}

func TestTripPhaseHasLockedDestination(t *testing.T) {
	if TripPhaseDestination.HasLockedDestination() {
		t.Fatal("destination phase has no lock yet")
	}
	for _, phase := range []TripPhase{TripPhaseItinerary, TripPhaseTransportation, TripPhaseFinalize, TripPhaseReady} {
		if !phase.HasLockedDestination() {
			t.Fatalf("phase %s should carry a locked destination", phase)
		}
	}
}

func TestParseTripPhase(t *testing.T) {
	phase, err := ParseTripPhase("transportation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if phase != TripPhaseTransportation {
		t.Fatalf("got %s", phase)
	}

	if _, err := ParseTripPhase("Destination"); err == nil {
		t.Fatal("parse is case sensitive")
	}
	if _, err := ParseTripPhase(""); err == nil {
		t.Fatal("empty value must not parse")
	}
}

func TestVoteKindTemperature(t *testing.T) {
	cases := map[VoteKind]int{
		VoteKindIn:    100,
		VoteKindMaybe: 50,
		VoteKindOut:   0,
	}
	for kind, want := range cases {
		if got := kind.Temperature(); got != want {
			t.Fatalf("%s: got %d, want %d", kind, got, want)
		}
	}
}

func TestMemberRoleCanManageTrip(t *testing.T) {
	if !MemberRoleOwner.CanManageTrip() || !MemberRoleAdmin.CanManageTrip() {
		t.Fatal("owner and admin manage trips")
	}
	if MemberRoleMember.CanManageTrip() {
		t.Fatal("plain members do not manage trips")
	}
}

func TestOutboxEventTriggersResolution(t *testing.T) {
	triggering := []OutboxEventType{EventVoteCast, EventProposalCreated, EventMembershipChanged, EventDeadlineChanged}
	for _, event := range triggering {
		if !event.TriggersResolution() {
			t.Fatalf("%s should trigger resolution", event)
		}
	}

	informational := []OutboxEventType{EventDestinationLocked, EventPhaseChanged, EventTripReady, EventExpenseCreated}
	for _, event := range informational {
		if event.TriggersResolution() {
			t.Fatalf("%s should not trigger resolution", event)
		}
	}
}

func TestParseOutboxEventType(t *testing.T) {
	event, err := ParseOutboxEventType("trip.vote_cast")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event != EventVoteCast {
		t.Fatalf("got %s", event)
	}

	if _, err := ParseOutboxEventType("trip.unknown"); err == nil {
		t.Fatal("unknown event type must not parse")
	}
}
