package voting

import (
	"time"

	"github.com/google/uuid"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

// Snapshot is an immutable view of everything the resolution decision needs.
// The service assembles it from storage; Evaluate never touches I/O.
type Snapshot struct {
	Phase               enums.TripPhase
	LockedDestinationID *uuid.UUID
	// Proposals holds only the proposals for the active voting category,
	// ordered oldest-created first so ties resolve to the earliest proposal.
	Proposals       []models.Proposal
	ActiveMemberIDs []uuid.UUID
	Deadline        *time.Time
	Now             time.Time
}

// Outcome is the resolution verdict. ShouldAutoLock is true only when every
// active member has voted, the deadline has passed, and a winner exists.
type Outcome struct {
	Skipped        bool
	AllVoted       bool
	DeadlinePassed bool
	ShouldAutoLock bool
	Winner         *models.Proposal
	WinnerAverage  float64
}

// Temperature derives the canonical 0..100 enthusiasm value for a vote.
// An explicit score overrides the categorical kind.
func Temperature(vote models.Vote) float64 {
	if vote.Score != nil {
		return float64(*vote.Score)
	}
	if vote.Kind != nil {
		return float64(vote.Kind.Temperature())
	}
	return 0
}

// AverageTemperature is the mean temperature across a proposal's votes. A
// proposal with no votes averages 0; it stays a candidate rather than being
// excluded.
func AverageTemperature(votes []models.Vote) float64 {
	if len(votes) == 0 {
		return 0
	}
	var sum float64
	for _, vote := range votes {
		sum += Temperature(vote)
	}
	return sum / float64(len(votes))
}

// AllVoted reports whether every active member has cast at least one vote on
// at least one of the proposals. Zero proposals is never "all voted", even
// with zero members, so an empty category cannot auto-lock.
func AllVoted(proposals []models.Proposal, activeMemberIDs []uuid.UUID) bool {
	if len(proposals) == 0 {
		return false
	}
	voters := make(map[uuid.UUID]struct{})
	for _, proposal := range proposals {
		for _, vote := range proposal.Votes {
			voters[vote.UserID] = struct{}{}
		}
	}
	for _, memberID := range activeMemberIDs {
		if _, ok := voters[memberID]; !ok {
			return false
		}
	}
	return true
}

// DeadlinePassed reports whether a deadline is set and now is at or after it.
// No deadline means the category only resolves through a manual lock.
func DeadlinePassed(deadline *time.Time, now time.Time) bool {
	if deadline == nil {
		return false
	}
	return !now.Before(*deadline)
}

// PickWinner returns the proposal with the highest average temperature. Ties
// go to the earliest-created proposal, which is first in the input ordering.
func PickWinner(proposals []models.Proposal) (*models.Proposal, float64) {
	var winner *models.Proposal
	var best float64
	for i := range proposals {
		avg := AverageTemperature(proposals[i].Votes)
		if winner == nil || avg > best {
			winner = &proposals[i]
			best = avg
		}
	}
	return winner, best
}

// Evaluate runs one full resolution pass over the snapshot.
//
// The guard comes first: a destination phase with a lock already applied, or
// a phase past itinerary, skips evaluation entirely. That makes re-running
// the pass on duplicate or concurrent triggers safe.
func Evaluate(snapshot Snapshot) Outcome {
	switch snapshot.Phase {
	case enums.TripPhaseDestination:
		if snapshot.LockedDestinationID != nil {
			return Outcome{Skipped: true}
		}
	case enums.TripPhaseItinerary:
		// Itinerary winners accumulate; the already-applied check happens
		// against the winner's included flag below.
	default:
		return Outcome{Skipped: true}
	}

	outcome := Outcome{
		AllVoted:       AllVoted(snapshot.Proposals, snapshot.ActiveMemberIDs),
		DeadlinePassed: DeadlinePassed(snapshot.Deadline, snapshot.Now),
	}

	winner, avg := PickWinner(snapshot.Proposals)
	outcome.Winner = winner
	outcome.WinnerAverage = avg

	outcome.ShouldAutoLock = outcome.AllVoted && outcome.DeadlinePassed && winner != nil

	if outcome.ShouldAutoLock && snapshot.Phase == enums.TripPhaseItinerary && winner.Included {
		// The winning itinerary item is already part of the plan; nothing
		// left to apply.
		outcome.Skipped = true
		outcome.ShouldAutoLock = false
	}

	return outcome
}
