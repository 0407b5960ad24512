package voting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheRealPress1/roamiii-backend/pkg/db/models"
	"github.com/TheRealPress1/roamiii-backend/pkg/enums"
)

func kindVote(userID uuid.UUID, kind enums.VoteKind) models.Vote {
	return models.Vote{UserID: userID, Kind: &kind}
}

func scoreVote(userID uuid.UUID, score int16) models.Vote {
	return models.Vote{UserID: userID, Score: &score}
}

func TestTemperature(t *testing.T) {
	userID := uuid.New()

	assert.Equal(t, float64(100), Temperature(kindVote(userID, enums.VoteKindIn)))
	assert.Equal(t, float64(50), Temperature(kindVote(userID, enums.VoteKindMaybe)))
	assert.Equal(t, float64(0), Temperature(kindVote(userID, enums.VoteKindOut)))

	assert.Equal(t, float64(73), Temperature(scoreVote(userID, 73)))

	// A score overrides the categorical kind.
	out := enums.VoteKindOut
	ninety := int16(90)
	assert.Equal(t, float64(90), Temperature(models.Vote{UserID: userID, Kind: &out, Score: &ninety}))

	assert.Equal(t, float64(0), Temperature(models.Vote{UserID: userID}))
}

func TestAverageTemperature(t *testing.T) {
	assert.Equal(t, float64(0), AverageTemperature(nil))

	votes := []models.Vote{
		kindVote(uuid.New(), enums.VoteKindIn),
		kindVote(uuid.New(), enums.VoteKindIn),
		kindVote(uuid.New(), enums.VoteKindMaybe),
	}
	assert.InDelta(t, 83.33, AverageTemperature(votes), 0.01)
}

func TestAllVoted(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	proposal := models.Proposal{Votes: []models.Vote{kindVote(alice, enums.VoteKindIn)}}

	t.Run("zero proposals is never all voted", func(t *testing.T) {
		assert.False(t, AllVoted(nil, nil))
		assert.False(t, AllVoted(nil, []uuid.UUID{alice}))
	})

	t.Run("missing voter", func(t *testing.T) {
		assert.False(t, AllVoted([]models.Proposal{proposal}, []uuid.UUID{alice, bob}))
	})

	t.Run("voting on any proposal counts", func(t *testing.T) {
		other := models.Proposal{Votes: []models.Vote{kindVote(bob, enums.VoteKindOut)}}
		assert.True(t, AllVoted([]models.Proposal{proposal, other}, []uuid.UUID{alice, bob}))
	})
}

func TestDeadlinePassed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, DeadlinePassed(nil, now))
	assert.True(t, DeadlinePassed(&past, now))
	assert.False(t, DeadlinePassed(&future, now))
	// At the boundary instant the deadline counts as passed.
	assert.True(t, DeadlinePassed(&now, now))
}

func TestPickWinner(t *testing.T) {
	alice, bob, cara := uuid.New(), uuid.New(), uuid.New()

	t.Run("highest average wins", func(t *testing.T) {
		p1 := models.Proposal{
			Title: "Lisbon",
			Votes: []models.Vote{
				kindVote(alice, enums.VoteKindIn),
				kindVote(bob, enums.VoteKindIn),
				kindVote(cara, enums.VoteKindMaybe),
			},
		}
		p2 := models.Proposal{
			Title: "Oslo",
			Votes: []models.Vote{
				kindVote(alice, enums.VoteKindOut),
				kindVote(bob, enums.VoteKindOut),
				kindVote(cara, enums.VoteKindIn),
			},
		}

		winner, avg := PickWinner([]models.Proposal{p1, p2})
		require.NotNil(t, winner)
		assert.Equal(t, "Lisbon", winner.Title)
		assert.InDelta(t, 83.33, avg, 0.01)
	})

	t.Run("tie goes to earliest created", func(t *testing.T) {
		older := models.Proposal{Title: "older", Votes: []models.Vote{scoreVote(alice, 50)}}
		newer := models.Proposal{Title: "newer", Votes: []models.Vote{scoreVote(bob, 50)}}

		// Input ordering is oldest first; a later equal average must not win.
		winner, _ := PickWinner([]models.Proposal{older, newer})
		require.NotNil(t, winner)
		assert.Equal(t, "older", winner.Title)
	})

	t.Run("zero-vote proposal still a candidate", func(t *testing.T) {
		unvoted := models.Proposal{Title: "unvoted"}
		winner, avg := PickWinner([]models.Proposal{unvoted})
		require.NotNil(t, winner)
		assert.Equal(t, "unvoted", winner.Title)
		assert.Equal(t, float64(0), avg)
	})

	t.Run("no proposals", func(t *testing.T) {
		winner, _ := PickWinner(nil)
		assert.Nil(t, winner)
	})
}

func TestEvaluate(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	votedProposal := func() models.Proposal {
		return models.Proposal{Votes: []models.Vote{
			kindVote(alice, enums.VoteKindIn),
			kindVote(bob, enums.VoteKindMaybe),
		}}
	}

	t.Run("auto lock when all voted and deadline passed", func(t *testing.T) {
		outcome := Evaluate(Snapshot{
			Phase:           enums.TripPhaseDestination,
			Proposals:       []models.Proposal{votedProposal()},
			ActiveMemberIDs: []uuid.UUID{alice, bob},
			Deadline:        &past,
			Now:             now,
		})
		assert.True(t, outcome.AllVoted)
		assert.True(t, outcome.DeadlinePassed)
		assert.True(t, outcome.ShouldAutoLock)
		require.NotNil(t, outcome.Winner)
	})

	t.Run("all voted but deadline pending", func(t *testing.T) {
		outcome := Evaluate(Snapshot{
			Phase:           enums.TripPhaseDestination,
			Proposals:       []models.Proposal{votedProposal()},
			ActiveMemberIDs: []uuid.UUID{alice, bob},
			Deadline:        &future,
			Now:             now,
		})
		assert.True(t, outcome.AllVoted)
		assert.False(t, outcome.ShouldAutoLock)
	})

	t.Run("deadline passed but a member has not voted", func(t *testing.T) {
		outcome := Evaluate(Snapshot{
			Phase:           enums.TripPhaseDestination,
			Proposals:       []models.Proposal{{Votes: []models.Vote{kindVote(alice, enums.VoteKindIn)}}},
			ActiveMemberIDs: []uuid.UUID{alice, bob},
			Deadline:        &past,
			Now:             now,
		})
		assert.False(t, outcome.AllVoted)
		assert.True(t, outcome.DeadlinePassed)
		assert.False(t, outcome.ShouldAutoLock)
	})

	t.Run("no deadline never auto locks", func(t *testing.T) {
		outcome := Evaluate(Snapshot{
			Phase:           enums.TripPhaseDestination,
			Proposals:       []models.Proposal{votedProposal()},
			ActiveMemberIDs: []uuid.UUID{alice, bob},
			Now:             now,
		})
		assert.True(t, outcome.AllVoted)
		assert.False(t, outcome.DeadlinePassed)
		assert.False(t, outcome.ShouldAutoLock)
	})

	t.Run("zero proposals cannot auto lock even with zero members", func(t *testing.T) {
		outcome := Evaluate(Snapshot{
			Phase:    enums.TripPhaseDestination,
			Deadline: &past,
			Now:      now,
		})
		assert.False(t, outcome.AllVoted)
		assert.False(t, outcome.ShouldAutoLock)
	})

	t.Run("destination already locked skips", func(t *testing.T) {
		lockedID := uuid.New()
		outcome := Evaluate(Snapshot{
			Phase:               enums.TripPhaseDestination,
			LockedDestinationID: &lockedID,
			Proposals:           []models.Proposal{votedProposal()},
			ActiveMemberIDs:     []uuid.UUID{alice, bob},
			Deadline:            &past,
			Now:                 now,
		})
		assert.True(t, outcome.Skipped)
		assert.False(t, outcome.ShouldAutoLock)
	})

	t.Run("phases past itinerary skip", func(t *testing.T) {
		for _, phase := range []enums.TripPhase{
			enums.TripPhaseTransportation,
			enums.TripPhaseFinalize,
			enums.TripPhaseReady,
		} {
			outcome := Evaluate(Snapshot{Phase: phase, Deadline: &past, Now: now})
			assert.True(t, outcome.Skipped, "phase %s", phase)
		}
	})

	t.Run("included itinerary winner skips", func(t *testing.T) {
		proposal := votedProposal()
		proposal.Included = true
		outcome := Evaluate(Snapshot{
			Phase:           enums.TripPhaseItinerary,
			Proposals:       []models.Proposal{proposal},
			ActiveMemberIDs: []uuid.UUID{alice, bob},
			Deadline:        &past,
			Now:             now,
		})
		assert.True(t, outcome.Skipped)
		assert.False(t, outcome.ShouldAutoLock)
	})
}
