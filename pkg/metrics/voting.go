package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// VotingMetrics tracks resolution runs and their outcomes.
type VotingMetrics struct {
	resolutions *prometheus.CounterVec
	autoLocks   *prometheus.CounterVec
	lostRaces   prometheus.Counter
}

// NewVotingMetrics registers the voting resolution metrics on the provided registerer.
func NewVotingMetrics(reg prometheus.Registerer) *VotingMetrics {
	if reg == nil {
		return &VotingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voting_resolutions_total",
		Help: "Voting resolution evaluations by trigger.",
	}, []string{"trigger"})
	autoLocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voting_auto_locks_total",
		Help: "Winners locked automatically, labelled by trip phase.",
	}, []string{"phase"})
	lostRaces := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voting_lost_races_total",
		Help: "Resolutions abandoned because a concurrent run locked first.",
	})
	reg.MustRegister(resolutions, autoLocks, lostRaces)
	return &VotingMetrics{
		resolutions: resolutions,
		autoLocks:   autoLocks,
		lostRaces:   lostRaces,
	}
}

// IncResolution counts one resolution run for the named trigger.
func (v *VotingMetrics) IncResolution(trigger string) {
	if v == nil || v.resolutions == nil {
		return
	}
	v.resolutions.WithLabelValues(normalizeLabel(trigger)).Inc()
}

// IncAutoLock counts one automatic lock in the named phase.
func (v *VotingMetrics) IncAutoLock(phase string) {
	if v == nil || v.autoLocks == nil {
		return
	}
	v.autoLocks.WithLabelValues(normalizeLabel(phase)).Inc()
}

// IncLostRace counts one resolution that lost a concurrent lock race.
func (v *VotingMetrics) IncLostRace() {
	if v == nil || v.lostRaces == nil {
		return
	}
	v.lostRaces.Inc()
}
