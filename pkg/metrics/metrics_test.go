package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue gathers the registry and returns the counter value for the
// metric with the given name and single label value.
func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelValue == "" && len(metric.GetLabel()) == 0 {
				return metric.GetCounter().GetValue()
			}
			for _, label := range metric.GetLabel() {
				if label.GetValue() == labelValue {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, labelValue)
	return 0
}

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == name {
			var count uint64
			for _, metric := range family.GetMetric() {
				count += metric.GetHistogram().GetSampleCount()
			}
			return count
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestVotingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVotingMetrics(reg)

	m.IncResolution("vote_cast")
	m.IncResolution("vote_cast")
	m.IncResolution("sweep")
	m.IncAutoLock("destination")
	m.IncLostRace()

	assert.Equal(t, float64(2), counterValue(t, reg, "voting_resolutions_total", "vote_cast"))
	assert.Equal(t, float64(1), counterValue(t, reg, "voting_resolutions_total", "sweep"))
	assert.Equal(t, float64(1), counterValue(t, reg, "voting_auto_locks_total", "destination"))
	assert.Equal(t, float64(1), counterValue(t, reg, "voting_lost_races_total", ""))
}

func TestVotingMetricsEmptyLabelNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVotingMetrics(reg)

	m.IncResolution("")
	assert.Equal(t, float64(1), counterValue(t, reg, "voting_resolutions_total", "unknown"))
}

func TestCronJobMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("notification_cleanup", 120*time.Millisecond)
	m.IncSuccess("notification_cleanup")
	m.IncFailure("voting_deadline_sweep")

	assert.Equal(t, uint64(1), histogramSampleCount(t, reg, "cron_job_duration_seconds"))
	assert.Equal(t, float64(1), counterValue(t, reg, "cron_job_successes_total", "notification_cleanup"))
	assert.Equal(t, float64(1), counterValue(t, reg, "cron_job_failures_total", "voting_deadline_sweep"))
}

func TestNilSafeMetrics(t *testing.T) {
	var voting *VotingMetrics
	voting.IncResolution("vote_cast")
	voting.IncAutoLock("destination")
	voting.IncLostRace()

	var cron *CronJobMetrics
	cron.ObserveDuration("job", time.Second)
	cron.IncSuccess("job")
	cron.IncFailure("job")

	// Unregistered instances are no-ops too.
	NewVotingMetrics(nil).IncResolution("vote_cast")
	NewCronJobMetrics(nil).IncSuccess("job")
}
