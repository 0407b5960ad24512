package cron

import "context"

// Job is one maintenance task run by the cron worker, e.g. the notification
// cleanup or the voting deadline sweep.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the maintenance jobs in the order they run each cycle.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs. Nil entries
// are skipped.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register appends a job to the cycle.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns the registered jobs in run order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
