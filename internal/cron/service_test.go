package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TheRealPress1/roamiii-backend/pkg/logger"
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Name() string { return j.name }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type fakeLock struct {
	held     bool
	acquires int
	releases int
	err      error
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test"})
}

func TestRegistry(t *testing.T) {
	first := &fakeJob{name: "first"}
	second := &fakeJob{name: "second"}

	registry := NewRegistry(first, nil)
	registry.Register(second)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "first" || jobs[1].Name() != "second" {
		t.Fatalf("jobs out of order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}

func TestRunCycleRunsAllJobs(t *testing.T) {
	first := &fakeJob{name: "first"}
	failing := &fakeJob{name: "failing", err: errors.New("boom")}
	last := &fakeJob{name: "last"}
	lock := &fakeLock{}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, failing, last),
		Lock:     lock,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle failed: %v", err)
	}

	// A failing job must not stop the others.
	if first.runs != 1 || failing.runs != 1 || last.runs != 1 {
		t.Fatalf("runs: %d %d %d", first.runs, failing.runs, last.runs)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("lock acquires=%d releases=%d", lock.acquires, lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &fakeJob{name: "job"}
	lock := &fakeLock{held: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle failed: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("job must not run when the lock is held elsewhere")
	}
	if lock.releases != 0 {
		t.Fatal("must not release a lock it never acquired")
	}
}

func TestRunCycleLockError(t *testing.T) {
	lock := &fakeLock{err: errors.New("redis down")}
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Lock:   lock,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.runCycle(context.Background()); err == nil {
		t.Fatal("expected lock acquire error to surface")
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("missing logger must fail")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("missing lock must fail")
	}
}

type fakeRedisStore struct {
	values map[string]string
	setErr error
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (s *fakeRedisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *fakeRedisStore) Get(ctx context.Context, key string) (string, error) {
	value, exists := s.values[key]
	if !exists {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeRedisStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "cron:lock", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	other, err := NewRedisLock(store, "cron:lock", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ok, err = other.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	ok, err = other.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	lock, err := NewRedisLock(store, "cron:lock", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	// Never acquired: release is a no-op.
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release without acquire: %v", err)
	}

	if _, err := lock.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	// Simulate TTL expiry plus takeover by another instance.
	store.values["cron:lock"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release of stolen lock: %v", err)
	}
	if store.values["cron:lock"] != "someone-else" {
		t.Fatal("must not delete a lock owned by another instance")
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "key", time.Minute); err == nil {
		t.Fatal("nil client must fail")
	}
	if _, err := NewRedisLock(newFakeRedisStore(), "", time.Minute); err == nil {
		t.Fatal("empty key must fail")
	}
}
