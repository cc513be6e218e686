package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/pkg/logger"
)

type countingJob struct {
	mu       sync.Mutex
	runs     int
	failures int
	done     chan struct{}
	once     sync.Once
	target   int
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) NextRun(now time.Time) time.Time {
	return now.Add(time.Millisecond)
}

func (j *countingJob) Run(context.Context) error {
	j.mu.Lock()
	j.runs++
	runs := j.runs
	j.mu.Unlock()

	if runs >= j.target {
		j.once.Do(func() { close(j.done) })
	}
	if runs <= j.failures {
		return errors.New("boom")
	}
	return nil
}

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) SendAlert(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
	return nil
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

func TestSchedulerRetriesAndRecovers(t *testing.T) {
	job := &countingJob{failures: 2, target: 3, done: make(chan struct{})}
	alerter := &recordingAlerter{}
	s := NewScheduler(logger.Discard(), alerter, []time.Duration{time.Millisecond, time.Millisecond})
	s.Register(job)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	select {
	case <-job.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run")
	}
	cancel()
	s.Wait()

	if alerter.count() != 0 {
		t.Errorf("expected no alerts after recovery, got %d", alerter.count())
	}
}

func TestSchedulerAlertsWhenRetriesExhausted(t *testing.T) {
	job := &countingJob{failures: 1000, target: 3, done: make(chan struct{})}
	alerter := &recordingAlerter{}
	s := NewScheduler(logger.Discard(), alerter, []time.Duration{time.Millisecond, time.Millisecond})
	s.Register(job)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	deadline := time.After(2 * time.Second)
	for alerter.count() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("alert was not sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	s.Wait()

	alerter.mu.Lock()
	msg := alerter.messages[0]
	alerter.mu.Unlock()
	if !strings.Contains(msg, "counting") || !strings.Contains(msg, "#3: boom") {
		t.Errorf("unexpected alert %q", msg)
	}
}

func TestSchedulerWithoutJobs(t *testing.T) {
	s := NewScheduler(logger.Discard(), nil, nil)
	s.Start(context.Background())
	s.Wait()
	if s.Len() != 0 {
		t.Errorf("expected no jobs")
	}
}

type fakeWarmer struct {
	calls int
	err   error
}

func (w *fakeWarmer) WarmCategoryCache(context.Context) error {
	w.calls++
	return w.err
}

func TestCacheWarmerSchedule(t *testing.T) {
	w := &fakeWarmer{}
	job, err := NewCacheWarmer(w, "@every 1m", logger.Discard())
	if err != nil {
		t.Fatalf("NewCacheWarmer: %v", err)
	}

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	if next := job.NextRun(now); !next.Equal(now.Add(time.Minute)) {
		t.Errorf("next run = %s", next)
	}

	hourly, err := NewCacheWarmer(w, "0 * * * *", logger.Discard())
	if err != nil {
		t.Fatalf("NewCacheWarmer: %v", err)
	}
	if next := hourly.NextRun(now.Add(5 * time.Minute)); !next.Equal(now.Add(time.Hour)) {
		t.Errorf("hourly next run = %s", next)
	}

	if err := job.Run(context.Background()); err != nil || w.calls != 1 {
		t.Errorf("Run: err=%v calls=%d", err, w.calls)
	}
}

func TestCacheWarmerErrors(t *testing.T) {
	if _, err := NewCacheWarmer(&fakeWarmer{}, "every minute", logger.Discard()); err == nil {
		t.Errorf("expected schedule parse error")
	}

	job, err := NewCacheWarmer(&fakeWarmer{err: errors.New("redis down")}, "@hourly", logger.Discard())
	if err != nil {
		t.Fatalf("NewCacheWarmer: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Errorf("expected run error")
	}
}
