package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/admin/tg-bots/organic-shop/internal/ports/jobs"
	"github.com/admin/tg-bots/organic-shop/internal/ports/service"
)

// DefaultRetryDelays паузы перед повторами упавшей джобы | now + 10s + 1m + 5m
var DefaultRetryDelays = []time.Duration{
	10 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
}

// Scheduler управляет запуском периодических джоб
type Scheduler struct {
	jobs           []jobs.Job
	retryDelays    []time.Duration
	alerterService service.IAlerterService
	log            *slog.Logger
	wg             sync.WaitGroup
}

// NewScheduler создаёт новый планировщик джоб; alerterService может быть nil
func NewScheduler(log *slog.Logger, alerterService service.IAlerterService, retryDelays []time.Duration) *Scheduler {
	if retryDelays == nil {
		retryDelays = DefaultRetryDelays
	}
	return &Scheduler{
		jobs:           make([]jobs.Job, 0),
		retryDelays:    retryDelays,
		alerterService: alerterService,
		log:            log,
	}
}

// Register регистрирует джобу в планировщике
func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job_name", job.Name(), "total_jobs", len(s.jobs))
}

// Len количество зарегистрированных джоб
func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Start запускает все зарегистрированные джобы в горутинах и сразу возвращается
func (s *Scheduler) Start(ctx context.Context) {
	if len(s.jobs) == 0 {
		s.log.Info("no jobs registered, scheduler not started")
		return
	}

	s.log.Info("starting job scheduler", "jobs_count", len(s.jobs))

	for _, job := range s.jobs {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runJob(ctx, job)
		}()
	}
}

// Wait ждёт остановки всех джоб после отмены контекста
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// runJob запускает отдельную джобу в цикле
func (s *Scheduler) runJob(ctx context.Context, job jobs.Job) {
	jobName := job.Name()
	for {
		now := time.Now()
		timer := time.NewTimer(job.NextRun(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("job stopped by context", "job_name", jobName)
			return
		case <-timer.C:
			attemptErrors := s.executeJobWithRetry(ctx, job)
			switch {
			case attemptErrors == nil:
				s.log.Debug("job executed successfully", "job_name", jobName)
			case ctx.Err() != nil:
				s.log.Info("job interrupted by shutdown", "job_name", jobName)
				return
			default:
				s.log.Error("job failed after all retries",
					"job_name", jobName,
					"attempts", len(attemptErrors),
					"error", attemptErrors[len(attemptErrors)-1].err,
				)
				s.sendAlert(ctx, jobName, attemptErrors)
			}
		}
	}
}

// jobAttemptError представляет ошибку конкретной попытки выполнения джобы
type jobAttemptError struct {
	attempt int
	err     error
}

// executeJobWithRetry выполняет джобу с retry при ошибках.
// nil - успех, иначе ошибки всех сделанных попыток
func (s *Scheduler) executeJobWithRetry(ctx context.Context, job jobs.Job) []jobAttemptError {
	jobName := job.Name()
	var attemptErrors []jobAttemptError

	for attempt := 1; attempt <= len(s.retryDelays)+1; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(s.retryDelays[attempt-2])
			select {
			case <-ctx.Done():
				timer.Stop()
				return append(attemptErrors, jobAttemptError{attempt: attempt, err: ctx.Err()})
			case <-timer.C:
			}
		}

		err := job.Run(ctx)
		if err == nil {
			return nil
		}

		attemptErrors = append(attemptErrors, jobAttemptError{attempt: attempt, err: err})
		s.log.Warn("job execution failed",
			"job_name", jobName,
			"attempt", attempt,
			"retries_remaining", len(s.retryDelays)+1-attempt,
			"error", err,
		)
	}

	return attemptErrors
}

// sendAlert алертит на финальную ошибку после ретраев
func (s *Scheduler) sendAlert(ctx context.Context, jobName string, attemptErrors []jobAttemptError) {
	if s.alerterService == nil {
		return
	}

	var message strings.Builder
	message.WriteString("⚠️ Job failed, retries exhausted\n\n")
	message.WriteString(fmt.Sprintf("Job: %s\n\n", jobName))
	message.WriteString("Attempt errors:\n")
	for _, attemptErr := range attemptErrors {
		message.WriteString(fmt.Sprintf("#%d: %s\n", attemptErr.attempt, attemptErr.err.Error()))
	}

	if alertErr := s.alerterService.SendAlert(ctx, strings.TrimSuffix(message.String(), "\n")); alertErr != nil {
		s.log.Warn("failed to send job failure alert",
			"job_name", jobName,
			"error", alertErr,
		)
	}
}
