package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/utils"
)

/*
 * Background tasks that run next to the web server (session sweeping, the
 * backend readiness probe). A Job owns a cancelable context and a done
 * channel so shutdown can wait for every job with a deadline.
 */

type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel func()
	done   chan struct{}
}

func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Go starts f on its own goroutine and finishes the job when f returns. A
// non-nil error other than the job's own cancellation is logged, and so is a
// panic.
func Go(name string, f func(ctx context.Context) error) *Job {
	job := New(name)
	go func() {
		defer job.Finish()

		err := run(job.Ctx, f)
		if err != nil && job.Ctx.Err() == nil {
			job.Logger.Error().Err(err).Msg("job failed")
		}
	}()
	return job
}

func run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer utils.RecoverPanicAsError(&err)
	return f(ctx)
}

// Sends a cancel signal to the Job, indicating that it should finish its work
// and shut down. Expected to be called from outside the job.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Marks the Job as finished. Expected to be called by the job code itself.
func (j *Job) Finish() *Job {
	close(j.done)
	return j
}

func (j *Job) Finished() <-chan struct{} {
	return j.done
}

type Jobs []*Job

// Cancels all tracked jobs and waits for them to finish, or for the timeout
// to expire. Returns the names of the jobs that did not finish on time.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	allDoneChan := make(chan struct{})
	for _, job := range jobs {
		job.Cancel()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDoneChan)
	}()

	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDoneChan:
		return nil
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
			continue
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}
