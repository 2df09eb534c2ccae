package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("sweeper", time.Millisecond*100),
			FakeJob("readiness", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "jobs did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("sweeper", time.Millisecond*100),
			FakeJob("readiness", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"readiness"}, unfinished)
	})
}

func TestGo(t *testing.T) {
	t.Run("finishes when the function returns", func(t *testing.T) {
		job := Go("quick", func(ctx context.Context) error {
			return errors.New("logged, not returned")
		})
		select {
		case <-job.Finished():
		case <-time.After(time.Second):
			t.Fatal("job never finished")
		}
	})
	t.Run("stops on cancel", func(t *testing.T) {
		job := Go("loop", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		assert.Empty(t, Jobs{job}.CancelAndWait(time.Second))
	})
	t.Run("survives a panic", func(t *testing.T) {
		job := Go("panicky", func(ctx context.Context) error {
			panic("oh no")
		})
		assert.Empty(t, Jobs{job}.CancelAndWait(time.Second))
	})
}

func FakeJob(name string, timeout time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(timeout)
		<-timer.C
		job.Finish()
	}()
	return job
}
