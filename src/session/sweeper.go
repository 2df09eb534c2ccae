package session

import (
	"context"
	"time"

	"kohchanghospital.go.th/admin/src/jobs"
	"kohchanghospital.go.th/admin/src/logging"
)

func PeriodicallyDeleteExpiredSessions(st *Store) *jobs.Job {
	return jobs.Go("session sweeper", func(ctx context.Context) error {
		t := time.NewTicker(1 * time.Minute)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				if n := st.DeleteExpired(); n > 0 {
					logging.ExtractLogger(ctx).Info().Int("num deleted sessions", n).Int("remaining", st.Len()).Msg("Deleted expired sessions")
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}
