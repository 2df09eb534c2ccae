package backend

import (
	"context"
	"time"

	"github.com/jpillora/backoff"
	"kohchanghospital.go.th/admin/src/logging"
)

// WaitUntilReachable pings the backend until it answers or ctx ends. It is
// only for startup; user actions are never retried.
func WaitUntilReachable(ctx context.Context, c *Client) error {
	log := logging.ExtractLogger(ctx)

	boff := backoff.Backoff{
		Min:    500 * time.Millisecond,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for {
		err := c.Ping(ctx)
		if err == nil {
			log.Info().Str("backend", c.BaseUrl()).Msg("Backend is reachable")
			return nil
		}

		dur := boff.Duration()
		log.Warn().
			Err(err).
			Dur("retrying after", dur).
			Msg("backend not reachable yet")

		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
