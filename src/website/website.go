package website

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"kohchanghospital.go.th/admin/src/adminurl"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/jobs"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/session"
	"kohchanghospital.go.th/admin/src/templates"
)

var WebsiteCommand = &cobra.Command{
	Short: "Run the hospital admin website",
	Run: func(cmd *cobra.Command, args []string) {
		defer logging.LogPanics(nil)
		logging.Info().Str("backend", config.Config.Backend.BaseUrl).Msg("Starting the admin website")

		templates.Init()

		var wg sync.WaitGroup

		store := session.NewStore(session.OptionsFromConfig())

		// Start background jobs
		wg.Add(1)
		backgroundJobs := jobs.Jobs{
			session.PeriodicallyDeleteExpiredSessions(store),
			probeBackend(),
		}

		// Create HTTP server
		wg.Add(1)
		server := http.Server{
			Addr:    config.Config.Addr,
			Handler: NewWebsiteRoutes(store),
		}
		go func() {
			logging.Info().Str("addr", config.Config.Addr).Str("url", adminurl.AbsoluteUrl("", nil)).Msg("Serving the website")
			serverErr := server.ListenAndServe()
			if !errors.Is(serverErr, http.ErrServerClosed) {
				logging.Error().Err(serverErr).Msg("Server shut down unexpectedly")
			}
			// The wg.Done() happens in the shutdown logic below.
		}()

		// Wait for SIGINT in the background and trigger graceful shutdown
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		go func() {
			<-signals // First SIGINT (start shutdown)
			logging.Info().Msg("Shutting down the website")

			const timeout = 10 * time.Second

			go func() {
				logging.Info().Msg("Shutting down background jobs...")
				unfinished := backgroundJobs.CancelAndWait(timeout)
				if len(unfinished) == 0 {
					logging.Info().Msg("Background jobs closed gracefully")
				} else {
					logging.Warn().Strs("Unfinished", unfinished).Msg("Background jobs did not finish by the deadline")
				}
				wg.Done()
			}()

			// Gracefully shut down the HTTP server
			go func() {
				timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				err := server.Shutdown(timeoutCtx)
				if err != nil {
					logging.Warn().Err(err).Msg("Server did not shut down gracefully")
				}
				wg.Done()
			}()

			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the website")
			os.Exit(1)
		}()

		// Wait for all of the above to finish, then exit
		wg.Wait()
	},
}

// probeBackend reports once whether the backend answers, retrying with
// backoff. The site serves regardless; pages show load errors until then.
func probeBackend() *jobs.Job {
	return jobs.Go("backend probe", func(ctx context.Context) error {
		client, err := backend.NewClient(backend.OptionsFromConfig())
		if err != nil {
			return err
		}
		return backend.WaitUntilReachable(ctx, client)
	})
}
