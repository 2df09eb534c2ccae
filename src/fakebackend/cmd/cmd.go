package cmd

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"kohchanghospital.go.th/admin/src/fakebackend"
	"kohchanghospital.go.th/admin/src/logging"
	"kohchanghospital.go.th/admin/src/website"
)

func init() {
	var addr string
	var seed bool

	fakeCommand := &cobra.Command{
		Use:   "fakebackend",
		Short: "Run an in-memory stand-in for the hospital REST backend",
		Run: func(cmd *cobra.Command, args []string) {
			server := fakebackend.New()
			if seed {
				server.Seed(25, 60, 35)
			}

			logging.Info().
				Str("addr", addr).
				Str("email", fakebackend.DefaultEmail).
				Str("password", fakebackend.DefaultPassword).
				Msg("Serving fake backend")

			srv := &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				logging.Fatal().Err(err).Msg("fake backend stopped")
			}
		},
	}
	fakeCommand.Flags().StringVar(&addr, "addr", ":8000", "address to listen on")
	fakeCommand.Flags().BoolVar(&seed, "seed", true, "fill the backend with generated records")

	website.WebsiteCommand.AddCommand(fakeCommand)
}
