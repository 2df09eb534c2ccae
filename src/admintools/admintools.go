package admintools

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"kohchanghospital.go.th/admin/src/backend"
	"kohchanghospital.go.th/admin/src/config"
	"kohchanghospital.go.th/admin/src/models"
	"kohchanghospital.go.th/admin/src/website"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	pingCommand := &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers",
		Run: func(cmd *cobra.Command, args []string) {
			client, err := backend.NewClient(backend.OptionsFromConfig())
			if err != nil {
				panic(err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			start := time.Now()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("%v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Backend at %s answered in %v\n", client.BaseUrl(), time.Since(start).Round(time.Millisecond))
		},
	}
	adminCommand.AddCommand(pingCommand)

	var email, password string
	addCredentialFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&email, "email", "", "Email of a backend account")
		cmd.Flags().StringVar(&password, "password", "", "Password of the backend account")
		cmd.MarkFlagRequired("email")
		cmd.MarkFlagRequired("password")
	}

	whoamiCommand := &cobra.Command{
		Use:   "whoami",
		Short: "Log in to the backend and print the account it sees",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			client := mustLogin(ctx, email, password)
			user, err := client.Me(ctx)
			if err != nil {
				panic(err)
			}
			fmt.Printf("ID: %d\nName: %s\nEmail: %s\n", user.ID, user.Name, user.Email)
		},
	}
	addCredentialFlags(whoamiCommand)
	adminCommand.AddCommand(whoamiCommand)

	contentsCommand := &cobra.Command{
		Use:   "contents",
		Short: "Back up and restore the static page contents",
	}
	adminCommand.AddCommand(contentsCommand)

	var lang string
	var outPath string

	exportCommand := &cobra.Command{
		Use:   "export [page]",
		Short: "Write a page's content blocks as YAML",
		Run: func(cmd *cobra.Command, args []string) {
			page := pageArg(cmd, args)

			ctx := context.Background()
			client := mustLogin(ctx, email, password)
			blocks, err := client.GetContents(ctx, page, lang)
			if err != nil {
				panic(err)
			}

			out, err := encodeContentFile(page, lang, blocks)
			if err != nil {
				panic(err)
			}
			if outPath == "" {
				os.Stdout.Write(out)
				return
			}
			if err := os.WriteFile(outPath, out, 0644); err != nil {
				panic(err)
			}
			fmt.Printf("Wrote %d blocks of %s to %s\n", len(blocks), page, outPath)
		},
	}
	addCredentialFlags(exportCommand)
	exportCommand.Flags().StringVar(&lang, "lang", config.Config.Backend.Lang, "Content language")
	exportCommand.Flags().StringVarP(&outPath, "out", "o", "", "File to write instead of stdout")
	contentsCommand.AddCommand(exportCommand)

	importCommand := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace a page's content blocks with ones from a YAML export",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a file exported with 'admin contents export'.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			contents, err := os.ReadFile(args[0])
			if err != nil {
				panic(err)
			}
			file, err := decodeContentFile(contents)
			if err != nil {
				fmt.Printf("%v\n", err)
				os.Exit(1)
			}

			ctx := context.Background()
			client := mustLogin(ctx, email, password)
			err = client.SaveContents(ctx, models.ContentPage(file.Page), backend.SaveContentsRequest{
				Lang:     file.Lang,
				Contents: file.Blocks(),
			})
			if err != nil {
				fmt.Printf("Backend rejected the import: %s\n", backend.UserMessage(err, err.Error()))
				os.Exit(1)
			}
			fmt.Printf("Imported %d blocks into %s (%s)\n", len(file.Entries), file.Page, file.Lang)
		},
	}
	addCredentialFlags(importCommand)
	contentsCommand.AddCommand(importCommand)
}

func mustLogin(ctx context.Context, email, password string) *backend.Client {
	client, err := backend.NewClient(backend.OptionsFromConfig())
	if err != nil {
		panic(err)
	}
	if err := client.Login(ctx, email, password); err != nil {
		fmt.Printf("Failed to log in as %s: %s\n", email, backend.UserMessage(err, err.Error()))
		os.Exit(1)
	}
	return client
}

func pageArg(cmd *cobra.Command, args []string) models.ContentPage {
	if len(args) < 1 || !models.ContentPage(args[0]).Valid() {
		fmt.Printf("You must provide a page. Pages:\n")
		for _, page := range models.ContentPages {
			fmt.Printf("  %s\n", page)
		}
		fmt.Printf("\n")
		cmd.Usage()
		os.Exit(1)
	}
	return models.ContentPage(args[0])
}
