package main

import (
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [provider]",
		Short: "Watch a provider's option invalidation events",
		Long: `Watch subscribes to the service's event stream for a provider and
reports when server-side option resolution changes. Cached dry-run
results for the provider are invalidated on every event.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			providerID, err := providerArg(app.cfg, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			headers := http.Header{}
			if token, err := app.auth.GetToken(ctx); err == nil {
				headers.Set("Authorization", "Bearer "+token.AccessToken)
			}

			watcher := app.client.NewWatcher(providerID, headers)
			if err := watcher.Connect(ctx); err != nil {
				return err
			}
			defer watcher.Close()

			pterm.Info.Printfln("Watching provider %s (Ctrl-C to stop)", providerID)

			for {
				select {
				case <-ctx.Done():
					return nil
				case event := <-watcher.Events():
					pterm.Info.Printfln("%s options changed: %s",
						event.Provider, strings.Join(event.Options, ", "))
					if err := app.cache.InvalidateProvider(providerID); err != nil {
						pterm.Warning.Printfln("Failed to invalidate cache: %v", err)
					}
				case err := <-watcher.Errors():
					pterm.Warning.Println(err.Error())
				}
			}
		},
	}

	return cmd
}
