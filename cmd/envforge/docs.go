package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs [provider]",
		Short: "Open a provider's documentation in the browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}

			providerID, err := providerArg(app.cfg, args)
			if err != nil {
				return err
			}

			schema, err := app.client.GetSchema(cmd.Context(), providerID)
			if err != nil {
				return err
			}

			if schema.DocsURL == "" {
				return fmt.Errorf("provider %s has no documentation URL", providerID)
			}

			pterm.Info.Printfln("Opening %s", schema.DocsURL)
			return open.Run(schema.DocsURL)
		},
	}

	return cmd
}
