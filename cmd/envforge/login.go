package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/EnvForge/envforge/pkg/auth"
)

func newLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a service token in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := auth.NewKeyringStorage(appName, "")
			if err != nil {
				return err
			}
			manager, err := auth.NewManager(&auth.Config{Storage: storage})
			if err != nil {
				return err
			}

			if token == "" {
				input, err := pterm.DefaultInteractiveTextInput.
					WithMask("*").
					Show("Service token")
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(input)
			}
			if token == "" {
				return fmt.Errorf("no token given")
			}

			if err := manager.SetToken(cmd.Context(), token); err != nil {
				return err
			}

			pterm.Success.Println("Token stored")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Token value (prompted when omitted)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored service token",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := auth.NewKeyringStorage(appName, "")
			if err != nil {
				return err
			}
			manager, err := auth.NewManager(&auth.Config{Storage: storage})
			if err != nil {
				return err
			}

			if err := manager.ClearToken(cmd.Context()); err != nil {
				return err
			}

			pterm.Success.Println("Token removed")
			return nil
		},
	}
}
