// Package main implements the envforge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const appName = "envforge"

var (
	// Version is set at build time
	version = "0.3.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envforge",
		Short: "EnvForge - Configure development environment providers",
		Long: `EnvForge configures development environment providers (cloud and VM
backends) against a provider configuration service.

It renders the provider's option schema as an interactive form,
re-resolves dependent options live as you answer, and commits the
final configuration.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: XDG config dir)")
	cmd.PersistentFlags().String("server", "", "Provider configuration service URL (overrides config)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	cmd.AddCommand(newConfigureCmd())
	cmd.AddCommand(newOptionsCmd())
	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())

	return cmd
}
