package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/EnvForge/envforge/internal/form"
	"github.com/EnvForge/envforge/pkg/session"
)

func newConfigureCmd() *cobra.Command {
	var (
		optionPairs    []string
		reuseMachine   bool
		useAsDefault   bool
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "configure [provider]",
		Short: "Configure a development environment provider",
		Long: `Configure walks the provider's option schema as an interactive form.

Options whose value other options depend on trigger a live re-resolution
of the option set, so dependent options appear as soon as they become
resolvable. Pass --option key=value to preset answers, or
--non-interactive to rely on presets and defaults only.`,
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

			ctx := cmd.Context()

			spinner, _ := pterm.DefaultSpinner.Start("Loading provider schema...")
			schema, err := app.client.GetSchema(ctx, providerID)
			if err != nil {
				spinner.Fail("Failed to load provider schema")
				return err
			}

			sess, err := session.NewSession(&session.Config{
				ProviderID:  providerID,
				Service:     app.client,
				Groups:      schema.OptionGroups,
				Invalidator: app.cache,
			})
			if err != nil {
				spinner.Fail()
				return err
			}

			if err := sess.Load(ctx); err != nil {
				spinner.Fail("Failed to load provider options")
				return err
			}
			spinner.Success(fmt.Sprintf("Loaded options for %s", schema.Name))

			preset, err := parseOptionPairs(optionPairs)
			if err != nil {
				return err
			}

			prompter := form.NewPrompter()
			prompter.DisableInteractive = nonInteractive

			configForm, err := form.NewForm(&form.FormConfig{
				Session:  sess,
				Prompter: prompter,
				Groups:   schema.OptionGroups,
				Preset:   preset,
			})
			if err != nil {
				return err
			}

			values, err := configForm.Run(ctx)
			if err != nil {
				return err
			}

			flags, err := submitFlags(cmd, prompter, schema.Capabilities.MachineReuse, reuseMachine, useAsDefault)
			if err != nil {
				return err
			}

			spinner, _ = pterm.DefaultSpinner.Start("Configuring provider...")
			if err := sess.Submit(ctx, values, flags); err != nil {
				spinner.Fail("Configuration failed")

				var validationErr *session.ValidationError
				if errors.As(err, &validationErr) {
					return fmt.Errorf("invalid input: %w", validationErr)
				}
				return err
			}
			spinner.Success(fmt.Sprintf("Provider %s configured", providerID))

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&optionPairs, "option", nil, "Preset an option as key=value (repeatable)")
	cmd.Flags().BoolVar(&reuseMachine, "reuse-machine", false, "Reuse a single machine across workspaces")
	cmd.Flags().BoolVar(&useAsDefault, "use-as-default", false, "Make this the default provider")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; use presets and defaults")

	return cmd
}

// submitFlags resolves the two provider flags, prompting for whatever
// was not given explicitly.
func submitFlags(cmd *cobra.Command, prompter *form.Prompter, machineReuse, reuseMachine, useAsDefault bool) (session.SubmitFlags, error) {
	flags := session.SubmitFlags{UseAsDefault: useAsDefault}

	if machineReuse {
		if cmd.Flags().Changed("reuse-machine") {
			flags.ReuseMachine = &reuseMachine
		} else {
			answer, err := prompter.Confirm("Reuse a single machine for all workspaces?", false)
			if err != nil {
				return flags, err
			}
			flags.ReuseMachine = &answer
		}
	}

	if !cmd.Flags().Changed("use-as-default") {
		answer, err := prompter.Confirm("Use as default provider?", false)
		if err != nil {
			return flags, err
		}
		flags.UseAsDefault = answer
	}

	return flags, nil
}

// parseOptionPairs parses repeated key=value flags.
func parseOptionPairs(pairs []string) (map[string]string, error) {
	preset := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --option %q, expected key=value", pair)
		}
		preset[key] = value
	}

	return preset, nil
}
