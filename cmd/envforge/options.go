package main

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/EnvForge/envforge/internal/form"
	"github.com/EnvForge/envforge/pkg/options"
	"github.com/EnvForge/envforge/pkg/provider"
)

func newOptionsCmd() *cobra.Command {
	var (
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "options [provider]",
		Short: "Show a provider's resolvable options",
		Long: `Options runs a dry-run query with an empty configuration and prints
the resulting option set grouped the way the form would present it.

Results are cached; pass --refresh to force a fresh query.`,
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
			emptyConfig := map[string]string{}

			var set provider.OptionSet
			if !refresh {
				if cached, err := app.cache.Get(providerID, emptyConfig); err == nil && app.cache.IsValid(cached, 0) {
					set = cached.Options
				}
			}

			if set == nil {
				set, err = app.client.DryRunOptions(ctx, providerID, emptyConfig)
				if err != nil {
					return err
				}
				if err := app.cache.Set(providerID, emptyConfig, set); err != nil {
					pterm.Warning.Printfln("Failed to cache options: %v", err)
				}
			}

			schema, err := app.client.GetSchema(ctx, providerID)
			if err != nil {
				return err
			}

			classification := options.Classify(set.Sorted(), schema.OptionGroups)

			if output == "" {
				output = app.cfg.Output
			}
			return renderOptions(classification, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the query cache")

	return cmd
}

// classificationDoc is the serializable shape for json/yaml output.
type classificationDoc struct {
	Required []*provider.Option    `json:"required" yaml:"required"`
	Groups   []classificationGroup `json:"groups" yaml:"groups"`
	Other    []*provider.Option    `json:"other" yaml:"other"`
}

type classificationGroup struct {
	Name    string             `json:"name" yaml:"name"`
	Options []*provider.Option `json:"options" yaml:"options"`
}

func renderOptions(c *options.Classification, output string) error {
	switch output {
	case "", "table":
		return form.RenderClassification(c)
	case "json":
		data, err := json.MarshalIndent(toDoc(c), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(toDoc(c))
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
}

func toDoc(c *options.Classification) *classificationDoc {
	doc := &classificationDoc{
		Required: c.Required,
		Other:    c.Other,
	}
	for _, name := range c.GroupOrder {
		doc.Groups = append(doc.Groups, classificationGroup{
			Name:    name,
			Options: c.Groups[name],
		})
	}
	return doc
}
