package form

import (
	"github.com/pterm/pterm"

	"github.com/EnvForge/envforge/pkg/options"
	"github.com/EnvForge/envforge/pkg/provider"
)

// RenderClassification prints the partitioned option set as tables, one
// section per bucket.
func RenderClassification(c *options.Classification) error {
	if len(c.Required) > 0 {
		pterm.DefaultSection.Println("Required")
		if err := renderOptions(c.Required); err != nil {
			return err
		}
	}

	for _, name := range c.GroupOrder {
		pterm.DefaultSection.Println(name)
		if err := renderOptions(c.Groups[name]); err != nil {
			return err
		}
	}

	if len(c.Other) > 0 {
		pterm.DefaultSection.Println("Optional")
		if err := renderOptions(c.Other); err != nil {
			return err
		}
	}

	return nil
}

func renderOptions(opts []*provider.Option) error {
	data := pterm.TableData{{"OPTION", "VALUE", "DESCRIPTION"}}

	for _, opt := range opts {
		value := opt.Value
		if value == "" {
			value = opt.Default
		}
		if opt.Password && value != "" {
			value = "********"
		}
		data = append(data, []string{opt.ID, value, opt.Description})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
