// Package form drives the interactive configuration form: it classifies
// the current option set, prompts per option in bucket order, and
// triggers a session refresh whenever an option with dependent children
// changes.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/EnvForge/envforge/pkg/provider"
)

// Prompter asks for a single option value. It wraps pterm's interactive
// printers and falls back to defaults when prompts are disabled.
type Prompter struct {
	// DisableInteractive makes every prompt return the current or
	// default value without asking (for tests and --non-interactive).
	DisableInteractive bool
}

// NewPrompter creates a Prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// PromptOption asks for a value for opt. current is the present working
// value ("" when unset); the returned string is the new value, "" when
// the user left an optional field empty.
func (p *Prompter) PromptOption(opt *provider.Option, current string) (string, error) {
	if opt == nil {
		return "", fmt.Errorf("option cannot be nil")
	}

	fallback := current
	if fallback == "" {
		fallback = opt.Default
	}

	if p.DisableInteractive {
		if fallback == "" && opt.Required {
			return "", fmt.Errorf("option %q is required and has no value", opt.ID)
		}
		return fallback, nil
	}

	switch {
	case len(opt.Enum) > 0:
		return p.promptSelect(opt, fallback)
	case opt.Type == "boolean":
		return p.promptBool(opt, fallback)
	case opt.Type == "number":
		return p.promptNumber(opt, fallback)
	default:
		return p.promptText(opt, fallback)
	}
}

func (p *Prompter) promptText(opt *provider.Option, fallback string) (string, error) {
	for {
		input := pterm.DefaultInteractiveTextInput.WithMultiLine(false)
		if opt.Password {
			input = input.WithMask("*")
		}
		if fallback != "" && !opt.Password {
			input = input.WithDefaultValue(fallback)
		}

		result, err := input.Show(promptMessage(opt))
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		result = strings.TrimSpace(result)
		if result == "" && opt.Password {
			result = fallback
		}

		if result == "" && opt.Required {
			pterm.Error.Println("This option is required")
			continue
		}

		return result, nil
	}
}

func (p *Prompter) promptSelect(opt *provider.Option, fallback string) (string, error) {
	selector := pterm.DefaultInteractiveSelect.WithOptions(opt.Enum)

	for _, candidate := range opt.Enum {
		if candidate == fallback {
			selector = selector.WithDefaultOption(candidate)
			break
		}
	}

	result, err := selector.Show(promptMessage(opt))
	if err != nil {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}

	return result, nil
}

func (p *Prompter) promptBool(opt *provider.Option, fallback string) (string, error) {
	defaultValue := fallback == "true"

	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultValue).
		Show(promptMessage(opt))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	return strconv.FormatBool(result), nil
}

func (p *Prompter) promptNumber(opt *provider.Option, fallback string) (string, error) {
	for {
		input := pterm.DefaultInteractiveTextInput.WithMultiLine(false)
		if fallback != "" {
			input = input.WithDefaultValue(fallback)
		}

		result, err := input.Show(promptMessage(opt))
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		result = strings.TrimSpace(result)
		if result == "" {
			if opt.Required {
				pterm.Error.Println("This option is required")
				continue
			}
			return "", nil
		}

		if _, err := strconv.ParseFloat(result, 64); err != nil {
			pterm.Error.Println("Please enter a valid number")
			continue
		}

		return result, nil
	}
}

// Confirm asks a yes/no question, used for group gating and submit
// flags.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	if p.DisableInteractive {
		return defaultValue, nil
	}

	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(defaultValue).
		Show(message)
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	return result, nil
}

// promptMessage builds the prompt line for an option.
func promptMessage(opt *provider.Option) string {
	message := opt.ID
	if opt.Description != "" {
		message = fmt.Sprintf("%s (%s)", opt.ID, opt.Description)
	}
	if len(opt.Suggestions) > 0 {
		message = fmt.Sprintf("%s [e.g. %s]", message, strings.Join(opt.Suggestions, ", "))
	}
	return message
}
