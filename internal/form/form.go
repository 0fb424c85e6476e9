package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/EnvForge/envforge/pkg/options"
	"github.com/EnvForge/envforge/pkg/provider"
	"github.com/EnvForge/envforge/pkg/session"
)

// Form walks a loaded session's option set, prompting bucket by bucket.
// Editing an option with registered children re-queries the option set;
// the walk then restarts so newly resolvable options get prompted too,
// while already-answered ones are not asked again.
type Form struct {
	session  *session.Session
	prompter *Prompter
	groups   []provider.OptionGroup

	values     map[string]interface{}
	asked      map[string]bool
	skipGroups map[string]bool
}

// FormConfig configures a Form.
type FormConfig struct {
	Session  *session.Session
	Prompter *Prompter
	// Groups are the declared option groups, used for gating prompts.
	Groups []provider.OptionGroup
	// Preset values are applied before prompting (--option pairs);
	// preset options are not prompted for.
	Preset map[string]string
}

// NewForm creates a form over a loaded session.
func NewForm(config *FormConfig) (*Form, error) {
	if config == nil || config.Session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}
	if !config.Session.Loaded() {
		return nil, session.ErrNotLoaded
	}

	prompter := config.Prompter
	if prompter == nil {
		prompter = NewPrompter()
	}

	f := &Form{
		session:    config.Session,
		prompter:   prompter,
		groups:     config.Groups,
		values:     make(map[string]interface{}),
		asked:      make(map[string]bool),
		skipGroups: make(map[string]bool),
	}

	for key, value := range config.Session.Values() {
		f.values[key] = value
	}
	for key, value := range config.Preset {
		f.values[key] = value
		f.asked[key] = true
	}

	return f, nil
}

// Run prompts until a full pass completes without a dependency refresh
// and returns the collected form values.
func (f *Form) Run(ctx context.Context) (map[string]interface{}, error) {
	for {
		refreshed, err := f.pass(ctx)
		if err != nil {
			return nil, err
		}
		if !refreshed {
			return f.values, nil
		}
	}
}

// Values returns the current working values.
func (f *Form) Values() map[string]interface{} {
	return f.values
}

// pass walks every bucket once. It reports true when a refresh replaced
// the option set mid-walk, in which case the caller restarts.
func (f *Form) pass(ctx context.Context) (bool, error) {
	classification := f.session.Classify()

	refreshed, err := f.promptBucket(ctx, classification.Required)
	if err != nil || refreshed {
		return refreshed, err
	}

	for _, name := range classification.GroupOrder {
		if f.skipGroups[name] {
			continue
		}

		if gated, err := f.gateGroup(name); err != nil {
			return false, err
		} else if gated {
			continue
		}

		refreshed, err := f.promptBucket(ctx, classification.Groups[name])
		if err != nil || refreshed {
			return refreshed, err
		}
	}

	return f.promptBucket(ctx, classification.Other)
}

// gateGroup asks once whether a collapsed group should be configured.
func (f *Form) gateGroup(name string) (bool, error) {
	group := f.findGroup(name)
	if group == nil || group.DefaultVisible {
		return false, nil
	}

	configure, err := f.prompter.Confirm(fmt.Sprintf("Configure %s options?", name), false)
	if err != nil {
		return false, err
	}
	if !configure {
		f.skipGroups[name] = true
		return true, nil
	}

	// Remember the decision so the group is not gated again after a
	// refresh restarts the walk.
	f.groups = markVisible(f.groups, name)
	return false, nil
}

func (f *Form) findGroup(name string) *provider.OptionGroup {
	for i := range f.groups {
		if f.groups[i].Name == name {
			return &f.groups[i]
		}
	}
	return nil
}

func markVisible(groups []provider.OptionGroup, name string) []provider.OptionGroup {
	for i := range groups {
		if groups[i].Name == name {
			groups[i].DefaultVisible = true
		}
	}
	return groups
}

// promptBucket prompts every not-yet-asked option in the bucket.
func (f *Form) promptBucket(ctx context.Context, opts []*provider.Option) (bool, error) {
	for _, opt := range opts {
		if f.asked[opt.ID] || opt.Hidden {
			continue
		}

		visible, err := options.EvalCondition(opt.Condition, f.stringValues())
		if err != nil {
			return false, fmt.Errorf("option %q: %w", opt.ID, err)
		}
		if !visible {
			continue
		}

		current := ""
		if v, ok := f.values[opt.ID]; ok {
			current = provider.Stringify(v)
		}

		value, err := f.prompter.PromptOption(opt, current)
		if err != nil {
			return false, err
		}
		f.asked[opt.ID] = true

		if value == "" {
			delete(f.values, opt.ID)
		} else {
			f.values[opt.ID] = value
		}

		if value != current && len(opt.Children) > 0 {
			if err := f.refresh(ctx, opt.ID); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	return false, nil
}

// refresh re-queries the option set after an edit of changedID and
// resets the working values to the server-reported baseline.
func (f *Form) refresh(ctx context.Context, changedID string) error {
	var spinner *pterm.SpinnerPrinter
	if !f.prompter.DisableInteractive {
		spinner, _ = pterm.DefaultSpinner.Start("Refreshing provider options...")
	}

	err := f.session.Refresh(ctx, changedID, f.values)

	if err != nil {
		if spinner != nil {
			spinner.Fail("Refresh failed")
		}
		// A superseded refresh is not an error for the walk; the
		// winning refresh already updated the state.
		if errors.Is(err, session.ErrSuperseded) {
			return nil
		}
		// The option set stays at its last good generation and the
		// typed-in values survive; surface the error and keep going.
		pterm.Error.Println(err.Error())
		return nil
	}

	if spinner != nil {
		spinner.Success("Options refreshed")
	}

	baseline := f.session.Values()
	f.values = make(map[string]interface{}, len(baseline))
	for key, value := range baseline {
		f.values[key] = value
	}

	return nil
}

// stringValues projects the working values for condition evaluation.
func (f *Form) stringValues() map[string]string {
	values := make(map[string]string, len(f.values))
	for key, value := range f.values {
		if value == nil {
			continue
		}
		values[key] = provider.Stringify(value)
	}
	return values
}
