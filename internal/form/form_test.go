package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/EnvForge/envforge/pkg/provider"
	"github.com/EnvForge/envforge/pkg/session"
)

// fakeService returns one scripted option set per dry-run call.
type fakeService struct {
	sets    []provider.OptionSet
	calls   int
	configs []map[string]string
}

func (f *fakeService) DryRunOptions(ctx context.Context, providerID string, opts map[string]string) (provider.OptionSet, error) {
	copied := make(map[string]string, len(opts))
	for k, v := range opts {
		copied[k] = v
	}
	f.configs = append(f.configs, copied)

	set := f.sets[f.calls]
	if f.calls < len(f.sets)-1 {
		f.calls++
	}
	return set, nil
}

func (f *fakeService) Configure(ctx context.Context, providerID string, opts map[string]string, flags session.SubmitFlags) error {
	return nil
}

func loadedSession(t *testing.T, service *fakeService, groups []provider.OptionGroup) *session.Session {
	t.Helper()

	s, err := session.NewSession(&session.Config{
		ProviderID: "cloudvm",
		Service:    service,
		Groups:     groups,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func nonInteractiveForm(t *testing.T, s *session.Session, groups []provider.OptionGroup, preset map[string]string) *Form {
	t.Helper()

	f, err := NewForm(&FormConfig{
		Session:  s,
		Prompter: &Prompter{DisableInteractive: true},
		Groups:   groups,
		Preset:   preset,
	})
	if err != nil {
		t.Fatalf("NewForm() error = %v", err)
	}
	return f
}

func TestNewFormRequiresLoadedSession(t *testing.T) {
	s, err := session.NewSession(&session.Config{
		ProviderID: "cloudvm",
		Service:    &fakeService{},
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	_, err = NewForm(&FormConfig{Session: s})
	if !errors.Is(err, session.ErrNotLoaded) {
		t.Errorf("error = %v, want ErrNotLoaded", err)
	}
}

func TestRunFillsDefaults(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		{
			"region": {Required: true, Default: "eu-west-1"},
			"zone":   {Default: "a"},
		},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if values["region"] != "eu-west-1" {
		t.Errorf("region = %v, want eu-west-1", values["region"])
	}
	if values["zone"] != "a" {
		t.Errorf("zone = %v, want a", values["zone"])
	}
}

func TestRunRequiredWithoutValue(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		{"region": {Required: true}},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, nil)

	_, err := f.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unset required option")
	}
	if !strings.Contains(err.Error(), "region") {
		t.Errorf("error = %v, want it to name the option", err)
	}
}

func TestRunRefreshesOnChildEdit(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		// Initial load: only the parent resolves.
		{"machine-type": {Required: true, Default: "gpu-small", Children: []string{"gpu-count"}}},
		// After the edit the child becomes resolvable.
		{
			"machine-type": {Required: true, Value: "gpu-small", Children: []string{"gpu-count"}},
			"gpu-count":    {Default: "1"},
		},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if values["machine-type"] != "gpu-small" {
		t.Errorf("machine-type = %v", values["machine-type"])
	}
	if values["gpu-count"] != "1" {
		t.Errorf("gpu-count = %v, want 1 from the refreshed set", values["gpu-count"])
	}

	// The refresh dry-run carried the edited parent value.
	if len(service.configs) != 2 {
		t.Fatalf("dry-run calls = %d, want 2", len(service.configs))
	}
	if service.configs[1]["machine-type"] != "gpu-small" {
		t.Errorf("refresh config = %v", service.configs[1])
	}
}

func TestRunPresetSkipsPromptAndRefresh(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		{"machine-type": {Required: true, Default: "gpu-small", Children: []string{"gpu-count"}}},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, map[string]string{"machine-type": "cpu-large"})

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if values["machine-type"] != "cpu-large" {
		t.Errorf("machine-type = %v, want the preset value", values["machine-type"])
	}
	// Preset options are never prompted, so no edit and no refresh.
	if len(service.configs) != 1 {
		t.Errorf("dry-run calls = %d, want only the initial load", len(service.configs))
	}
}

func TestRunSkipsHiddenOptions(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		{
			"region":   {Default: "eu-west-1"},
			"internal": {Hidden: true, Default: "secret"},
		},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := values["internal"]; ok {
		t.Error("hidden option was prompted")
	}
}

func TestRunConditionGatesPrompt(t *testing.T) {
	service := &fakeService{sets: []provider.OptionSet{
		{
			"machine-type": {Default: "cpu-large"},
			"gpu-driver": {
				Default:   "nvidia",
				Condition: `startsWith(options["machine-type"], "gpu-")`,
			},
		},
	}}
	s := loadedSession(t, service, nil)
	f := nonInteractiveForm(t, s, nil, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, ok := values["gpu-driver"]; ok {
		t.Errorf("gpu-driver prompted despite a false condition: %v", values)
	}
}

func TestRunSkipsCollapsedGroups(t *testing.T) {
	groups := []provider.OptionGroup{
		{Name: "Advanced", Options: []string{"adv-*"}},
	}
	service := &fakeService{sets: []provider.OptionSet{
		{
			"region":    {Default: "eu-west-1"},
			"adv-tuner": {Default: "auto"},
		},
	}}
	s := loadedSession(t, service, groups)
	f := nonInteractiveForm(t, s, groups, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Non-interactive group gating declines, so the collapsed group's
	// options stay untouched.
	if _, ok := values["adv-tuner"]; ok {
		t.Error("collapsed group option was prompted")
	}
	if values["region"] != "eu-west-1" {
		t.Errorf("region = %v", values["region"])
	}
}

func TestRunPromptsDefaultVisibleGroups(t *testing.T) {
	groups := []provider.OptionGroup{
		{Name: "Placement", Options: []string{"region"}, DefaultVisible: true},
	}
	service := &fakeService{sets: []provider.OptionSet{
		{"region": {Default: "eu-west-1"}},
	}}
	s := loadedSession(t, service, groups)
	f := nonInteractiveForm(t, s, groups, nil)

	values, err := f.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if values["region"] != "eu-west-1" {
		t.Errorf("region = %v, want eu-west-1", values["region"])
	}
}
