// Package session implements the configuration session lifecycle for a
// single provider: the initial option load, dependency-triggered
// refreshes, and the final submit.
//
// A Session owns its working state exclusively. The option resolution
// logic itself lives in pkg/options; the session coordinates it around
// the two service calls and keeps the single most-recent network error
// for the presentation layer to display.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/EnvForge/envforge/pkg/options"
	"github.com/EnvForge/envforge/pkg/provider"
)

// SubmitFlags are the provider-level flags attached to a final
// configure call.
type SubmitFlags struct {
	// ReuseMachine requests reusing a single machine across
	// workspaces. Nil means the capability does not apply.
	ReuseMachine *bool
	// UseAsDefault makes the provider the default after configuring.
	UseAsDefault bool
}

// ConfigService is the provider-configuration service as the session
// sees it. DryRunOptions computes the resolvable option set for a
// candidate configuration without side effects; Configure commits one.
type ConfigService interface {
	DryRunOptions(ctx context.Context, providerID string, opts map[string]string) (provider.OptionSet, error)
	Configure(ctx context.Context, providerID string, opts map[string]string, flags SubmitFlags) error
}

// Invalidator is notified after a successful configure so reader-side
// provider queries observe the update.
type Invalidator interface {
	InvalidateProvider(providerID string) error
}

// Config configures a Session.
type Config struct {
	ProviderID string
	Service    ConfigService
	// Groups are the declared option groups from the provider schema.
	Groups []provider.OptionGroup
	// Invalidator is optional.
	Invalidator Invalidator
}

// Session drives the configuration of one provider. All methods are
// safe for concurrent use; a refresh initiated later always wins over
// one initiated earlier, regardless of completion order.
type Session struct {
	providerID  string
	service     ConfigService
	groups      []provider.OptionGroup
	invalidator Invalidator

	mu         sync.Mutex
	loaded     bool
	complete   bool
	optionSet  provider.OptionSet
	values     map[string]string
	refreshSeq uint64
	lastErr    error
}

// NewSession creates a session for the given provider.
func NewSession(config *Config) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.ProviderID == "" {
		return nil, fmt.Errorf("provider id cannot be empty")
	}
	if config.Service == nil {
		return nil, fmt.Errorf("config service cannot be nil")
	}

	return &Session{
		providerID:  config.ProviderID,
		service:     config.Service,
		groups:      config.Groups,
		invalidator: config.Invalidator,
	}, nil
}

// Load issues the initial dry-run with an empty configuration and
// installs the resulting option set. Single attempt, no retry.
func (s *Session) Load(ctx context.Context) error {
	set, err := s.service.DryRunOptions(ctx, s.providerID, map[string]string{})
	if err != nil {
		loadErr := &LoadError{Err: err}
		s.mu.Lock()
		s.lastErr = loadErr
		s.mu.Unlock()
		return loadErr
	}

	s.mu.Lock()
	s.optionSet = set
	s.values = set.Values()
	s.loaded = true
	s.lastErr = nil
	s.mu.Unlock()

	return nil
}

// Refresh re-queries the option set after an edit of changedID.
//
// The working configuration is built from formValues, descendant values
// of changedID are stripped, and the rest goes into a dry-run. On
// success the response replaces the option set and the baseline values
// are reset to exactly the server-reported ones. On failure both stay
// at their last good generation.
//
// If a later Refresh is initiated while this one is in flight, this
// one's response is discarded and ErrSuperseded returned: the visible
// state always corresponds to the most recently initiated edit.
func (s *Session) Refresh(ctx context.Context, changedID string, formValues map[string]interface{}) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.complete {
		s.mu.Unlock()
		return ErrComplete
	}

	s.refreshSeq++
	seq := s.refreshSeq

	working := options.FilterValues(formValues, s.optionSet)
	options.StripChildren(working, s.optionSet, changedID)
	s.mu.Unlock()

	set, err := s.service.DryRunOptions(ctx, s.providerID, working)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.refreshSeq {
		return ErrSuperseded
	}

	if err != nil {
		refreshErr := &RefreshError{Err: err}
		s.lastErr = refreshErr
		return refreshErr
	}

	s.optionSet = set
	s.values = set.Values()
	s.lastErr = nil
	return nil
}

// Submit validates, filters and commits the configuration.
//
// Validation failures are returned without any network call and without
// touching the error slot. On success the session is complete and the
// provider's cached queries are invalidated; on failure the session
// stays open for another attempt.
func (s *Session) Submit(ctx context.Context, formValues map[string]interface{}, flags SubmitFlags) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.complete {
		s.mu.Unlock()
		return ErrComplete
	}

	filtered := options.FilterValues(formValues, s.optionSet)

	if err := validate(filtered, s.optionSet); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if err := s.service.Configure(ctx, s.providerID, filtered, flags); err != nil {
		submitErr := &SubmitError{Err: err}
		s.mu.Lock()
		s.lastErr = submitErr
		s.mu.Unlock()
		return submitErr
	}

	s.mu.Lock()
	s.complete = true
	s.values = filtered
	s.mu.Unlock()

	if s.invalidator != nil {
		if err := s.invalidator.InvalidateProvider(s.providerID); err != nil {
			return fmt.Errorf("configured, but failed to invalidate cached queries: %w", err)
		}
	}

	return nil
}

// validate checks that every required option has a value. Caller holds
// the session mutex.
func validate(values map[string]string, set provider.OptionSet) error {
	for _, opt := range set.Sorted() {
		if !opt.Required {
			continue
		}
		if values[opt.ID] == "" {
			return &ValidationError{Option: opt.ID, Reason: "required option is not set"}
		}
	}
	return nil
}

// Classify recomputes the presentation partition from the current
// option set and the declared groups. Derived state is never cached;
// callers re-run this whenever the option set changes.
func (s *Session) Classify() *options.Classification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return options.Classify(s.optionSet.Sorted(), s.groups)
}

// OptionSet returns the current option set generation.
func (s *Session) OptionSet() provider.OptionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optionSet
}

// Values returns a copy of the baseline values of the current
// generation.
func (s *Session) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(s.values))
	for key, value := range s.values {
		values[key] = value
	}
	return values
}

// Loaded reports whether the initial load succeeded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Complete reports whether the session submitted successfully.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

// Err returns the most recent network error, or nil. Validation errors
// are field-scoped and never land here.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
