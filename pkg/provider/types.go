// Package provider defines the data model for development-environment
// providers: the option schema published by a provider, the option sets
// computed by the provider-configuration service, and the declared
// grouping of options for presentation.
//
// An Option is a single named configuration field. An OptionSet is the
// set of options currently resolvable given a candidate configuration;
// it is server-computed and replaced wholesale by every dry-run query.
// OptionGroups are declared by the provider schema and match option ids
// by (possibly wildcarded) name patterns.
package provider

import (
	"fmt"
	"sort"
	"strconv"
)

// Option is a single configuration field declared by a provider.
// Options are immutable per fetch; a new dry-run produces a new
// generation with possibly different children and values.
type Option struct {
	// ID is the option identifier and the OptionSet map key. It is
	// filled from the key when reading a set; servers omit it inside
	// the option object.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Description is shown next to the input field.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Type is one of "string", "boolean", "number". Empty means string.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Default is the default value offered to the user.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	// Value is the current server-reported value, filled by dry-run.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Required marks options that must be set before configuring.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	// Password marks options whose input should be masked.
	Password bool `json:"password,omitempty" yaml:"password,omitempty"`
	// Hidden options are never prompted for.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	// Enum restricts the value to a fixed set.
	Enum []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	// Suggestions are non-binding completion values.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	// Children lists option ids that only resolve as a consequence of
	// this option's value. Editing this option invalidates them.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	// Condition is an optional expression over the current values that
	// decides whether the option is presented at all.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// OptionSet maps option id to option, as returned by a dry-run query.
type OptionSet map[string]*Option

// Sorted returns the options ordered by id, with each option's ID field
// populated from its map key. Map iteration order is not stable, so all
// presentation and classification goes through this.
func (s OptionSet) Sorted() []*Option {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	opts := make([]*Option, 0, len(ids))
	for _, id := range ids {
		opt := s[id]
		opt.ID = id
		opts = append(opts, opt)
	}
	return opts
}

// Values returns the server-reported values of the set, omitting empty
// ones. After a successful dry-run these become the form baseline.
func (s OptionSet) Values() map[string]string {
	values := make(map[string]string)
	for id, opt := range s {
		if opt != nil && opt.Value != "" {
			values[id] = opt.Value
		}
	}
	return values
}

// OptionGroup is a named collection of options presented together.
type OptionGroup struct {
	// Name is the group heading.
	Name string `json:"name" yaml:"name"`
	// Options lists the id patterns belonging to the group. A pattern
	// may contain the wildcard token '*'.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	// DefaultVisible controls whether the group starts expanded.
	DefaultVisible bool `json:"defaultVisible,omitempty" yaml:"defaultVisible,omitempty"`
}

// Capabilities are provider-level feature flags from the schema.
type Capabilities struct {
	// MachineReuse indicates the provider can reuse a single machine
	// across workspaces, enabling the reuse-machine submit flag.
	MachineReuse bool `json:"machineReuse,omitempty" yaml:"machineReuse,omitempty"`
	// SingleMachine indicates the provider always runs one machine.
	SingleMachine bool `json:"singleMachine,omitempty" yaml:"singleMachine,omitempty"`
}

// Schema is the provider's declared metadata, fetched separately from
// the option set and stable across dry-runs.
type Schema struct {
	Name         string        `json:"name" yaml:"name"`
	Version      string        `json:"version,omitempty" yaml:"version,omitempty"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	DocsURL      string        `json:"docsUrl,omitempty" yaml:"docsUrl,omitempty"`
	OptionGroups []OptionGroup `json:"optionGroups,omitempty" yaml:"optionGroups,omitempty"`
	Capabilities Capabilities  `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// Stringify converts a raw form value to its canonical string form for
// transmission. Booleans become "true"/"false", numbers their decimal
// representation. Nil is the caller's problem; filter it out first.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}
