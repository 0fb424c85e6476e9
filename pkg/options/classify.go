package options

import (
	"github.com/EnvForge/envforge/pkg/provider"
)

// Classification is the partition of an option set into presentation
// buckets. Every input option lands in exactly one bucket; within a
// bucket, options keep their input order.
type Classification struct {
	// Required holds required options not claimed by any group.
	Required []*provider.Option
	// Groups maps group name to its member options. Buckets are
	// created lazily; a declared group with no matching options has
	// no entry.
	Groups map[string][]*provider.Option
	// GroupOrder lists group names in first-seen order of their
	// members, which is the order the form presents them in.
	GroupOrder []string
	// Other holds everything else.
	Other []*provider.Option
}

// Classify partitions options into required, grouped and other buckets.
//
// Groups are scanned in declared order and the first group with a
// matching pattern claims the option; group membership takes precedence
// over the required flag. Options claimed by no group fall into Required
// or Other depending on their flag.
func Classify(opts []*provider.Option, groups []provider.OptionGroup) *Classification {
	result := &Classification{
		Groups: make(map[string][]*provider.Option),
	}

	for _, opt := range opts {
		if name, ok := matchGroup(opt.ID, groups); ok {
			if _, exists := result.Groups[name]; !exists {
				result.GroupOrder = append(result.GroupOrder, name)
			}
			result.Groups[name] = append(result.Groups[name], opt)
			continue
		}

		if opt.Required {
			result.Required = append(result.Required, opt)
			continue
		}

		result.Other = append(result.Other, opt)
	}

	return result
}

// Count returns the total number of classified options.
func (c *Classification) Count() int {
	n := len(c.Required) + len(c.Other)
	for _, opts := range c.Groups {
		n += len(opts)
	}
	return n
}

// matchGroup returns the name of the first declared group whose pattern
// list matches the option id.
func matchGroup(id string, groups []provider.OptionGroup) (string, bool) {
	for _, group := range groups {
		for _, pattern := range group.Options {
			if Matches(pattern, id) {
				return group.Name, true
			}
		}
	}
	return "", false
}
