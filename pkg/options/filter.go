package options

import (
	"github.com/EnvForge/envforge/pkg/provider"
)

// FilterValues projects raw form values down to the keys recognized by
// the option set, coercing each value to its canonical string form.
//
// Keys absent from the set are dropped even when defined: the form
// carries transient fields (submit flags, UI state) that are not real
// configuration options. Nil values are dropped too, so unset optional
// fields never reach the wire. The result is safe to feed back through
// FilterValues; doing so is a no-op.
func FilterValues(values map[string]interface{}, set provider.OptionSet) map[string]string {
	filtered := make(map[string]string, len(values))

	for key, value := range values {
		if value == nil {
			continue
		}
		if _, ok := set[key]; !ok {
			continue
		}
		filtered[key] = provider.Stringify(value)
	}

	return filtered
}

// FilterStrings is FilterValues for an already-stringified map, used
// when re-filtering a working configuration after a strip.
func FilterStrings(values map[string]string, set provider.OptionSet) map[string]string {
	filtered := make(map[string]string, len(values))

	for key, value := range values {
		if _, ok := set[key]; !ok {
			continue
		}
		filtered[key] = value
	}

	return filtered
}
