package options

import (
	"github.com/EnvForge/envforge/pkg/provider"
)

// StripChildren removes from config the values of every option reachable
// from changedID through the children relation, transitively.
//
// When a parent option's value changes, values previously entered for
// its dependent options only existed because of the old parent value;
// resubmitting them would pin stale state. The server recomputes fresh
// child options on the next dry-run. The value of changedID itself is
// kept.
//
// The walk carries a visited set so a malformed schema with a cycle in
// the children relation still terminates.
func StripChildren(config map[string]string, set provider.OptionSet, changedID string) {
	visited := map[string]bool{changedID: true}
	stripChildren(config, set, changedID, visited)
}

func stripChildren(config map[string]string, set provider.OptionSet, id string, visited map[string]bool) {
	opt, ok := set[id]
	if !ok || opt == nil {
		return
	}

	for _, child := range opt.Children {
		if visited[child] {
			continue
		}
		visited[child] = true

		delete(config, child)
		stripChildren(config, set, child, visited)
	}
}
