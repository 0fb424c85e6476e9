// Package options implements the option resolution engine: matching
// declared group patterns against option ids, partitioning an option set
// into presentation buckets, invalidating dependent option values after
// a parent edit, and projecting raw form values down to the wire shape.
//
// Everything in this package is a pure function over its explicit
// inputs; the network lifecycle around it lives in pkg/session.
package options

import "strings"

// Wildcard is the single token with special meaning in group patterns.
const Wildcard = "*"

// Matches reports whether a group pattern matches an option id.
//
// A pattern without a wildcard matches by exact string equality. With
// wildcards, each '*' matches any sequence of characters, including the
// empty one, and the pattern is anchored at both ends. Every non-'*'
// character is literal; there is no escaping and no regex semantics.
func Matches(pattern, id string) bool {
	if !strings.Contains(pattern, Wildcard) {
		return pattern == id
	}

	segments := strings.Split(pattern, Wildcard)

	// Anchor the leading literal.
	if !strings.HasPrefix(id, segments[0]) {
		return false
	}
	id = id[len(segments[0]):]

	// Anchor the trailing literal.
	last := segments[len(segments)-1]
	if !strings.HasSuffix(id, last) {
		return false
	}
	id = id[:len(id)-len(last)]

	// Interior literals must occur in order in what remains.
	for _, segment := range segments[1 : len(segments)-1] {
		if segment == "" {
			continue
		}
		idx := strings.Index(id, segment)
		if idx < 0 {
			return false
		}
		id = id[idx+len(segment):]
	}

	return true
}
