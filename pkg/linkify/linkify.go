// Package linkify resolves wiki-style cross-references embedded in layout
// text. It is a pure text transform: [[Fireball]] becomes Fireball and
// [[spells/fireball|Fireball]] becomes Fireball, with the target recorded
// nowhere — display surfaces that support live links wrap the result
// themselves.
package linkify

import "regexp"

// Linkifier rewrites cross-references in text. The context id identifies one
// render pass so implementations can scope any lookups they perform.
type Linkifier interface {
	Linkify(text, contextID string) string
}

var wikiLink = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

// Wiki resolves [[target]] and [[target|label]] references to their display
// label. It performs no lookups and never fails.
type Wiki struct{}

// Linkify replaces each wikilink with its label, or its target when no
// label is given.
func (Wiki) Linkify(text, contextID string) string {
	return wikiLink.ReplaceAllStringFunc(text, func(match string) string {
		parts := wikiLink.FindStringSubmatch(match)
		if parts[2] != "" {
			return parts[2]
		}
		return parts[1]
	})
}

// Null passes text through untouched.
type Null struct{}

// Linkify returns text unchanged.
func (Null) Linkify(text, contextID string) string { return text }
