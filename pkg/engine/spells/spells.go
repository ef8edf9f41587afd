// Package spells normalizes the semi-structured spell lists found in monster
// records. A raw list interleaves header strings ("Innate Spellcasting:",
// "The dragon casts the following:") with spell entries, which are either
// plain strings or single-key level→text maps ({"1st level (4 slots)":
// "shield, magic missile"}). Grouping folds the list into headed blocks the
// expander can render.
package spells

import (
	"fmt"
	"strings"

	"github.com/pellig/statblock/pkg/linkify"
)

// Entry is one spell line inside a group. Level is empty for flat entries.
type Entry struct {
	Level string `json:"level,omitempty"`
	Text  string `json:"spells"`
}

// Block is a headed run of spell entries.
type Block struct {
	Header string  `json:"header"`
	Spells []Entry `json:"spells"`
}

// Group folds a raw spell list into headed blocks.
//
// A string element is a header when it ends with ':' or contains no ':';
// headers are colon-terminated on output. Anything else is a spell entry
// appended to the current block. If the first entry arrives before any
// header, a block is synthesized with the header "<name> knows the following
// spells:". Map entries that cannot be destructured are dropped and folding
// continues. Empty input yields nil.
func Group(raw []any, name, contextID string, link linkify.Linkifier) []Block {
	if len(raw) == 0 {
		return nil
	}
	if link == nil {
		link = linkify.Null{}
	}

	var blocks []Block
	current := -1

	open := func(header string) {
		if !strings.HasSuffix(header, ":") {
			header += ":"
		}
		blocks = append(blocks, Block{Header: header})
		current = len(blocks) - 1
	}
	appendEntry := func(e Entry) {
		if current < 0 {
			open(fmt.Sprintf("%s knows the following spells", name))
		}
		blocks[current].Spells = append(blocks[current].Spells, e)
	}

	for _, elem := range raw {
		switch v := elem.(type) {
		case string:
			if isHeader(v) {
				open(v)
				continue
			}
			appendEntry(Entry{Text: link.Linkify(v, contextID)})
		case map[string]any:
			level, text, ok := destructure(v)
			if !ok {
				continue // malformed entry, drop and keep folding
			}
			appendEntry(Entry{Level: level, Text: link.Linkify(text, contextID)})
		case map[string]string:
			for level, text := range v {
				appendEntry(Entry{Level: level, Text: link.Linkify(text, contextID)})
				break
			}
		}
	}
	return blocks
}

// isHeader reports whether a string element introduces a new group.
func isHeader(s string) bool {
	return strings.HasSuffix(s, ":") || !strings.Contains(s, ":")
}

// destructure extracts the single level→text pair from a map entry.
func destructure(m map[string]any) (level, text string, ok bool) {
	for k, v := range m {
		s, isString := v.(string)
		if !isString {
			s = fmt.Sprintf("%v", v)
		}
		if k == "" || s == "" {
			return "", "", false
		}
		return k, s, true
	}
	return "", "", false
}
