// Package condition decides whether layout items appear for a given monster
// record, and evaluates the user-authored branch scripts of ifelse items in
// an isolated, discardable runtime.
package condition

import (
	"github.com/charmbracelet/log"

	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/statblock"
)

// Visible reports whether a layout item should appear for the monster.
//
// Rules, in order: an unconditioned item is always visible; a composite
// item is visible iff any child is; ifelse, javascript, and layout items are
// always visible (their own logic decides what to emit); an item with no
// declared properties is visible; otherwise at least one declared property
// must resolve to content (non-empty list, non-empty string, or any number
// including zero).
func Visible(item statblock.Item, m monster.Monster) bool {
	if !item.Conditioned {
		return true
	}
	if item.Composite() && len(item.Nested) > 0 {
		for _, child := range item.Nested {
			if Visible(child, m) {
				return true
			}
		}
		return false
	}
	switch item.Type {
	case statblock.TypeIfElse, statblock.TypeJavaScript, statblock.TypeLayout:
		return true
	}
	if len(item.Properties) == 0 {
		return true
	}
	for _, prop := range item.Properties {
		if m.HasContent(prop) {
			return true
		}
	}
	return false
}

// ChooseBranch selects the branch of an ifelse item to expand.
//
// It returns the index of the first branch whose condition evaluates true.
// Script failures are logged and treated as non-matching. When no condition
// matches, the final branch is selected only if its condition is empty (the
// explicit default); otherwise -1 is returned and the item contributes
// nothing.
func ChooseBranch(branches []statblock.Branch, m monster.Monster, plugin any, eval Evaluator, logger *log.Logger) int {
	if logger == nil {
		logger = log.Default()
	}
	for i, b := range branches {
		if b.Condition == "" {
			continue
		}
		ok, err := eval.Evaluate(b.Condition, map[string]any{
			"monster": map[string]any(m),
			"plugin":  plugin,
		})
		if err != nil {
			logger.Warn("condition script failed", "branch", i, "err", err)
			continue
		}
		if ok {
			return i
		}
	}
	if n := len(branches); n > 0 && branches[n-1].Condition == "" {
		return n - 1
	}
	return -1
}
