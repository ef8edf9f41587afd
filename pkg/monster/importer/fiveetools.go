package importer

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
)

var sizeNames = map[string]string{
	"T": "Tiny", "S": "Small", "M": "Medium",
	"L": "Large", "H": "Huge", "G": "Gargantuan",
}

var alignmentNames = map[string]string{
	"L": "lawful", "N": "neutral", "C": "chaotic",
	"G": "good", "E": "evil", "U": "unaligned", "A": "any alignment",
}

// FiveEtools imports creatures in the 5etools bestiary format: single-letter
// size and alignment codes, structured ac/hp/speed objects, and trait
// entries split into paragraph lists.
type FiveEtools struct{}

// Name implements Importer.
func (*FiveEtools) Name() string { return "5etools" }

// Accepts implements Importer. The format is recognizable by its numeric
// top-level ability scores next to a name.
func (*FiveEtools) Accepts(data []byte) bool {
	j := gjson.ParseBytes(data)
	return j.Get("name").Type == gjson.String &&
		j.Get("str").Type == gjson.Number &&
		j.Get("cha").Type == gjson.Number
}

// Import implements Importer.
func (*FiveEtools) Import(data []byte) (monster.Monster, error) {
	j := gjson.ParseBytes(data)
	if !j.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "5etools document must be a JSON object")
	}
	name := j.Get("name").String()
	if name == "" {
		return nil, errors.New(errors.ErrCodeMissingField, "creature has no name")
	}
	if err := requireAbilities(j, [6]string{"str", "dex", "con", "int", "wis", "cha"}); err != nil {
		return nil, err
	}

	m := monster.Monster{
		"name":      name,
		"size":      decodeSize(j.Get("size")),
		"type":      decodeCreatureType(j.Get("type")),
		"alignment": decodeAlignment(j.Get("alignment")),
		"ac":        decodeAC(j.Get("ac")),
		"hp":        decodeHP(j.Get("hp")),
		"speed":     decodeSpeed(j.Get("speed")),
		"stats": []any{
			j.Get("str").Float(), j.Get("dex").Float(), j.Get("con").Float(),
			j.Get("int").Float(), j.Get("wis").Float(), j.Get("cha").Float(),
		},
		"cr": decodeCR(j.Get("cr")),
	}

	setIfString(m, "senses", strings.Join(stringList(j.Get("senses")), ", "))
	setIfString(m, "languages", strings.Join(stringList(j.Get("languages")), ", "))
	setIfString(m, "damage_immunities", strings.Join(stringList(j.Get("immune")), ", "))
	setIfString(m, "damage_resistances", strings.Join(stringList(j.Get("resist")), ", "))
	setIfString(m, "damage_vulnerabilities", strings.Join(stringList(j.Get("vulnerable")), ", "))
	setIfString(m, "condition_immunities", strings.Join(stringList(j.Get("conditionImmune")), ", "))

	if saves := decodeModifierMap(j.Get("save")); len(saves) > 0 {
		m["saves"] = saves
	}
	if skills := decodeModifierMap(j.Get("skill")); len(skills) > 0 {
		m["skillsaves"] = skills
	}

	setIfList(m, "traits", traitList(j.Get("trait")))
	setIfList(m, "actions", traitList(j.Get("action")))
	setIfList(m, "bonus_actions", traitList(j.Get("bonus")))
	setIfList(m, "reactions", traitList(j.Get("reaction")))
	setIfList(m, "legendary_actions", traitList(j.Get("legendary")))
	setIfList(m, "spells", decodeSpellcasting(j.Get("spellcasting")))

	return m, nil
}

func decodeSize(v gjson.Result) string {
	code := v.String()
	if v.IsArray() && len(v.Array()) > 0 {
		code = v.Array()[0].String()
	}
	if full, ok := sizeNames[code]; ok {
		return full
	}
	return code
}

func decodeCreatureType(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	base := v.Get("type").String()
	tags := stringList(v.Get("tags"))
	if len(tags) > 0 {
		return fmt.Sprintf("%s (%s)", base, strings.Join(tags, ", "))
	}
	return base
}

func decodeAlignment(v gjson.Result) string {
	parts := make([]string, 0, 2)
	v.ForEach(func(_, a gjson.Result) bool {
		if full, ok := alignmentNames[a.String()]; ok {
			parts = append(parts, full)
		}
		return true
	})
	return strings.Join(parts, " ")
}

func decodeAC(v gjson.Result) string {
	if !v.IsArray() || len(v.Array()) == 0 {
		return v.String()
	}
	first := v.Array()[0]
	if first.Type == gjson.Number {
		return first.String()
	}
	ac := first.Get("ac").String()
	from := stringList(first.Get("from"))
	if len(from) > 0 {
		return fmt.Sprintf("%s (%s)", ac, strings.Join(from, ", "))
	}
	return ac
}

func decodeHP(v gjson.Result) string {
	avg := v.Get("average")
	formula := v.Get("formula").String()
	switch {
	case avg.Exists() && formula != "":
		return fmt.Sprintf("%s (%s)", avg.String(), formula)
	case avg.Exists():
		return avg.String()
	default:
		return v.Get("special").String()
	}
}

func decodeSpeed(v gjson.Result) string {
	if v.Type == gjson.Number || v.Type == gjson.String {
		return v.String()
	}
	// Walk leads; the other modes follow in document order.
	parts := make([]string, 0, 4)
	if walk := v.Get("walk"); walk.Exists() {
		parts = append(parts, fmt.Sprintf("%s ft.", walk.String()))
	}
	v.ForEach(func(key, val gjson.Result) bool {
		mode := key.String()
		if mode == "walk" || mode == "canHover" {
			return true
		}
		if val.Type == gjson.Number {
			parts = append(parts, fmt.Sprintf("%s %s ft.", mode, val.String()))
		}
		return true
	})
	return strings.Join(parts, ", ")
}

func decodeCR(v gjson.Result) string {
	if v.Type == gjson.String || v.Type == gjson.Number {
		return v.String()
	}
	return v.Get("cr").String()
}

// decodeModifierMap turns {"dex": "+4"} maps into the saves list shape.
func decodeModifierMap(v gjson.Result) []any {
	if !v.IsObject() {
		return nil
	}
	var out []any
	v.ForEach(func(key, val gjson.Result) bool {
		out = append(out, map[string]any{
			"name":     titleAbility(key.String()),
			"modifier": val.String(),
		})
		return true
	})
	return out
}

// decodeSpellcasting flattens 5etools spellcasting entries into the raw
// spell-list shape: header lines followed by "level: spell, spell" lines.
func decodeSpellcasting(v gjson.Result) []any {
	if !v.IsArray() {
		return nil
	}
	var out []any
	v.ForEach(func(_, entry gjson.Result) bool {
		for _, h := range stringList(entry.Get("headerEntries")) {
			out = append(out, h)
		}
		entry.Get("spells").ForEach(func(level, group gjson.Result) bool {
			label := spellLevelLabel(level.String(), group)
			names := stringList(group.Get("spells"))
			if len(names) > 0 {
				out = append(out, fmt.Sprintf("%s: %s", label, strings.Join(names, ", ")))
			}
			return true
		})
		for _, mode := range []string{"will", "daily.1", "daily.3"} {
			names := stringList(entry.Get(mode))
			if len(names) == 0 {
				continue
			}
			label := "At will"
			if strings.HasPrefix(mode, "daily") {
				label = strings.TrimPrefix(mode, "daily.") + "/day each"
			}
			out = append(out, fmt.Sprintf("%s: %s", label, strings.Join(names, ", ")))
		}
		return true
	})
	return out
}

func spellLevelLabel(level string, group gjson.Result) string {
	if level == "0" {
		return "Cantrips (at will)"
	}
	suffix := "th"
	switch level {
	case "1":
		suffix = "st"
	case "2":
		suffix = "nd"
	case "3":
		suffix = "rd"
	}
	if slots := group.Get("slots"); slots.Exists() {
		return fmt.Sprintf("%s%s level (%s slots)", level, suffix, slots.String())
	}
	return fmt.Sprintf("%s%s level", level, suffix)
}

// stringList extracts the plain strings of an array, descending into the
// tagged {special}, {type,...} wrappers 5etools mixes in.
func stringList(v gjson.Result) []string {
	var out []string
	if v.Type == gjson.String {
		return []string{v.String()}
	}
	v.ForEach(func(_, e gjson.Result) bool {
		switch {
		case e.Type == gjson.String:
			out = append(out, e.String())
		case e.IsObject() && e.Get("special").Exists():
			out = append(out, e.Get("special").String())
		}
		return true
	})
	return out
}

func titleAbility(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func setIfString(m monster.Monster, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func setIfList(m monster.Monster, key string, value []any) {
	if len(value) > 0 {
		m[key] = value
	}
}
