package importer

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
)

// hitDie maps creature size to its hit die, used to reconstruct the hit
// point formula the tetracube generator derives rather than stores.
var hitDie = map[string]int{
	"tiny": 4, "small": 6, "medium": 8,
	"large": 10, "huge": 12, "gargantuan": 20,
}

// Tetracube imports creatures saved by the tetra-cube statblock generator:
// string-typed ability scores ("strPoints"), derived hit points, and
// per-sense distance fields.
type Tetracube struct{}

// Name implements Importer.
func (*Tetracube) Name() string { return "tetracube" }

// Accepts implements Importer.
func (*Tetracube) Accepts(data []byte) bool {
	j := gjson.ParseBytes(data)
	return j.Get("name").Type == gjson.String && j.Get("strPoints").Exists()
}

// Import implements Importer.
func (*Tetracube) Import(data []byte) (monster.Monster, error) {
	j := gjson.ParseBytes(data)
	if !j.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "tetracube document must be a JSON object")
	}
	name := j.Get("name").String()
	if name == "" {
		return nil, errors.New(errors.ErrCodeMissingField, "creature has no name")
	}
	if err := requireAbilities(j, [6]string{
		"strPoints", "dexPoints", "conPoints", "intPoints", "wisPoints", "chaPoints",
	}); err != nil {
		return nil, err
	}

	scores := []any{
		j.Get("strPoints").Float(), j.Get("dexPoints").Float(), j.Get("conPoints").Float(),
		j.Get("intPoints").Float(), j.Get("wisPoints").Float(), j.Get("chaPoints").Float(),
	}

	m := monster.Monster{
		"name":      name,
		"size":      titleAbility(j.Get("size").String()),
		"type":      creatureTypeWithTag(j),
		"alignment": j.Get("alignment").String(),
		"ac":        tetracubeAC(j),
		"hp":        tetracubeHP(j, scores),
		"speed":     tetracubeSpeed(j),
		"stats":     scores,
		"cr":        j.Get("cr").String(),
	}

	setIfString(m, "senses", tetracubeSenses(j))
	setIfString(m, "languages", tetracubeLanguages(j))
	setIfString(m, "damage_resistances", joinDamageTypes(j, "resistant"))
	setIfString(m, "damage_immunities", joinDamageTypes(j, "immune"))
	setIfString(m, "damage_vulnerabilities", joinDamageTypes(j, "vulnerable"))
	setIfString(m, "condition_immunities", strings.Join(stringList(j.Get("conditions")), ", "))

	setIfList(m, "traits", traitList(j.Get("abilities")))
	setIfList(m, "actions", traitList(j.Get("actions")))
	setIfList(m, "reactions", traitList(j.Get("reactions")))
	setIfList(m, "legendary_actions", traitList(j.Get("legendaries")))

	return m, nil
}

func creatureTypeWithTag(j gjson.Result) string {
	base := j.Get("type").String()
	if tag := j.Get("tag").String(); tag != "" {
		return fmt.Sprintf("%s (%s)", base, tag)
	}
	return base
}

func tetracubeAC(j gjson.Result) string {
	if desc := j.Get("otherArmorDesc").String(); desc != "" && j.Get("armorName").String() == "other" {
		return desc
	}
	dexMod := abilityMod(int(j.Get("dexPoints").Int()))
	ac := 10 + dexMod
	note := ""
	if nat := int(j.Get("natArmorBonus").Int()); nat > 0 && j.Get("armorName").String() == "natural armor" {
		ac += nat
		note = "natural armor"
	}
	if j.Get("shieldBonus").Int() > 0 {
		ac += int(j.Get("shieldBonus").Int())
		if note != "" {
			note += ", "
		}
		note += "shield"
	}
	if note != "" {
		return fmt.Sprintf("%d (%s)", ac, note)
	}
	return fmt.Sprintf("%d", ac)
}

// tetracubeHP reconstructs "45 (6d10+12)" from the hit dice count, the size
// die, and the constitution modifier.
func tetracubeHP(j gjson.Result, scores []any) string {
	dice := int(j.Get("hitDice").Int())
	if dice <= 0 {
		return j.Get("hpText").String()
	}
	die := hitDie[strings.ToLower(j.Get("size").String())]
	if die == 0 {
		die = 8
	}
	conMod := abilityMod(int(scores[2].(float64)))
	avg := dice*(die/2) + dice*conMod + dice/2
	formula := fmt.Sprintf("%dd%d", dice, die)
	if bonus := dice * conMod; bonus != 0 {
		formula = fmt.Sprintf("%s%+d", formula, bonus)
	}
	return fmt.Sprintf("%d (%s)", avg, formula)
}

func tetracubeSpeed(j gjson.Result) string {
	parts := []string{fmt.Sprintf("%s ft.", nonZeroOr(j.Get("speed").String(), "30"))}
	for _, mode := range []string{"burrow", "climb", "fly", "swim"} {
		if v := j.Get(mode + "Speed"); v.Int() > 0 {
			parts = append(parts, fmt.Sprintf("%s %d ft.", mode, v.Int()))
		}
	}
	return strings.Join(parts, ", ")
}

func tetracubeSenses(j gjson.Result) string {
	var parts []string
	for _, sense := range []string{"blindsight", "darkvision", "tremorsense", "truesight"} {
		if v := j.Get(sense); v.Int() > 0 {
			parts = append(parts, fmt.Sprintf("%s %d ft.", sense, v.Int()))
		}
	}
	return strings.Join(parts, ", ")
}

func tetracubeLanguages(j gjson.Result) string {
	var parts []string
	j.Get("languages").ForEach(func(_, l gjson.Result) bool {
		if l.Type == gjson.String {
			parts = append(parts, l.String())
		} else if name := l.Get("name").String(); name != "" {
			parts = append(parts, name)
		}
		return true
	})
	if telepathy := j.Get("telepathy"); telepathy.Int() > 0 {
		parts = append(parts, fmt.Sprintf("telepathy %d ft.", telepathy.Int()))
	}
	return strings.Join(parts, ", ")
}

func joinDamageTypes(j gjson.Result, kind string) string {
	var parts []string
	j.Get("damagetypes").ForEach(func(_, d gjson.Result) bool {
		if d.Get("type").String() == kind {
			parts = append(parts, d.Get("name").String())
		}
		return true
	})
	return strings.Join(parts, ", ")
}

func abilityMod(score int) int {
	mod := (score - 10) / 2
	if score < 10 && (score-10)%2 != 0 {
		mod--
	}
	return mod
}

func nonZeroOr(s, def string) string {
	if s == "" || s == "0" {
		return def
	}
	return s
}
