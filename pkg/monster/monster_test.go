package monster

import "testing"

func TestName(t *testing.T) {
	if got := (Monster{"name": "Goblin"}).Name(); got != "Goblin" {
		t.Errorf("Name = %q", got)
	}
	if got := (Monster{}).Name(); got != "Creature" {
		t.Errorf("Name fallback = %q", got)
	}
}

func TestString(t *testing.T) {
	m := Monster{
		"ac":     float64(15),
		"cr":     0.25,
		"speed":  "30 ft., fly 60 ft.",
		"types":  []any{"fiend", "devil"},
		"nested": []string{"a", "b"},
	}

	tests := []struct {
		field string
		want  string
	}{
		{"ac", "15"},
		{"cr", "0.25"},
		{"speed", "30 ft., fly 60 ft."},
		{"types", "fiend, devil"},
		{"nested", "a, b"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := m.String(tt.field); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestHasContent(t *testing.T) {
	m := Monster{
		"empty_string": "",
		"string":       "x",
		"empty_list":   []any{},
		"list":         []any{1},
		"zero":         float64(0),
		"int":          3,
		"flag_on":      true,
		"flag_off":     false,
	}

	tests := []struct {
		field string
		want  bool
	}{
		{"missing", false},
		{"empty_string", false},
		{"string", true},
		{"empty_list", false},
		{"list", true},
		{"zero", true}, // zero is still a number
		{"int", true},
		{"flag_on", true},
		{"flag_off", false},
	}
	for _, tt := range tests {
		if got := m.HasContent(tt.field); got != tt.want {
			t.Errorf("HasContent(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}

func TestTraitsCoercion(t *testing.T) {
	m := Monster{
		"typed": []Trait{{Name: "Amphibious", Desc: "Can breathe air and water."}},
		"maps": []any{
			map[string]any{"name": "Pack Tactics", "desc": "Advantage when allies are close."},
			map[string]any{"name": "Keen Smell", "text": "Advantage on smell checks."},
		},
		"pairs": []any{[]any{"Sunlight Sensitivity", "Disadvantage in sunlight."}},
		"bad":   []any{42},
	}

	got, err := m.Traits("typed")
	if err != nil || len(got) != 1 || got[0].Name != "Amphibious" {
		t.Errorf("typed traits: %v %v", got, err)
	}

	got, err = m.Traits("maps")
	if err != nil || len(got) != 2 {
		t.Fatalf("map traits: %v %v", got, err)
	}
	if got[1].Desc != "Advantage on smell checks." {
		t.Errorf("text fallback not applied: %+v", got[1])
	}

	got, err = m.Traits("pairs")
	if err != nil || len(got) != 1 || got[0].Name != "Sunlight Sensitivity" {
		t.Errorf("pair traits: %v %v", got, err)
	}

	if _, err = m.Traits("bad"); err == nil {
		t.Error("malformed entry should return an error")
	}

	// Absent and empty fields are not errors.
	if got, err := m.Traits("missing"); err != nil || got != nil {
		t.Errorf("missing field: %v %v", got, err)
	}
}

func TestLayoutHints(t *testing.T) {
	m := Monster{
		"columns":      float64(3),
		"columnWidth":  float64(420),
		"columnHeight": float64(700),
		"forceColumns": true,
	}
	if m.Columns() != 3 {
		t.Errorf("Columns = %d", m.Columns())
	}
	if m.ColumnWidth("400px") != "420px" {
		t.Errorf("ColumnWidth = %q", m.ColumnWidth("400px"))
	}
	if m.ColumnHeight() != 700 {
		t.Errorf("ColumnHeight = %v", m.ColumnHeight())
	}
	if !m.ForceColumns() {
		t.Error("ForceColumns should be true")
	}

	empty := Monster{}
	if empty.Columns() != 0 || empty.ColumnHeight() != 0 || empty.ForceColumns() {
		t.Error("absent hints should be zero values")
	}
	if empty.ColumnWidth("400px") != "400px" {
		t.Errorf("ColumnWidth default = %q", empty.ColumnWidth("400px"))
	}

	literal := Monster{"columnWidth": "75%"}
	if literal.ColumnWidth("400px") != "75%" {
		t.Errorf("literal width = %q", literal.ColumnWidth("400px"))
	}
}

func TestList(t *testing.T) {
	m := Monster{"xs": []string{"a"}, "n": 1}
	if l, ok := m.List("xs"); !ok || len(l) != 1 {
		t.Errorf("List(xs) = %v %v", l, ok)
	}
	if _, ok := m.List("n"); ok {
		t.Error("scalar field should not be a list")
	}
	if _, ok := m.List("missing"); ok {
		t.Error("missing field should not be a list")
	}
}
