package statblock

// Basic5e returns the built-in layout modeled on the classic 5th-edition
// statblock: identity header, core defenses, ability table, secondary
// properties, then traits, spellcasting, and action sections.
func Basic5e() *Layout {
	return &Layout{
		Name:        "Basic 5e",
		ColumnWidth: "400px",
		Blocks: []Item{
			{
				Type: TypeInline,
				Nested: []Item{
					{Type: TypeImage, Properties: []string{"image"}, Conditioned: true},
					{
						Type: TypeGroup,
						Nested: []Item{
							{Type: TypeHeading, Properties: []string{"name"}},
							{Type: TypeSubheading, Properties: []string{"size", "type", "subtype", "alignment"}},
						},
					},
				},
				HasRule: true,
			},
			{
				Type: TypeGroup,
				Nested: []Item{
					{Type: TypeProperty, Heading: "Armor Class", Properties: []string{"ac"}},
					{Type: TypeProperty, Heading: "Hit Points", Properties: []string{"hp", "hit_dice"}},
					{Type: TypeProperty, Heading: "Speed", Properties: []string{"speed"}},
				},
				HasRule: true,
			},
			{Type: TypeTable, Properties: []string{"stats"}, Headers: []string{"STR", "DEX", "CON", "INT", "WIS", "CHA"}, HasRule: true},
			{
				Type: TypeGroup,
				Nested: []Item{
					{Type: TypeSaves, Heading: "Saving Throws", Properties: []string{"saves"}, Conditioned: true},
					{Type: TypeSaves, Heading: "Skills", Properties: []string{"skillsaves"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Damage Vulnerabilities", Properties: []string{"damage_vulnerabilities"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Damage Resistances", Properties: []string{"damage_resistances"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Damage Immunities", Properties: []string{"damage_immunities"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Condition Immunities", Properties: []string{"condition_immunities"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Senses", Properties: []string{"senses"}, Conditioned: true},
					{Type: TypeProperty, Heading: "Languages", Properties: []string{"languages"}, Fallback: "—"},
					{Type: TypeProperty, Heading: "Challenge", Properties: []string{"cr"}, Conditioned: true},
				},
				HasRule: true,
			},
			{Type: TypeTraits, Properties: []string{"traits"}, Conditioned: true},
			{Type: TypeSpells, Heading: "Spellcasting", Properties: []string{"spells"}, Conditioned: true},
			{Type: TypeTraits, Heading: "Actions", Properties: []string{"actions"}, Conditioned: true},
			{Type: TypeTraits, Heading: "Bonus Actions", Properties: []string{"bonus_actions"}, Conditioned: true},
			{Type: TypeTraits, Heading: "Reactions", Properties: []string{"reactions"}, Conditioned: true},
			{
				Type:           TypeTraits,
				Heading:        "Legendary Actions",
				Properties:     []string{"legendary_actions"},
				Conditioned:    true,
				SubheadingText: "{{monster}} can take 3 legendary actions, choosing from the options below. Only one legendary action can be used at a time and only at the end of another creature's turn. {{monster}} regains spent legendary actions at the start of its turn.",
			},
		},
	}
}
