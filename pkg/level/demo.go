package level

// DemoLevel returns a small hand-written level used by tests and by the
// console client's offline mode: a locked Victorian study with a key
// hidden under the rug.
func DemoLevel() *Level {
	return &Level{
		ID: "victorian_study",
		InitialState: FlagSet{
			"rug_lifted":  false,
			"has_key":     false,
			"clock_read":  false,
			"door_open":   false,
			"key_visible": false,
		},
		Room: Room{
			BackgroundImage: "",
			Objects: []InteractiveObject{
				{
					ID:   "rug",
					Area: Area{X: 40, Y: 70, Width: 25, Height: 15},
					Text: []TextVariant{
						{
							Content:   "The rug lies askew. Something glints beneath its corner.",
							Condition: &Condition{RequiredTrue: []string{"rug_lifted"}},
						},
						{Content: "A threadbare Persian rug covers the floorboards."},
					},
					Options: []Option{
						{
							Label:     "Lift the rug",
							Action:    ActionNone,
							Condition: &Condition{RequiredFalse: []string{"rug_lifted"}},
							Effects:   &Effect{SetTrue: []string{"rug_lifted", "key_visible"}},
						},
						{Label: "Leave it", Action: ActionNone},
					},
				},
				{
					ID:               "brass_key",
					Area:             Area{X: 48, Y: 78, Width: 6, Height: 5},
					VisibleCondition: &Condition{RequiredTrue: []string{"key_visible"}},
					Text: []TextVariant{
						{Content: "A small brass key, cold to the touch."},
					},
					Options: []Option{
						{
							Label:   "Take the key",
							Action:  ActionNone,
							Effects: &Effect{SetTrue: []string{"has_key"}, SetFalse: []string{"key_visible"}},
						},
					},
				},
				{
					ID:   "clock",
					Area: Area{X: 10, Y: 20, Width: 12, Height: 40},
					Text: []TextVariant{
						{Content: "A grandfather clock, frozen at midnight. Twelve chimes for twelve locks, reads an engraving."},
					},
					Options: []Option{
						{
							Label:   "Study the clock face",
							Action:  ActionNone,
							Effects: &Effect{SetTrue: []string{"clock_read"}},
						},
					},
				},
				{
					ID:   "door",
					Area: Area{X: 75, Y: 25, Width: 18, Height: 55},
					Text: []TextVariant{
						{
							Content:   "The brass key turns with a satisfying click.",
							Condition: &Condition{RequiredTrue: []string{"has_key"}},
						},
						{Content: "A heavy oak door, locked from the outside."},
					},
					Options: []Option{
						{
							Label:     "Unlock the door and leave",
							Action:    ActionFinish,
							Condition: &Condition{RequiredTrue: []string{"has_key", "clock_read"}},
							Effects:   &Effect{SetTrue: []string{"door_open"}},
						},
						{
							Label:     "Force the lock",
							Action:    ActionFail,
							Condition: &Condition{RequiredFalse: []string{"has_key"}},
						},
						{Label: "Step back", Action: ActionNone},
					},
				},
			},
		},
	}
}
