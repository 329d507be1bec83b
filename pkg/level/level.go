package level

// FlagSet is a dictionary of boolean puzzle-progress flags.
// Keys are arbitrary strings (e.g. "has_keycard", "door_open").
// A key that is absent reads as false.
type FlagSet map[string]bool

// Clone returns an independent copy of the flag set.
func (f FlagSet) Clone() FlagSet {
	out := make(FlagSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Condition gates visibility of hotspots, text variants and options.
// All flags in RequiredTrue must be true and all flags in RequiredFalse
// must be false (or absent) for the condition to be met. A nil Condition
// is always met.
type Condition struct {
	RequiredTrue  []string `json:"requiredTrue,omitempty"`
	RequiredFalse []string `json:"requiredFalse,omitempty"`
}

// Effect describes flag changes applied when an option is selected.
type Effect struct {
	SetTrue  []string `json:"setTrue,omitempty"`
	SetFalse []string `json:"setFalse,omitempty"`
}

// TextVariant is one version of a hotspot's narrative text. The first
// variant in document order whose condition is met is displayed.
type TextVariant struct {
	Content   string     `json:"content"`
	Condition *Condition `json:"condition,omitempty"`
}

// Option actions. ActionNone only applies effects; ActionFinish wins the
// level, ActionFail loses it, ActionNext advances to the following room.
const (
	ActionNone   = "none"
	ActionNext   = "next"
	ActionFail   = "fail"
	ActionFinish = "finish"
)

// Option is a choice offered to the player inside an open interaction.
type Option struct {
	Label     string     `json:"label"`
	Action    string     `json:"action"` // one of the Action constants; defaults to "none"
	Effects   *Effect    `json:"effects,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

// Area is a hotspot rectangle in percentage space. x/y are the top-left
// corner; all four values are 0-100.
type Area struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InteractiveObject is a clickable hotspot overlaid on the room background.
type InteractiveObject struct {
	ID               string        `json:"id"`
	Area             Area          `json:"area"`
	Image            string        `json:"image,omitempty"`
	Video            string        `json:"video,omitempty"` // takes priority over Image
	Text             []TextVariant `json:"text"`
	Options          []Option      `json:"options"`
	VisibleCondition *Condition    `json:"visibleCondition,omitempty"`
}

// Room is the visual and interactive definition of one scene.
type Room struct {
	BackgroundImage string              `json:"backgroundImage"`
	Objects         []InteractiveObject `json:"objects"`
}

// Level combines a room layout with its starting flag set. InitialState
// must contain every flag referenced anywhere in the room; the validator
// enforces this.
type Level struct {
	ID           string  `json:"id"`
	Room         Room    `json:"room"`
	InitialState FlagSet `json:"initialState"`
}
