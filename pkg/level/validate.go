package level

import (
	"encoding/json"
	"fmt"
)

// ObjectNames maps object id to the transient display name the generator
// attaches for image-prompt building. Names are not part of the Level
// contract and are stripped during normalization.
type ObjectNames map[string]string

// document mirrors Level but tolerates the extra fields generators attach.
// Decoding through it is the normalization pass: anything not listed here
// is dropped before the Level is considered canonical.
type document struct {
	ID           string  `json:"id"`
	InitialState FlagSet `json:"initialState"`
	Room         struct {
		BackgroundImage string `json:"backgroundImage"`
		Objects         []struct {
			ID               string        `json:"id"`
			Name             string        `json:"name"`
			Area             Area          `json:"area"`
			Image            string        `json:"image"`
			Video            string        `json:"video"`
			Text             []TextVariant `json:"text"`
			Options          []Option      `json:"options"`
			VisibleCondition *Condition    `json:"visibleCondition"`
		} `json:"objects"`
	} `json:"room"`
}

// ParseAndValidate decodes a raw generated document, strips fields foreign
// to the Level contract, and validates the result. The returned ObjectNames
// carry the stripped display names so callers can still derive image
// prompts from them.
func ParseAndValidate(data []byte) (*Level, ObjectNames, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("level document is not valid JSON: %w", err)
	}

	names := make(ObjectNames, len(doc.Room.Objects))
	lv := &Level{
		ID:           doc.ID,
		InitialState: doc.InitialState,
		Room: Room{
			BackgroundImage: doc.Room.BackgroundImage,
			Objects:         make([]InteractiveObject, 0, len(doc.Room.Objects)),
		},
	}
	if lv.InitialState == nil {
		lv.InitialState = FlagSet{}
	}
	for _, obj := range doc.Room.Objects {
		if obj.Name != "" {
			names[obj.ID] = obj.Name
		}
		lv.Room.Objects = append(lv.Room.Objects, InteractiveObject{
			ID:               obj.ID,
			Area:             obj.Area,
			Image:            obj.Image,
			Video:            obj.Video,
			Text:             obj.Text,
			Options:          obj.Options,
			VisibleCondition: obj.VisibleCondition,
		})
	}
	normalize(lv)

	if err := Validate(lv); err != nil {
		return nil, nil, err
	}
	return lv, names, nil
}

// normalize applies contract defaults: absent option actions become "none".
func normalize(lv *Level) {
	for i := range lv.Room.Objects {
		opts := lv.Room.Objects[i].Options
		for j := range opts {
			if opts[j].Action == "" {
				opts[j].Action = ActionNone
			}
		}
	}
}

// Validate checks a canonical Level against the document contract.
// Structural checks (shape, bounds, enums) run first; the cross-reference
// check for dangling flags only runs once the structure is sound, and its
// failure is reported as a SemanticError rather than a StructuralError.
// Validation is a fixed point: a Level that passes, passes again unchanged.
func Validate(lv *Level) error {
	if err := validateStructure(lv); err != nil {
		return err
	}
	return validateSemantics(lv)
}

func validateStructure(lv *Level) error {
	if lv.ID == "" {
		return structuralf(ViolationMissingField, "id", "level id is required")
	}
	if lv.InitialState == nil {
		return structuralf(ViolationMissingField, "initialState", "initial state is required")
	}
	if len(lv.Room.Objects) == 0 {
		return structuralf(ViolationEmptyList, "room.objects", "room must contain at least one interactive object")
	}

	seen := make(map[string]bool, len(lv.Room.Objects))
	for i, obj := range lv.Room.Objects {
		path := fmt.Sprintf("room.objects[%d]", i)
		if obj.ID == "" {
			return structuralf(ViolationMissingField, path+".id", "object id is required")
		}
		if seen[obj.ID] {
			return structuralf(ViolationDuplicateObjectID, path+".id", "object id %q is not unique within the room", obj.ID)
		}
		seen[obj.ID] = true

		if err := validateArea(obj.Area, path+".area"); err != nil {
			return err
		}
		if len(obj.Text) == 0 {
			return structuralf(ViolationEmptyList, path+".text", "object must have at least one text variant")
		}
		for j, tv := range obj.Text {
			tvPath := fmt.Sprintf("%s.text[%d]", path, j)
			if tv.Content == "" {
				return structuralf(ViolationMissingField, tvPath+".content", "text variant content is required")
			}
			if err := validateCondition(tv.Condition, tvPath+".condition"); err != nil {
				return err
			}
		}
		if len(obj.Options) == 0 {
			return structuralf(ViolationEmptyList, path+".options", "object must have at least one option")
		}
		for j, opt := range obj.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			if opt.Label == "" {
				return structuralf(ViolationMissingField, optPath+".label", "option label is required")
			}
			switch opt.Action {
			case ActionNone, ActionNext, ActionFail, ActionFinish:
			default:
				return structuralf(ViolationUnknownAction, optPath+".action", "unknown action %q", opt.Action)
			}
			if err := validateCondition(opt.Condition, optPath+".condition"); err != nil {
				return err
			}
			if err := validateEffectShape(opt.Effects, optPath+".effects"); err != nil {
				return err
			}
		}
		if err := validateCondition(obj.VisibleCondition, path+".visibleCondition"); err != nil {
			return err
		}
	}
	return nil
}

func validateArea(a Area, path string) error {
	for _, v := range []struct {
		name string
		val  float64
	}{{"x", a.X}, {"y", a.Y}, {"width", a.Width}, {"height", a.Height}} {
		if v.val < 0 || v.val > 100 {
			return structuralf(ViolationOutOfRange, path+"."+v.name, "value %v is outside 0-100", v.val)
		}
	}
	if a.Width < 1 {
		return structuralf(ViolationOutOfRange, path+".width", "width must be at least 1, got %v", a.Width)
	}
	if a.Height < 1 {
		return structuralf(ViolationOutOfRange, path+".height", "height must be at least 1, got %v", a.Height)
	}
	return nil
}

func validateCondition(c *Condition, path string) error {
	if c == nil {
		return nil
	}
	if c.RequiredTrue == nil && c.RequiredFalse == nil {
		return structuralf(ViolationEmptyList, path, "condition must specify requiredTrue or requiredFalse")
	}
	if c.RequiredTrue != nil && len(c.RequiredTrue) == 0 {
		return structuralf(ViolationEmptyList, path+".requiredTrue", "requiredTrue must not be empty when present")
	}
	if c.RequiredFalse != nil && len(c.RequiredFalse) == 0 {
		return structuralf(ViolationEmptyList, path+".requiredFalse", "requiredFalse must not be empty when present")
	}
	return nil
}

func validateEffectShape(e *Effect, path string) error {
	if e == nil {
		return nil
	}
	if e.SetTrue != nil && len(e.SetTrue) == 0 {
		return structuralf(ViolationEmptyList, path+".setTrue", "setTrue must not be empty when present")
	}
	if e.SetFalse != nil && len(e.SetFalse) == 0 {
		return structuralf(ViolationEmptyList, path+".setFalse", "setFalse must not be empty when present")
	}
	return nil
}

// validateSemantics runs the cross-reference checks: every flag referenced
// by any condition or effect must exist in initialState, and no effect may
// set the same flag both true and false.
func validateSemantics(lv *Level) error {
	for i, obj := range lv.Room.Objects {
		path := fmt.Sprintf("room.objects[%d]", i)
		if err := checkConditionFlags(lv.InitialState, obj.VisibleCondition, path+".visibleCondition"); err != nil {
			return err
		}
		for j, tv := range obj.Text {
			if err := checkConditionFlags(lv.InitialState, tv.Condition, fmt.Sprintf("%s.text[%d].condition", path, j)); err != nil {
				return err
			}
		}
		for j, opt := range obj.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			if err := checkConditionFlags(lv.InitialState, opt.Condition, optPath+".condition"); err != nil {
				return err
			}
			if err := checkEffectFlags(lv.InitialState, opt.Effects, optPath+".effects"); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkConditionFlags(initial FlagSet, c *Condition, path string) error {
	if c == nil {
		return nil
	}
	for _, key := range c.RequiredTrue {
		if _, ok := initial[key]; !ok {
			return semanticf(ViolationDanglingFlag, path, "flag %q is not declared in initialState", key)
		}
	}
	for _, key := range c.RequiredFalse {
		if _, ok := initial[key]; !ok {
			return semanticf(ViolationDanglingFlag, path, "flag %q is not declared in initialState", key)
		}
	}
	return nil
}

func checkEffectFlags(initial FlagSet, e *Effect, path string) error {
	if e == nil {
		return nil
	}
	setTrue := make(map[string]bool, len(e.SetTrue))
	for _, key := range e.SetTrue {
		setTrue[key] = true
		if _, ok := initial[key]; !ok {
			return semanticf(ViolationDanglingFlag, path, "flag %q is not declared in initialState", key)
		}
	}
	for _, key := range e.SetFalse {
		if setTrue[key] {
			return semanticf(ViolationConflictingEffect, path, "flag %q appears in both setTrue and setFalse", key)
		}
		if _, ok := initial[key]; !ok {
			return semanticf(ViolationDanglingFlag, path, "flag %q is not declared in initialState", key)
		}
	}
	return nil
}
