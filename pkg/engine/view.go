package engine

import "github.com/jwebster45206/riddle-rooms/pkg/level"

// IsVisible reports whether the object's hotspot is currently active.
func IsVisible(obj *level.InteractiveObject, flags level.FlagSet) bool {
	return Evaluate(obj.VisibleCondition, flags)
}

// ActiveText returns the first text variant whose condition is met. If no
// variant matches, the first variant is returned as a fallback, so a
// well-formed object (>=1 variant) always renders something.
func ActiveText(obj *level.InteractiveObject, flags level.FlagSet) level.TextVariant {
	for _, tv := range obj.Text {
		if Evaluate(tv.Condition, flags) {
			return tv
		}
	}
	return obj.Text[0]
}

// VisibleOptions filters the object's options to those whose condition is
// met. Options without a condition are always offered.
func VisibleOptions(obj *level.InteractiveObject, flags level.FlagSet) []level.Option {
	out := make([]level.Option, 0, len(obj.Options))
	for _, opt := range obj.Options {
		if Evaluate(opt.Condition, flags) {
			out = append(out, opt)
		}
	}
	return out
}

// ObjectView is the fully resolved presentation of one hotspot for the
// current flag set.
type ObjectView struct {
	Object  *level.InteractiveObject
	Text    level.TextVariant
	Options []level.Option
	Visible bool
}

// ResolveObject computes visibility, active text and offered options for
// one object in a single pass.
func ResolveObject(obj *level.InteractiveObject, flags level.FlagSet) ObjectView {
	return ObjectView{
		Object:  obj,
		Text:    ActiveText(obj, flags),
		Options: VisibleOptions(obj, flags),
		Visible: IsVisible(obj, flags),
	}
}
