package engine

import (
	"fmt"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
)

// Outcome is the result of selecting an option.
type Outcome string

const (
	OutcomeContinue Outcome = "continue" // action "none": stay in the room
	OutcomeWin      Outcome = "win"      // action "finish": level solved
	OutcomeLose     Outcome = "lose"     // action "fail": level lost
	OutcomeAdvance  Outcome = "advance"  // action "next": move to the following room
)

// SelectOption applies the option's effects and maps its action to an
// Outcome. The returned flag set is a new value; the input is untouched.
func SelectOption(opt *level.Option, flags level.FlagSet) (level.FlagSet, Outcome) {
	newFlags := Apply(opt.Effects, flags)
	switch opt.Action {
	case level.ActionFinish:
		return newFlags, OutcomeWin
	case level.ActionFail:
		return newFlags, OutcomeLose
	case level.ActionNext:
		return newFlags, OutcomeAdvance
	default:
		return newFlags, OutcomeContinue
	}
}

// Session tracks one playthrough of one room: the current flag set and
// whether an interaction modal is open. States are "browsing" and
// "interacting(object)"; selecting an option always returns to browsing.
type Session struct {
	Level *level.Level
	Flags level.FlagSet

	open *level.InteractiveObject // nil while browsing
}

// NewSession starts a playthrough with a copy of the level's initial state.
func NewSession(lv *level.Level) *Session {
	return &Session{
		Level: lv,
		Flags: lv.InitialState.Clone(),
	}
}

// Interacting returns the open object, or nil while browsing.
func (s *Session) Interacting() *level.InteractiveObject {
	return s.open
}

// VisibleObjects returns the hotspots currently active in the room, in
// document order.
func (s *Session) VisibleObjects() []*level.InteractiveObject {
	var out []*level.InteractiveObject
	for i := range s.Level.Room.Objects {
		obj := &s.Level.Room.Objects[i]
		if IsVisible(obj, s.Flags) {
			out = append(out, obj)
		}
	}
	return out
}

// Click opens an interaction with the object if it is currently visible.
func (s *Session) Click(objectID string) (*ObjectView, error) {
	if s.open != nil {
		return nil, fmt.Errorf("interaction with %q is already open", s.open.ID)
	}
	for i := range s.Level.Room.Objects {
		obj := &s.Level.Room.Objects[i]
		if obj.ID != objectID {
			continue
		}
		if !IsVisible(obj, s.Flags) {
			return nil, fmt.Errorf("object %q is not visible", objectID)
		}
		s.open = obj
		view := ResolveObject(obj, s.Flags)
		return &view, nil
	}
	return nil, fmt.Errorf("object %q not found in room", objectID)
}

// Select applies one of the open object's currently visible options and
// closes the interaction. Selecting always returns the session to
// browsing, including when the effect hides the open object itself: a
// "none" action that self-hides (take key, key vanishes) is a deliberate
// gameplay pattern, and the modal must close rather than render a hotspot
// that no longer exists.
func (s *Session) Select(optionLabel string) (Outcome, error) {
	if s.open == nil {
		return OutcomeContinue, fmt.Errorf("no interaction is open")
	}
	for _, opt := range VisibleOptions(s.open, s.Flags) {
		if opt.Label != optionLabel {
			continue
		}
		newFlags, outcome := SelectOption(&opt, s.Flags)
		s.Flags = newFlags
		s.open = nil
		return outcome, nil
	}
	return OutcomeContinue, fmt.Errorf("option %q is not available", optionLabel)
}

// Cancel closes the open interaction without selecting anything.
func (s *Session) Cancel() {
	s.open = nil
}
