// Package engine implements the deterministic rule engine that resolves
// what a player currently sees and may do in a room. All functions are
// pure over the flag set they are given; the engine holds no state of its
// own between calls.
package engine

import "github.com/jwebster45206/riddle-rooms/pkg/level"

// Evaluate reports whether the condition is met against the flags.
// A nil condition is vacuously met. An absent flag reads as false, so it
// satisfies RequiredFalse and fails RequiredTrue.
func Evaluate(c *level.Condition, flags level.FlagSet) bool {
	if c == nil {
		return true
	}
	for _, key := range c.RequiredTrue {
		if !flags[key] {
			return false
		}
	}
	for _, key := range c.RequiredFalse {
		if flags[key] {
			return false
		}
	}
	return true
}

// Apply returns a new flag set with the effect applied. The input is never
// mutated. A nil effect returns the input unchanged.
func Apply(e *level.Effect, flags level.FlagSet) level.FlagSet {
	if e == nil {
		return flags
	}
	out := flags.Clone()
	for _, key := range e.SetTrue {
		out[key] = true
	}
	for _, key := range e.SetFalse {
		out[key] = false
	}
	return out
}
