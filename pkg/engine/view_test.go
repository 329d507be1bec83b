package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
)

func TestActiveText(t *testing.T) {
	obj := &level.InteractiveObject{
		ID: "drawer",
		Text: []level.TextVariant{
			{Content: "The drawer hangs open, empty.", Condition: &level.Condition{RequiredTrue: []string{"drawer_open"}}},
			{Content: "A locked drawer.", Condition: &level.Condition{RequiredFalse: []string{"drawer_open"}}},
		},
	}

	t.Run("first matching variant wins", func(t *testing.T) {
		tv := ActiveText(obj, level.FlagSet{"drawer_open": true})
		assert.Equal(t, "The drawer hangs open, empty.", tv.Content)
	})

	t.Run("later variant when first unmet", func(t *testing.T) {
		tv := ActiveText(obj, level.FlagSet{"drawer_open": false})
		assert.Equal(t, "A locked drawer.", tv.Content)
	})

	t.Run("falls back to first variant when none match", func(t *testing.T) {
		gated := &level.InteractiveObject{
			ID: "note",
			Text: []level.TextVariant{
				{Content: "Fallback text.", Condition: &level.Condition{RequiredTrue: []string{"a"}}},
				{Content: "Also gated.", Condition: &level.Condition{RequiredTrue: []string{"b"}}},
			},
		}
		tv := ActiveText(gated, level.FlagSet{"a": false, "b": false})
		assert.Equal(t, "Fallback text.", tv.Content)
	})
}

func TestVisibleOptions(t *testing.T) {
	obj := &level.InteractiveObject{
		ID: "door",
		Options: []level.Option{
			{Label: "Open the door", Action: level.ActionFinish, Condition: &level.Condition{RequiredTrue: []string{"has_key"}}},
			{Label: "Examine the lock", Action: level.ActionNone},
		},
	}

	t.Run("gated option hidden", func(t *testing.T) {
		opts := VisibleOptions(obj, level.FlagSet{"has_key": false})
		assert.Len(t, opts, 1)
		assert.Equal(t, "Examine the lock", opts[0].Label)
	})

	t.Run("gated option shown once unlocked", func(t *testing.T) {
		opts := VisibleOptions(obj, level.FlagSet{"has_key": true})
		assert.Len(t, opts, 2)
	})
}

func TestIsVisible(t *testing.T) {
	obj := &level.InteractiveObject{
		ID:               "brass_key",
		VisibleCondition: &level.Condition{RequiredTrue: []string{"rug_lifted"}, RequiredFalse: []string{"has_key"}},
	}

	assert.False(t, IsVisible(obj, level.FlagSet{"rug_lifted": false, "has_key": false}))
	assert.True(t, IsVisible(obj, level.FlagSet{"rug_lifted": true, "has_key": false}))
	// Taking the key hides the hotspot again.
	assert.False(t, IsVisible(obj, level.FlagSet{"rug_lifted": true, "has_key": true}))
}

func TestResolveObject(t *testing.T) {
	obj := &level.InteractiveObject{
		ID: "clock",
		Text: []level.TextVariant{
			{Content: "An old clock."},
		},
		Options: []level.Option{
			{Label: "Read the time", Action: level.ActionNone},
		},
	}
	view := ResolveObject(obj, level.FlagSet{})
	assert.True(t, view.Visible)
	assert.Equal(t, "An old clock.", view.Text.Content)
	assert.Len(t, view.Options, 1)
	assert.Same(t, obj, view.Object)
}
