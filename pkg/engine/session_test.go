package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
)

func TestSelectOption(t *testing.T) {
	tests := []struct {
		name     string
		action   string
		expected Outcome
	}{
		{"none continues", level.ActionNone, OutcomeContinue},
		{"finish wins", level.ActionFinish, OutcomeWin},
		{"fail loses", level.ActionFail, OutcomeLose},
		{"next advances", level.ActionNext, OutcomeAdvance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := &level.Option{Label: "x", Action: tt.action}
			_, outcome := SelectOption(opt, level.FlagSet{})
			assert.Equal(t, tt.expected, outcome)
		})
	}
}

func TestSessionPlaythrough(t *testing.T) {
	lv := level.DemoLevel()
	s := NewSession(lv)

	// Initial state is cloned, not shared.
	s.Flags["rug_lifted"] = true
	assert.False(t, lv.InitialState["rug_lifted"])
	s = NewSession(lv)

	// The key is hidden until the rug is lifted.
	ids := visibleIDs(s)
	assert.NotContains(t, ids, "brass_key")

	view, err := s.Click("rug")
	require.NoError(t, err)
	require.NotNil(t, s.Interacting())
	require.NotEmpty(t, view.Options)

	outcome, err := s.Select("Lift the rug")
	require.NoError(t, err)
	assert.Equal(t, OutcomeContinue, outcome)
	assert.Nil(t, s.Interacting(), "selecting always closes the interaction")

	assert.Contains(t, visibleIDs(s), "brass_key")

	// Take the key. The effect hides the key object itself; the modal
	// still closes cleanly.
	_, err = s.Click("brass_key")
	require.NoError(t, err)
	outcome, err = s.Select("Take the key")
	require.NoError(t, err)
	assert.Equal(t, OutcomeContinue, outcome)
	assert.Nil(t, s.Interacting())
	assert.NotContains(t, visibleIDs(s), "brass_key")
	assert.True(t, s.Flags["has_key"])

	// Read the clock, then unlock the door for the win.
	_, err = s.Click("clock")
	require.NoError(t, err)
	_, err = s.Select("Study the clock face")
	require.NoError(t, err)

	_, err = s.Click("door")
	require.NoError(t, err)
	outcome, err = s.Select("Unlock the door and leave")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, outcome)
}

func TestSessionFailPath(t *testing.T) {
	lv := level.DemoLevel()
	s := NewSession(lv)

	_, err := s.Click("door")
	require.NoError(t, err)
	outcome, err := s.Select("Force the lock")
	require.NoError(t, err)
	assert.Equal(t, OutcomeLose, outcome)
}

func TestSessionClickErrors(t *testing.T) {
	lv := level.DemoLevel()
	s := NewSession(lv)

	t.Run("unknown object", func(t *testing.T) {
		_, err := s.Click("no_such_object")
		assert.Error(t, err)
	})

	t.Run("hidden object", func(t *testing.T) {
		_, err := s.Click("brass_key")
		assert.Error(t, err)
	})

	t.Run("double click while open", func(t *testing.T) {
		_, err := s.Click("rug")
		require.NoError(t, err)
		_, err = s.Click("rug")
		assert.Error(t, err)
		s.Cancel()
		assert.Nil(t, s.Interacting())
	})
}

func TestSessionSelectErrors(t *testing.T) {
	lv := level.DemoLevel()
	s := NewSession(lv)

	t.Run("no interaction open", func(t *testing.T) {
		_, err := s.Select("Lift the rug")
		assert.Error(t, err)
	})

	t.Run("unavailable option", func(t *testing.T) {
		_, err := s.Click("door")
		require.NoError(t, err)
		// Gated on has_key, which starts false.
		_, err = s.Select("Unlock the door and leave")
		assert.Error(t, err)
		s.Cancel()
	})
}

func visibleIDs(s *Session) []string {
	var ids []string
	for _, obj := range s.VisibleObjects() {
		ids = append(ids, obj.ID)
	}
	return ids
}
