package story

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtStyle(t *testing.T) {
	for _, s := range []string{"comic", "drawing", "photorealistic"} {
		style, err := ParseArtStyle(s)
		require.NoError(t, err)
		assert.Equal(t, ArtStyle(s), style)
	}

	_, err := ParseArtStyle("cubist")
	assert.Error(t, err)
	_, err = ParseArtStyle("")
	assert.Error(t, err)
}

func TestGenerationJobRoundTrip(t *testing.T) {
	job := &GenerationJob{
		JobID:      uuid.New().String(),
		StoryID:    uuid.New(),
		EnqueuedAt: time.Now().UTC().Truncate(time.Second),
	}

	data, err := job.ToJSON()
	require.NoError(t, err)

	parsed, err := JobFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, parsed.JobID)
	assert.Equal(t, job.StoryID, parsed.StoryID)
	assert.True(t, job.EnqueuedAt.Equal(parsed.EnqueuedAt))
}

func TestJobFromJSONInvalid(t *testing.T) {
	_, err := JobFromJSON([]byte("{broken"))
	assert.Error(t, err)
}
