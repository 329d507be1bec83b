package story

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationJob is a queued request to generate all rooms of a story.
// The API enqueues one job per created story; the worker consumes them.
type GenerationJob struct {
	JobID      string    `json:"job_id"`
	StoryID    uuid.UUID `json:"story_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ToJSON serializes the job for Redis storage.
func (j *GenerationJob) ToJSON() ([]byte, error) {
	return json.Marshal(j)
}

// JobFromJSON parses a job from its Redis payload.
func JobFromJSON(data []byte) (*GenerationJob, error) {
	var job GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
