package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

const generationQueueKey = "generation-jobs"

// GenerationQueue is a FIFO queue of story generation jobs.
type GenerationQueue struct {
	client *Client
}

// NewGenerationQueue creates a queue over the shared client.
func NewGenerationQueue(client *Client) *GenerationQueue {
	return &GenerationQueue{client: client}
}

// Enqueue appends a job to the queue.
func (q *GenerationQueue) Enqueue(ctx context.Context, job *story.GenerationJob) error {
	data, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize generation job: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, generationQueueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue generation job: %w", err)
	}
	return nil
}

// BlockingDequeue pops the next job, blocking up to timeout. Returns nil
// when the queue stays empty (or the context ends) within the timeout.
func (q *GenerationQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*story.GenerationJob, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, generationQueueKey).Result()
	if err != nil {
		if err == redis.Nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue generation job: %w", err)
	}
	// BLPop returns [key, value]
	if len(result) < 2 {
		return nil, nil
	}
	job, err := story.JobFromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse generation job: %w", err)
	}
	return job, nil
}

// Depth returns the number of queued jobs.
func (q *GenerationQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, generationQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
