// Package worker consumes generation jobs from the Redis queue and drives
// the story pipeline. One worker processes one story at a time; a per-story
// Redis lock keeps concurrent workers off the same story.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/riddle-rooms/internal/generator"
	"github.com/jwebster45206/riddle-rooms/internal/services/queue"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

const (
	dequeueTimeout = 5 * time.Second

	// Room generation holds the lock for the whole pipeline run, which
	// includes image and video calls, so the TTL is generous.
	storyLockTTL = 30 * time.Minute
)

// Worker processes story generation jobs.
type Worker struct {
	id           string
	queue        *queue.GenerationQueue
	orchestrator *generator.Orchestrator
	redisClient  *redis.Client
	log          *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
}

// New creates a worker. An empty workerID gets a generated one.
func New(genQueue *queue.GenerationQueue, orchestrator *generator.Orchestrator, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:           workerID,
		queue:        genQueue,
		orchestrator: orchestrator,
		redisClient:  redisClient,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins processing jobs from the queue. It blocks until Stop is
// called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextJob(); err != nil {
				w.log.Error("Error processing job", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker.
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextJob pulls the next job from the queue and runs the pipeline.
func (w *Worker) processNextJob() error {
	// Block waiting for the next job (short timeout to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, dequeueTimeout)
	defer cancel()

	job, err := w.queue.BlockingDequeue(ctx, dequeueTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue job: %w", err)
	}
	if job == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}

	w.log.Info("Received generation job",
		"worker_id", w.id,
		"job_id", job.JobID,
		"story_id", job.StoryID.String(),
	)

	locked, err := w.acquireStoryLock(job.StoryID)
	if err != nil {
		return fmt.Errorf("failed to acquire story lock: %w", err)
	}
	if !locked {
		// Another worker owns this story. Re-queue and move on.
		w.log.Info("Story already locked, re-queueing job",
			"worker_id", w.id,
			"job_id", job.JobID,
			"story_id", job.StoryID.String(),
		)
		if err := w.queue.Enqueue(w.ctx, job); err != nil {
			return fmt.Errorf("failed to re-queue job: %w", err)
		}
		return nil
	}

	defer w.releaseStoryLock(job.StoryID)
	return w.processJob(job)
}

// acquireStoryLock attempts to acquire the per-story lock. Returns true if
// the lock was acquired, false if another worker holds it.
func (w *Worker) acquireStoryLock(storyID uuid.UUID) (bool, error) {
	lockKey := fmt.Sprintf("story-lock:%s", storyID.String())

	result, err := w.redisClient.SetNX(w.ctx, lockKey, w.id, storyLockTTL).Result()
	if err != nil {
		return false, err
	}
	return result, nil
}

// releaseStoryLock releases the per-story lock.
func (w *Worker) releaseStoryLock(storyID uuid.UUID) {
	lockKey := fmt.Sprintf("story-lock:%s", storyID.String())

	// Only delete if we own the lock
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	if err := script.Run(w.ctx, w.redisClient, []string{lockKey}, w.id).Err(); err != nil {
		w.log.Error("Failed to release story lock", "error", err, "story_id", storyID.String())
	}
}

// processJob runs the generation pipeline for one story. Pipeline failures
// are already recorded on the story record; they are logged here and not
// returned, so a bad story does not stall the queue.
func (w *Worker) processJob(job *story.GenerationJob) error {
	start := time.Now()
	w.log.Info("Generating story",
		"worker_id", w.id,
		"job_id", job.JobID,
		"story_id", job.StoryID.String(),
	)

	if err := w.orchestrator.GenerateStory(w.ctx, job.StoryID, nil); err != nil {
		w.log.Error("Story generation failed",
			"worker_id", w.id,
			"job_id", job.JobID,
			"story_id", job.StoryID.String(),
			"duration", time.Since(start).String(),
			"error", err.Error(),
		)
		return nil
	}

	w.log.Info("Story generation complete",
		"worker_id", w.id,
		"job_id", job.JobID,
		"story_id", job.StoryID.String(),
		"duration", time.Since(start).String(),
	)
	return nil
}
