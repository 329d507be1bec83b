package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/riddle-rooms/internal/generator"
	"github.com/jwebster45206/riddle-rooms/internal/services"
	"github.com/jwebster45206/riddle-rooms/internal/services/queue"
	"github.com/jwebster45206/riddle-rooms/internal/storage"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func roomReply(n int) string {
	return fmt.Sprintf(`{
		"narrativeSummary": "Room %d resolved.",
		"visualDescription": "A narrow corridor.",
		"level": {
			"id": "room_%d",
			"initialState": {"done": false},
			"room": {
				"backgroundImage": "",
				"objects": [{
					"id": "switch",
					"area": {"x": 10, "y": 10, "width": 5, "height": 5},
					"text": [{"content": "A switch."}],
					"options": [{"label": "Flip it", "action": "next", "effects": {"setTrue": ["done"]}}]
				}]
			}
		}
	}`, n, n)
}

func TestWorkerProcessesJob(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := testLogger()
	store := storage.NewMockStorage()
	textGen := &services.MockTextGenerator{Replies: []string{roomReply(1), roomReply(2)}}
	requester := generator.NewRequester(textGen, "", log)
	orchestrator := generator.NewOrchestrator(store, requester, &services.MockImageGenerator{}, &services.MockVideoGenerator{}, log)

	ctx := context.Background()
	st, err := orchestrator.CreateStory(ctx, "escape the corridor", story.StyleComic, 2)
	require.NoError(t, err)

	genQueue := queue.NewGenerationQueue(queue.NewClient(rdb))
	require.NoError(t, genQueue.Enqueue(ctx, &story.GenerationJob{
		JobID:      uuid.New().String(),
		StoryID:    st.ID,
		EnqueuedAt: time.Now().UTC(),
	}))

	w := New(genQueue, orchestrator, rdb, log, "test-worker")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	require.Eventually(t, func() bool {
		loaded, err := store.GetStory(ctx, st.ID)
		if err != nil || loaded == nil {
			return false
		}
		return loaded.Status == story.StatusCompleted
	}, 10*time.Second, 50*time.Millisecond, "worker should complete the story")

	w.Stop()
	require.NoError(t, <-done)

	rooms, err := store.ListRooms(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.NotNil(t, rooms[0].Level)
	assert.NotNil(t, rooms[1].Level)

	depth, err := genQueue.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestWorkerReleasesLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := testLogger()
	store := storage.NewMockStorage()
	textGen := &services.MockTextGenerator{Replies: []string{roomReply(1)}}
	requester := generator.NewRequester(textGen, "", log)
	orchestrator := generator.NewOrchestrator(store, requester, &services.MockImageGenerator{}, &services.MockVideoGenerator{}, log)

	ctx := context.Background()
	st, err := orchestrator.CreateStory(ctx, "escape", story.StyleComic, 1)
	require.NoError(t, err)

	genQueue := queue.NewGenerationQueue(queue.NewClient(rdb))
	require.NoError(t, genQueue.Enqueue(ctx, &story.GenerationJob{
		JobID:      uuid.New().String(),
		StoryID:    st.ID,
		EnqueuedAt: time.Now().UTC(),
	}))

	w := New(genQueue, orchestrator, rdb, log, "test-worker")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	require.Eventually(t, func() bool {
		loaded, _ := store.GetStory(ctx, st.ID)
		return loaded != nil && loaded.Status == story.StatusCompleted
	}, 10*time.Second, 50*time.Millisecond)

	w.Stop()
	require.NoError(t, <-done)

	lockKey := fmt.Sprintf("story-lock:%s", st.ID)
	exists, err := rdb.Exists(context.Background(), lockKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "the story lock must be released after processing")
}
