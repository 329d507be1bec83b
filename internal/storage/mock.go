package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu      sync.Mutex
	stories map[uuid.UUID]*story.Story
	rooms   map[uuid.UUID]*story.RoomRecord
	blobs   map[string]mockBlob
	assets  map[string]mockAsset

	pingError error

	// FailUpdateRoom, when set, is returned by UpdateRoom. Used to test
	// persistence failures mid-sequence.
	FailUpdateRoom error
}

type mockBlob struct {
	mimeType string
	data     []byte
}

type mockAsset struct {
	handle   string
	mimeType string
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		stories: make(map[uuid.UUID]*story.Story),
		rooms:   make(map[uuid.UUID]*story.RoomRecord),
		blobs:   make(map[string]mockBlob),
		assets:  make(map[string]mockAsset),
	}
}

// SetPingError configures Ping to fail with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingError
}

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) CreateStory(ctx context.Context, s *story.Story) error {
	if s == nil {
		return errors.New("story cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.stories[s.ID] = &cp
	return nil
}

func (m *MockStorage) GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockStorage) UpdateStory(ctx context.Context, s *story.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stories[s.ID]; !ok {
		return errors.New("story not found")
	}
	s.UpdatedAt = time.Now()
	cp := *s
	m.stories[s.ID] = &cp
	return nil
}

func (m *MockStorage) ListStories(ctx context.Context) ([]*story.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*story.Story, 0, len(m.stories))
	for _, s := range m.stories {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockStorage) CreateRoom(ctx context.Context, r *story.RoomRecord) error {
	if r == nil {
		return errors.New("room cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rooms[r.ID] = &cp
	return nil
}

func (m *MockStorage) GetRoom(ctx context.Context, id uuid.UUID) (*story.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MockStorage) UpdateRoom(ctx context.Context, r *story.RoomRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpdateRoom != nil {
		return m.FailUpdateRoom
	}
	if _, ok := m.rooms[r.ID]; !ok {
		return errors.New("room not found")
	}
	cp := *r
	m.rooms[r.ID] = &cp
	return nil
}

func (m *MockStorage) ListRooms(ctx context.Context, storyID uuid.UUID) ([]*story.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*story.RoomRecord
	for _, r := range m.rooms {
		if r.StoryID == storyID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RoomNumber < out[j].RoomNumber
	})
	return out, nil
}

func (m *MockStorage) NewUploadHandle(ctx context.Context) (string, error) {
	return uuid.New().String(), nil
}

func (m *MockStorage) PutBlob(ctx context.Context, handle string, mimeType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[handle] = mockBlob{mimeType: mimeType, data: data}
	return nil
}

func (m *MockStorage) RegisterAsset(ctx context.Context, name, handle, assetType, mimeType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[handle]; !ok {
		return "", errors.New("blob handle has no uploaded bytes")
	}
	m.assets[name] = mockAsset{handle: handle, mimeType: mimeType}
	return "/v1/assets/" + name, nil
}

func (m *MockStorage) GetAsset(ctx context.Context, name string) (string, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[name]
	if !ok {
		return "", nil, nil
	}
	b := m.blobs[a.handle]
	return a.mimeType, b.data, nil
}
