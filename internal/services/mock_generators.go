package services

import (
	"context"
	"fmt"
	"sync"
)

// MockTextGenerator is a TextGenerator for tests. Replies are served from
// the Replies slice in order, or from GenerateFunc when set. All calls are
// recorded.
type MockTextGenerator struct {
	GenerateFunc func(ctx context.Context, instruction string, modelHint string) (string, error)
	Replies      []string

	Calls []string // instructions, in call order

	mu   sync.Mutex
	next int
}

var _ TextGenerator = (*MockTextGenerator)(nil)

func (m *MockTextGenerator) Generate(ctx context.Context, instruction string, modelHint string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, instruction)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, instruction, modelHint)
	}
	if m.next < len(m.Replies) {
		reply := m.Replies[m.next]
		m.next++
		return reply, nil
	}
	return "", externalErr("mock", fmt.Errorf("no scripted reply for call %d", m.next+1))
}

// MockImageGenerator returns a deterministic placeholder payload so the
// pipeline runs without provider keys.
type MockImageGenerator struct {
	GenerateFunc func(ctx context.Context, req ImageRequest) ([]byte, error)

	mu    sync.Mutex
	Calls []ImageRequest
}

var _ ImageGenerator = (*MockImageGenerator)(nil)

func (m *MockImageGenerator) Generate(ctx context.Context, req ImageRequest) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return []byte(fmt.Sprintf("mock-image:%s:%s", req.AspectRatio, req.Prompt)), nil
}

// MockVideoGenerator returns a deterministic placeholder payload.
type MockVideoGenerator struct {
	GenerateFunc func(ctx context.Context, req VideoRequest) ([]byte, error)

	mu    sync.Mutex
	Calls []VideoRequest
}

var _ VideoGenerator = (*MockVideoGenerator)(nil)

func (m *MockVideoGenerator) Generate(ctx context.Context, req VideoRequest) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return []byte(fmt.Sprintf("mock-video:%s:%s", req.AspectRatio, req.Prompt)), nil
}
