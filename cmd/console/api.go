package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type storyResponse struct {
	*story.Story
	FirstRoomID *uuid.UUID `json:"first_room_id,omitempty"`
}

func listStories(client *http.Client, baseURL string) ([]*story.Story, error) {
	resp, err := client.Get(baseURL + "/v1/stories")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var stories []*story.Story
	if err := json.Unmarshal(body, &stories); err != nil {
		return nil, fmt.Errorf("failed to parse stories: %w", err)
	}
	return stories, nil
}

func getFirstRoomView(client *http.Client, baseURL string, storyID uuid.UUID) (*story.RoomView, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/stories/%s", baseURL, storyID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var sr storyResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	if sr.FirstRoomID == nil {
		return nil, nil
	}
	return getRoomView(client, baseURL, *sr.FirstRoomID)
}

func getRoomView(client *http.Client, baseURL string, roomID uuid.UUID) (*story.RoomView, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/rooms/%s", baseURL, roomID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	var view story.RoomView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse room view: %w", err)
	}
	return &view, nil
}

func decodeAPIError(status int, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return fmt.Errorf("API error (%d): %s", status, er.Error)
	}
	return fmt.Errorf("API error (%d)", status)
}
