// Command console is a terminal play client. It lists completed stories
// from the API, then runs the selected one room by room. With --demo it
// plays the built-in level without an API.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/riddle-rooms/pkg/engine"
	"github.com/jwebster45206/riddle-rooms/pkg/level"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	demo := flag.Bool("demo", false, "play the built-in demo level offline")
	flag.Parse()

	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if *demo {
		lv := level.DemoLevel()
		ui := NewConsoleUI(cfg, client, nil, engine.NewSession(lv))
		runProgram(ui)
		return
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\nOr play offline: console --demo\n")
		os.Exit(1)
	}

	stories, err := listStories(client, cfg.APIBaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list stories: %v\n", err)
		os.Exit(1)
	}

	playable := make([]*story.Story, 0, len(stories))
	for _, st := range stories {
		if st.Status == story.StatusCompleted {
			playable = append(playable, st)
		}
	}
	if len(playable) == 0 {
		fmt.Fprintln(os.Stderr, "No completed stories yet. Create one via POST /v1/stories and wait for generation.")
		os.Exit(1)
	}

	fmt.Println("Available Stories:")
	for i, st := range playable {
		fmt.Printf("  %d - %s (%d rooms, %s)\n", i+1, st.Prompt, st.TotalRooms, st.ArtStyle)
	}
	fmt.Print("\nSelect a story by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(playable) {
		fmt.Fprintln(os.Stderr, "Invalid selection")
		os.Exit(1)
	}
	selected := playable[choice-1]

	view, err := getFirstRoomView(client, cfg.APIBaseURL, selected.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load first room: %v\n", err)
		os.Exit(1)
	}
	if view == nil || view.Room.Level == nil {
		fmt.Fprintln(os.Stderr, "Story has no playable rooms")
		os.Exit(1)
	}

	ui := NewConsoleUI(cfg, client, view, engine.NewSession(view.Room.Level))
	runProgram(ui)
}

func runProgram(ui ConsoleUI) {
	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
