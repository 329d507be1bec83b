package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/riddle-rooms/pkg/engine"
	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// play phases
type phase int

const (
	phaseBrowsing phase = iota
	phaseModal
	phaseWon
	phaseLost
	phaseLoading
)

// ConsoleUI is the BubbleTea model that runs the play UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config  *ConsoleConfig
	client  *http.Client
	view    *story.RoomView // nil in demo mode
	session *engine.Session

	phase   phase
	cursor  int
	modal   *engine.ObjectView
	spinner spinner.Model
	ready   bool
	width   int
	height  int
	err     error
	notice  string

	titleCaser cases.Caser
}

type roomViewMsg struct {
	view *story.RoomView
	err  error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	objectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	narrationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")). // bright green
			Bold(true)

	loseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, view *story.RoomView, session *engine.Session) ConsoleUI {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = hintStyle
	return ConsoleUI{
		config:     cfg,
		client:     client,
		view:       view,
		session:    session,
		phase:      phaseBrowsing,
		spinner:    sp,
		titleCaser: cases.Title(language.English),
	}
}

func (ui ConsoleUI) Init() tea.Cmd {
	return nil
}

func (ui ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.ready = true
		return ui, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		ui.spinner, cmd = ui.spinner.Update(msg)
		if ui.phase == phaseLoading {
			return ui, cmd
		}
		return ui, nil

	case roomViewMsg:
		if msg.err != nil {
			ui.err = msg.err
			ui.phase = phaseBrowsing
			return ui, nil
		}
		if msg.view == nil || msg.view.Room.Level == nil {
			ui.err = fmt.Errorf("next room is not available")
			ui.phase = phaseBrowsing
			return ui, nil
		}
		ui.view = msg.view
		ui.session = engine.NewSession(msg.view.Room.Level)
		ui.phase = phaseBrowsing
		ui.cursor = 0
		ui.modal = nil
		ui.err = nil
		ui.notice = ""
		return ui, nil

	case tea.KeyMsg:
		return ui.handleKey(msg)
	}

	return ui, nil
}

func (ui ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return ui, tea.Quit
	}

	switch ui.phase {
	case phaseBrowsing:
		return ui.handleBrowsingKey(msg)
	case phaseModal:
		return ui.handleModalKey(msg)
	case phaseWon, phaseLost:
		return ui.handleEndedKey(msg)
	}
	return ui, nil
}

func (ui ConsoleUI) handleBrowsingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	objects := ui.session.VisibleObjects()

	switch msg.String() {
	case "q":
		return ui, tea.Quit
	case "up", "k":
		if ui.cursor > 0 {
			ui.cursor--
		}
	case "down", "j":
		if ui.cursor < len(objects)-1 {
			ui.cursor++
		}
	case "c":
		if ui.view != nil {
			if err := clipboard.WriteAll(ui.view.Story.ID.String()); err == nil {
				ui.notice = "Story ID copied to clipboard"
			}
		}
	case "enter":
		if len(objects) == 0 {
			return ui, nil
		}
		if ui.cursor >= len(objects) {
			ui.cursor = len(objects) - 1
		}
		view, err := ui.session.Click(objects[ui.cursor].ID)
		if err != nil {
			ui.err = err
			return ui, nil
		}
		ui.modal = view
		ui.phase = phaseModal
		ui.cursor = 0
		ui.err = nil
	}
	return ui, nil
}

func (ui ConsoleUI) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := ui.modal.Options

	switch msg.String() {
	case "esc":
		ui.session.Cancel()
		ui.modal = nil
		ui.phase = phaseBrowsing
		ui.cursor = 0
	case "up", "k":
		if ui.cursor > 0 {
			ui.cursor--
		}
	case "down", "j":
		if ui.cursor < len(options)-1 {
			ui.cursor++
		}
	case "enter":
		if len(options) == 0 {
			return ui, nil
		}
		if ui.cursor >= len(options) {
			ui.cursor = len(options) - 1
		}
		outcome, err := ui.session.Select(options[ui.cursor].Label)
		if err != nil {
			ui.err = err
			return ui, nil
		}
		ui.modal = nil
		ui.cursor = 0
		ui.err = nil
		return ui.applyOutcome(outcome)
	}
	return ui, nil
}

func (ui ConsoleUI) handleEndedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "enter", "esc":
		return ui, tea.Quit
	case "r":
		// Replay the current room from its initial state.
		ui.session = engine.NewSession(ui.session.Level)
		ui.phase = phaseBrowsing
		ui.cursor = 0
		ui.err = nil
		ui.notice = ""
	}
	return ui, nil
}

func (ui ConsoleUI) applyOutcome(outcome engine.Outcome) (tea.Model, tea.Cmd) {
	switch outcome {
	case engine.OutcomeWin:
		ui.phase = phaseWon
	case engine.OutcomeLose:
		ui.phase = phaseLost
	case engine.OutcomeAdvance:
		if ui.view == nil || ui.view.NextRoomID == nil {
			// No further room to advance into: the run is complete.
			ui.phase = phaseWon
			return ui, nil
		}
		ui.phase = phaseLoading
		nextID := *ui.view.NextRoomID
		fetch := func() tea.Msg {
			view, err := getRoomView(ui.client, ui.config.APIBaseURL, nextID)
			return roomViewMsg{view: view, err: err}
		}
		return ui, tea.Batch(ui.spinner.Tick, fetch)
	default:
		ui.phase = phaseBrowsing
	}
	return ui, nil
}

func (ui ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(ui.renderHeader())
	b.WriteString("\n\n")

	switch ui.phase {
	case phaseBrowsing:
		b.WriteString(ui.renderRoom())
	case phaseModal:
		b.WriteString(ui.renderModal())
	case phaseWon:
		b.WriteString(winStyle.Render("You escaped!"))
		b.WriteString(hintStyle.Render("\n\nPress q to exit, r to replay this room."))
	case phaseLost:
		b.WriteString(loseStyle.Render("Your escape has failed."))
		b.WriteString(hintStyle.Render("\n\nPress r to retry this room, q to exit."))
	case phaseLoading:
		b.WriteString(ui.spinner.View())
		b.WriteString(hintStyle.Render(" Entering the next room..."))
	}

	if ui.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(ui.err.Error()))
	}
	if ui.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render(ui.notice))
	}
	return b.String()
}

func (ui ConsoleUI) renderHeader() string {
	if ui.view == nil {
		return titleStyle.Render(fmt.Sprintf("Demo: %s", ui.session.Level.ID))
	}
	return titleStyle.Render(fmt.Sprintf("%s  (Room %d of %d)",
		ui.view.Story.Goal, ui.view.Room.RoomNumber, ui.view.Story.TotalRooms))
}

func (ui ConsoleUI) renderRoom() string {
	var b strings.Builder
	objects := ui.session.VisibleObjects()

	if len(objects) == 0 {
		b.WriteString(narrationStyle.Render("Nothing here catches your eye."))
		return b.String()
	}

	b.WriteString(narrationStyle.Render("You look around the room:"))
	b.WriteString("\n\n")
	for i, obj := range objects {
		label := ui.displayName(obj.ID)
		if i == ui.cursor {
			b.WriteString(selectedStyle.Render("> " + label))
		} else {
			b.WriteString(objectStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("up/down: look around  enter: inspect  c: copy story id  q: quit"))
	return b.String()
}

func (ui ConsoleUI) renderModal() string {
	width := ui.width - 8
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(ui.displayName(ui.modal.Object.ID)))
	b.WriteString("\n\n")
	b.WriteString(narrationStyle.Render(wordwrap.String(ui.modal.Text.Content, width-6)))
	b.WriteString("\n\n")

	for i, opt := range ui.modal.Options {
		if i == ui.cursor {
			b.WriteString(selectedStyle.Render("> " + opt.Label))
		} else {
			b.WriteString("  " + opt.Label)
		}
		b.WriteString("\n")
	}
	if len(ui.modal.Options) == 0 {
		b.WriteString(hintStyle.Render("There is nothing to do here."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("up/down: choose  enter: select  esc: step back"))

	return modalStyle.Width(width).Render(b.String())
}

// displayName turns an object id like "brass_key" into "Brass Key".
func (ui ConsoleUI) displayName(id string) string {
	return ui.titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
