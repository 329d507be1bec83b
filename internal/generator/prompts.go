// Package generator builds room generation instructions, parses and
// validates the generator's replies, and drives the strictly sequential
// room-by-room story pipeline.
package generator

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/riddle-rooms/pkg/story"
)

// SystemPrompt frames the generator as a puzzle architect and pins the
// reply to the Level document contract.
const SystemPrompt = `You are an expert Escape Room Game Architect building a point-and-click puzzle room.
Your output must be fully playable without human tweaks and must already satisfy the Level JSON schema below.

--- Game Engine Context ---
- The player sees a static background with multiple clickable hotspots ("objects").
- Clicking a hotspot opens a modal that shows the resolved text variant and option buttons.
- Options can mutate shared boolean flags via "effects" and optionally trigger "action" values: "finish", "fail", "next", or "none".
- Visibility for hotspots, text, and options is controlled via Condition objects (lists of requiredTrue/requiredFalse flags).
- Every state flag mentioned anywhere must exist in "initialState".

--- Design Requirements ---
1. Puzzle Chain: Create a coherent dependency chain with at least three sequential steps (e.g., find item -> unlock device -> reveal final code).
2. Object Placement: Assign "area" values thoughtfully (x/y/width/height in percentages). Floor-level props generally have y > 60; wall/ceiling props have y < 50. Keep all values between 0 and 100 and avoid overlapping hitboxes.
3. Clickable Density: Provide at least three distinct interactive objects placed in different parts of the scene. Each object must contribute to the puzzle or lore (no filler).
4. Narrative and Mood: Write a vivid "visualDescription" (lighting, atmosphere, key props) that can drive background art generation.
5. State Management: Use descriptive boolean keys (e.g., "has_keycard", "panel_unlocked"). Every key referenced by conditions or effects must appear in "initialState". Never put the same key in both setTrue and setFalse of one effect.
6. Dynamic Copy: Whenever an option changes the state, include follow-up text variants so the player sees the outcome (e.g., once a drawer is open, describe it differently).
7. End States: There must be at least one valid escape path using action "finish". If you introduce failure states, gate them with narrative context.
8. Media Hooks: Include a "name" value for each object (used later for image prompts). Leave "backgroundImage" as an empty string "".

--- Output Contract ---
Return only JSON with this exact shape, no prose around it:
{
  "narrativeSummary": string,   // 2-4 sentences summarizing this room's events, for continuity
  "visualDescription": string,  // used for image generation
  "level": {
    "id": string,
    "initialState": { "<flag>": boolean, ... },
    "room": {
      "backgroundImage": "",
      "objects": [
        {
          "id": string,
          "name": string,
          "area": { "x": number, "y": number, "width": number, "height": number },
          "text": [ { "content": string, "condition": { "requiredTrue": [string], "requiredFalse": [string] } } ],
          "options": [ { "label": string, "action": "next"|"fail"|"finish"|"none", "effects": { "setTrue": [string], "setFalse": [string] }, "condition": { ... } } ],
          "visibleCondition": { ... }
        }
      ]
    }
  }
}`

// BuildRoomInstruction renders the complete instruction for one room:
// the system prompt, the overall story context, position-labeled summaries
// of every earlier room, a role hint for the room's place in the sequence,
// and the closing response contract.
func BuildRoomInstruction(storyContext string, roomNumber, totalRooms int, previousSummaries []string, artStyle story.ArtStyle) string {
	var b strings.Builder

	b.WriteString(SystemPrompt)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "**Overall Story Context:**\n%q\n\n", storyContext)

	if len(previousSummaries) > 0 {
		b.WriteString("**Previous Rooms (for continuity):**\n")
		for i, summary := range previousSummaries {
			fmt.Fprintf(&b, "Room %d: %s\n", i+1, summary)
		}
		fmt.Fprintf(&b, "\nUse these events to justify callbacks, clues, or consequences in Room %d.\n\n", roomNumber)
	}

	fmt.Fprintf(&b, "**Task:**\nDesign Room %d of %d. The puzzle chain must clearly advance the overarching escape narrative.\n\n", roomNumber, totalRooms)

	switch {
	case roomNumber == 1:
		b.WriteString("This is the FIRST room. Establish the stakes, frame the premise, and plant the first clue without being trivial.\n\n")
	case roomNumber == totalRooms:
		b.WriteString("This is the FINAL room. Deliver the climax, reference past discoveries, and gate the escape with the hardest challenge. Ensure action \"finish\" only appears on the single true victory option and nowhere else.\n\n")
	default:
		b.WriteString("This is a MIDDLE room. Reference at least one event from an earlier room and provide clues that foreshadow the finale.\n\n")
	}

	fmt.Fprintf(&b, "**Visual Direction:** The scene must embody a %s aesthetic. Describe lighting, palette, and props accordingly.\n\n", artStyle)

	b.WriteString("**Response Contract:**\nReturn the JSON object from the output contract: a non-empty narrativeSummary, a visualDescription, and a complete level with at least 3 interactive objects and a fully populated initialState.\n\n")
	b.WriteString("Ensure every interactive object meaningfully contributes to the puzzle chain, with clear conditions/effects linking them together.")

	return b.String()
}

// BackgroundImagePrompt derives the room background prompt from the
// generator's visual description.
func BackgroundImagePrompt(visualDescription string, artStyle story.ArtStyle) string {
	return fmt.Sprintf("Create a detailed, atmospheric image for an escape room game: %s. Style: %s, cinematic, immersive, high detail, perfect for a point-and-click adventure game.", visualDescription, artStyle)
}

// ObjectImagePrompt derives a hotspot's modal image prompt from its
// display name and the room's visual description.
func ObjectImagePrompt(objectName, visualDescription string) string {
	return fmt.Sprintf("A detailed, high-quality image of %s in the context of: %s. Suitable for an escape room game interface, clear and recognizable, cinematic style.", objectName, visualDescription)
}

// TransitionPrompt derives the video prompt bridging two consecutive rooms.
func TransitionPrompt(goal string, fromRoom, toRoom int, artStyle story.ArtStyle) string {
	return fmt.Sprintf("Create a %s cinematic video transitioning from room %d to room %d for the story goal %q. Highlight continuity and mood evolution.", artStyle, fromRoom, toRoom, goal)
}

// StoryOutline is the goal/description pair derived from a premise before
// any room exists.
type StoryOutline struct {
	Goal        string
	Description string
}

// BuildStoryOutline derives the story goal and description from the
// premise. The combined context seeds every room instruction.
func BuildStoryOutline(prompt string, artStyle story.ArtStyle) StoryOutline {
	return StoryOutline{
		Goal:        fmt.Sprintf("Complete the challenge: %s", prompt),
		Description: fmt.Sprintf("An exciting %s adventure where you must %s", artStyle, prompt),
	}
}

// Context renders the outline as the story context string used in prompts.
func (o StoryOutline) Context() string {
	return o.Goal + ". " + o.Description
}
