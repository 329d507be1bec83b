// Command validate checks a level JSON document against the full set of
// structural and semantic rules, printing each violation's class.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jwebster45206/riddle-rooms/pkg/level"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <level.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file %s: %v\n", filename, err)
		os.Exit(1)
	}

	lv, names, err := level.ParseAndValidate(data)
	if err != nil {
		var structural *level.StructuralError
		var semantic *level.SemanticError
		switch {
		case errors.As(err, &structural):
			fmt.Fprintf(os.Stderr, "Structural violation [%s] at %s: %s\n", structural.Class, structural.Field, structural.Msg)
		case errors.As(err, &semantic):
			fmt.Fprintf(os.Stderr, "Semantic violation [%s] at %s: %s\n", semantic.Class, semantic.Field, semantic.Msg)
		default:
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Level %q is valid: %d objects, %d initial flags", lv.ID, len(lv.Room.Objects), len(lv.InitialState))
	if len(names) > 0 {
		fmt.Printf(", %d display names", len(names))
	}
	fmt.Println()
}
