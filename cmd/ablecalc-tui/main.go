package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ablecalc/ablecalc/internal/config"
	"github.com/ablecalc/ablecalc/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ablecalc-tui <input-file> [regulatory-file]")
		os.Exit(1)
	}

	parser := config.NewInputParser()
	input, err := parser.LoadPlannerInput(os.Args[1])
	if err != nil {
		fmt.Printf("Error loading input: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultRegulatoryConfig()
	if len(os.Args) > 2 {
		cfg, err = parser.LoadRegulatoryConfig(os.Args[2])
		if err != nil {
			fmt.Printf("Error loading regulatory config: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(tui.NewModel(cfg, input), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
