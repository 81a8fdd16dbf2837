// ABOUTME: Registry of primary slash commands and their prompt roles
// ABOUTME: Each command binds a role, a marker set, and a reply token budget
package bot

import (
	"fmt"
	"time"

	"github.com/harper/foresight/internal/llm"
	"github.com/harper/foresight/internal/prompt"
)

// initialInstruction seeds a primary command's conversation. The date keeps
// the model anchored to the current day without relying on its own clock.
const initialInstruction = "Analyze recent events for today, %s. Initiate your scan and provide your insights."

// Command describes one primary slash command
type Command struct {
	Name      string
	Role      string
	Markers   []string
	MaxTokens int
}

// InitialMessage builds the command's deterministic opening instruction,
// embedding the UTC calendar date.
func (c Command) InitialMessage(now time.Time) string {
	return fmt.Sprintf(initialInstruction, now.UTC().Format("2006-01-02"))
}

// DefaultCommands returns the built-in command registry
func DefaultCommands() map[string]Command {
	return map[string]Command{
		"predict": {
			Name:      "predict",
			Role:      prompt.RoleDefault,
			Markers:   []string{"Predictions"},
			MaxTokens: llm.DefaultMaxTokens,
		},
		"economy": {
			Name:      "economy",
			Role:      prompt.RoleEconomic,
			Markers:   []string{"Economic Outlook", "Predictions"},
			MaxTokens: 3000,
		},
		"geopolitics": {
			Name:      "geopolitics",
			Role:      prompt.RoleGeopolitical,
			Markers:   []string{"Geopolitical Outlook", "Predictions"},
			MaxTokens: 3000,
		},
	}
}
