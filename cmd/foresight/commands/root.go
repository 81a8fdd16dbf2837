// ABOUTME: Root command for the foresight CLI
// ABOUTME: Registers subcommands and provides the Execute entry point
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foresight",
		Short: "Conversational relay between a messaging platform and a completion API",
		Long: `Foresight relays short natural-language requests to a chat-completion
API with bounded per-user context, and returns the answer re-split to the
platform's message-size limit.

The messaging gateway itself runs as an external collaborator; the chat
subcommand drives the same relay pipeline from the console.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
