// ABOUTME: Chat command: drives the relay pipeline from an interactive console
// ABOUTME: Stands in for the messaging platform during local testing
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/foresight/internal/bot"
	"github.com/harper/foresight/internal/config"
	"github.com/harper/foresight/internal/history"
	"github.com/harper/foresight/internal/llm"
	"github.com/harper/foresight/internal/prompt"
)

var chatUser string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive console session against the relay",
		Long: `Open a console session that exercises the full relay pipeline.

Slash commands trigger a primary insight (for example /predict); any other
line is forwarded as a follow-up reply with your conversation history.

Examples:
  foresight chat
  foresight chat --user alice`,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatUser, "user", "console", "User identifier for conversation history")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	var store history.Store
	if cfg.HistoryBackend == config.BackendSQLite {
		sqlStore, err := history.NewSQLiteStore(cfg.HistoryDBPath, cfg.HistoryDepth)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	} else {
		store = history.NewMemoryStore(cfg.HistoryDepth)
	}

	prompts := prompt.NewStore(map[string]string{
		prompt.RoleDefault:      cfg.SystemPromptPath,
		prompt.RoleEconomic:     cfg.EconomicPromptPath,
		prompt.RoleGeopolitical: cfg.GeopoliticalPromptPath,
	})

	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:      cfg.APIKey,
		Endpoint:    cfg.APIEndpoint,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}

	dispatcher := bot.NewDispatcher(prompts, store, client, cfg.ChunkLimit)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Foresight console session. Try /predict, /economy, or /geopolitics;")
	fmt.Fprintln(out, "plain text is sent as a follow-up reply. /quit exits.")

	sender := &consoleSender{out: out}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		ctx := cmd.Context()
		if name, ok := strings.CutPrefix(line, "/"); ok {
			err = dispatcher.HandleCommand(ctx, chatUser, name, sender)
		} else {
			err = dispatcher.HandleReply(ctx, chatUser, line, sender)
		}
		if err != nil {
			log.Printf("delivery failed: %v", err)
		}
	}
}

// consoleSender prints chunks to the console in place of the platform client.
type consoleSender struct {
	out io.Writer
}

func (s *consoleSender) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}

func (s *consoleSender) Send(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}
