// ABOUTME: Dispatcher maps inbound triggers to completions and emits chunked replies
// ABOUTME: Owns the append-history-only-on-success branch of the relay
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/harper/foresight/internal/core"
	"github.com/harper/foresight/internal/history"
	"github.com/harper/foresight/internal/llm"
	"github.com/harper/foresight/internal/models"
	"github.com/harper/foresight/internal/prompt"
)

// Sender is the platform collaborator seam for one trigger. The first chunk
// of a response goes out via Reply, every later chunk via Send.
type Sender interface {
	Reply(ctx context.Context, text string) error
	Send(ctx context.Context, text string) error
}

// Completer issues one completion call per request
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// PromptLoader resolves a role to its system prompt
type PromptLoader interface {
	Load(role string) string
}

// Dispatcher routes triggers through the completion client and response
// shaping, then emits the result through the platform collaborator.
type Dispatcher struct {
	prompts    PromptLoader
	store      history.Store
	client     Completer
	commands   map[string]Command
	chunkLimit int
	now        func() time.Time
}

// NewDispatcher wires a dispatcher with the default command registry
func NewDispatcher(prompts PromptLoader, store history.Store, client Completer, chunkLimit int) *Dispatcher {
	if chunkLimit < 1 {
		chunkLimit = core.DefaultChunkLimit
	}
	return &Dispatcher{
		prompts:    prompts,
		store:      store,
		client:     client,
		commands:   DefaultCommands(),
		chunkLimit: chunkLimit,
		now:        time.Now,
	}
}

// HandleCommand processes a primary slash command. Unknown command names are
// ignored without a response; the platform collaborator should not deliver
// them, but a stale registration can.
func (d *Dispatcher) HandleCommand(ctx context.Context, userID, name string, sender Sender) error {
	cmd, ok := d.commands[name]
	if !ok {
		log.Printf("Ignoring unknown command %q from user %s", name, userID)
		return nil
	}
	return d.relay(ctx, userID, cmd.Role, cmd.InitialMessage(d.now()), cmd.Markers, cmd.MaxTokens, sender)
}

// HandleReply processes a reply-to-bot message as a follow-up turn. The
// verbatim content is forwarded and no section extraction is applied.
func (d *Dispatcher) HandleReply(ctx context.Context, userID, content string, sender Sender) error {
	return d.relay(ctx, userID, prompt.RoleFollowup, content, nil, llm.DefaultMaxTokens, sender)
}

func (d *Dispatcher) relay(ctx context.Context, userID, role, message string, markers []string, maxTokens int, sender Sender) error {
	reqID := uuid.New().String()[:8]
	log.Printf("[%s] relaying %s request for user %s", reqID, role, userID)

	systemPrompt := d.prompts.Load(role)

	turns, err := d.store.Get(userID)
	if err != nil {
		log.Printf("[%s] history read failed: %v", reqID, err)
		return sender.Reply(ctx, llm.UserMessage(err))
	}

	text, err := d.client.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		History:      turns,
		UserMessage:  message,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		log.Printf("[%s] completion failed: %v", reqID, err)
		return sender.Reply(ctx, llm.UserMessage(err))
	}

	// The exchange is recorded exactly once, and only after a fully
	// successful round trip. Failures above never reach this line.
	if err := d.store.Append(userID, models.UserTurn(message), models.AssistantTurn(text)); err != nil {
		// The reply is still worth delivering; the context window just
		// loses this exchange.
		log.Printf("[%s] history append failed: %v", reqID, err)
	}

	shaped := core.ExtractSection(text, markers)
	chunks := core.ChunkMessage(shaped, d.chunkLimit)

	for i, chunk := range chunks {
		var sendErr error
		if i == 0 {
			sendErr = sender.Reply(ctx, chunk)
		} else {
			sendErr = sender.Send(ctx, chunk)
		}
		if sendErr != nil {
			return fmt.Errorf("sending chunk %d of %d: %w", i+1, len(chunks), sendErr)
		}
	}

	log.Printf("[%s] delivered %d chunk(s)", reqID, len(chunks))
	return nil
}
