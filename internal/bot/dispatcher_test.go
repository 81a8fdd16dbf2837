// ABOUTME: Tests for dispatcher trigger routing, shaping, and emission ordering
// ABOUTME: Pins the history-mutation-only-on-success guarantee end to end
package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/harper/foresight/internal/history"
	"github.com/harper/foresight/internal/llm"
	"github.com/harper/foresight/internal/models"
	"github.com/harper/foresight/internal/prompt"
)

type fakeCompleter struct {
	text  string
	err   error
	calls int
	got   llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeSender struct {
	replies []string
	sends   []string
}

func (f *fakeSender) Reply(_ context.Context, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeSender) Send(_ context.Context, text string) error {
	f.sends = append(f.sends, text)
	return nil
}

type stubPrompts struct {
	loaded []string
}

func (s *stubPrompts) Load(role string) string {
	s.loaded = append(s.loaded, role)
	return "prompt for " + role
}

func newTestDispatcher(completer *fakeCompleter, store history.Store, chunkLimit int) (*Dispatcher, *stubPrompts) {
	prompts := &stubPrompts{}
	d := NewDispatcher(prompts, store, completer, chunkLimit)
	d.now = func() time.Time {
		return time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	}
	return d, prompts
}

func TestHandleCommand_Success(t *testing.T) {
	completer := &fakeCompleter{text: "All quiet on every front."}
	store := history.NewMemoryStore(history.DefaultDepth)
	d, prompts := newTestDispatcher(completer, store, 1990)
	sender := &fakeSender{}

	if err := d.HandleCommand(context.Background(), "u1", "predict", sender); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}

	wantMessage := "Analyze recent events for today, 2026-08-31. Initiate your scan and provide your insights."
	if completer.got.UserMessage != wantMessage {
		t.Errorf("user message = %q, want %q", completer.got.UserMessage, wantMessage)
	}
	if completer.got.SystemPrompt != "prompt for default" {
		t.Errorf("system prompt = %q, want the default role prompt", completer.got.SystemPrompt)
	}
	if completer.got.MaxTokens != llm.DefaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", completer.got.MaxTokens, llm.DefaultMaxTokens)
	}
	if len(prompts.loaded) != 1 || prompts.loaded[0] != prompt.RoleDefault {
		t.Errorf("loaded roles = %v, want [default]", prompts.loaded)
	}

	if len(sender.replies) != 1 || len(sender.sends) != 0 {
		t.Fatalf("replies/sends = %d/%d, want 1/0", len(sender.replies), len(sender.sends))
	}
	if sender.replies[0] != "All quiet on every front." {
		t.Errorf("reply = %q", sender.replies[0])
	}

	turns, _ := store.Get("u1")
	if len(turns) != 2 {
		t.Fatalf("history length = %d, want 2", len(turns))
	}
	if turns[0] != models.UserTurn(wantMessage) {
		t.Errorf("stored user turn = %+v", turns[0])
	}
	if turns[1] != models.AssistantTurn("All quiet on every front.") {
		t.Errorf("stored assistant turn = %+v", turns[1])
	}
}

func TestHandleCommand_ExtractsMarkerSection(t *testing.T) {
	completer := &fakeCompleter{
		text: "Let me walk through my reasoning first.\n\nPredictions\n1. Rates hold steady.",
	}
	d, _ := newTestDispatcher(completer, history.NewMemoryStore(history.DefaultDepth), 1990)
	sender := &fakeSender{}

	if err := d.HandleCommand(context.Background(), "u1", "predict", sender); err != nil {
		t.Fatal(err)
	}

	want := "Predictions\n1. Rates hold steady."
	if sender.replies[0] != want {
		t.Errorf("reply = %q, want text starting at the marker", sender.replies[0])
	}
}

func TestHandleCommand_EconomyUsesItsRoleAndBudget(t *testing.T) {
	completer := &fakeCompleter{text: "Economic Outlook\nSteady."}
	d, prompts := newTestDispatcher(completer, history.NewMemoryStore(history.DefaultDepth), 1990)

	if err := d.HandleCommand(context.Background(), "u1", "economy", &fakeSender{}); err != nil {
		t.Fatal(err)
	}

	if prompts.loaded[0] != prompt.RoleEconomic {
		t.Errorf("loaded role = %q, want economic", prompts.loaded[0])
	}
	if completer.got.MaxTokens != 3000 {
		t.Errorf("max tokens = %d, want 3000", completer.got.MaxTokens)
	}
}

func TestHandleCommand_UnknownCommandIgnored(t *testing.T) {
	completer := &fakeCompleter{text: "should never be requested"}
	store := history.NewMemoryStore(history.DefaultDepth)
	d, _ := newTestDispatcher(completer, store, 1990)
	sender := &fakeSender{}

	if err := d.HandleCommand(context.Background(), "u1", "astrology", sender); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}

	if completer.calls != 0 {
		t.Error("unknown command reached the completion client")
	}
	if len(sender.replies)+len(sender.sends) != 0 {
		t.Error("unknown command produced output")
	}
	if turns, _ := store.Get("u1"); len(turns) != 0 {
		t.Error("unknown command mutated history")
	}
}

func TestHandleReply_VerbatimAndUnextracted(t *testing.T) {
	// A follow-up reply must skip marker extraction even when the text
	// contains a marker.
	completer := &fakeCompleter{text: "Context first. Predictions later."}
	d, prompts := newTestDispatcher(completer, history.NewMemoryStore(history.DefaultDepth), 1990)
	sender := &fakeSender{}

	if err := d.HandleReply(context.Background(), "u1", "why do you think so?", sender); err != nil {
		t.Fatal(err)
	}

	if completer.got.UserMessage != "why do you think so?" {
		t.Errorf("user message = %q, want the verbatim reply", completer.got.UserMessage)
	}
	if prompts.loaded[0] != prompt.RoleFollowup {
		t.Errorf("loaded role = %q, want followup", prompts.loaded[0])
	}
	if sender.replies[0] != "Context first. Predictions later." {
		t.Errorf("reply = %q, want full unextracted text", sender.replies[0])
	}
}

func TestRelay_IncludesHistoryInOrder(t *testing.T) {
	store := history.NewMemoryStore(history.DefaultDepth)
	store.Append("u1", models.UserTurn("first question"), models.AssistantTurn("first answer"))

	completer := &fakeCompleter{text: "second answer"}
	d, _ := newTestDispatcher(completer, store, 1990)

	if err := d.HandleReply(context.Background(), "u1", "second question", &fakeSender{}); err != nil {
		t.Fatal(err)
	}

	if len(completer.got.History) != 2 {
		t.Fatalf("history in request = %d turns, want 2", len(completer.got.History))
	}
	if completer.got.History[0].Content != "first question" {
		t.Errorf("history[0] = %+v, want the oldest turn first", completer.got.History[0])
	}

	turns, _ := store.Get("u1")
	if len(turns) != 4 {
		t.Errorf("history length after exchange = %d, want 4", len(turns))
	}
}

func TestRelay_UpstreamErrorLeavesHistoryUntouched(t *testing.T) {
	store := history.NewMemoryStore(history.DefaultDepth)
	store.Append("u1", models.UserTurn("old question"), models.AssistantTurn("old answer"))

	completer := &fakeCompleter{err: &llm.UpstreamError{StatusCode: 500}}
	d, _ := newTestDispatcher(completer, store, 1990)
	sender := &fakeSender{}

	if err := d.HandleCommand(context.Background(), "u1", "predict", sender); err != nil {
		t.Fatalf("HandleCommand() error = %v", err)
	}

	if len(sender.replies) != 1 || len(sender.sends) != 0 {
		t.Fatalf("replies/sends = %d/%d, want exactly one unchunked reply", len(sender.replies), len(sender.sends))
	}
	want := "Sorry, I encountered an error with the AI service (HTTP 500)."
	if sender.replies[0] != want {
		t.Errorf("reply = %q, want %q", sender.replies[0], want)
	}

	turns, _ := store.Get("u1")
	if len(turns) != 2 || turns[0].Content != "old question" || turns[1].Content != "old answer" {
		t.Errorf("history changed on failure: %+v", turns)
	}
}

func TestRelay_ConnectionFailureLeavesHistoryUntouched(t *testing.T) {
	store := history.NewMemoryStore(history.DefaultDepth)
	completer := &fakeCompleter{err: llm.ErrConnection}
	d, _ := newTestDispatcher(completer, store, 1990)
	sender := &fakeSender{}

	if err := d.HandleReply(context.Background(), "u1", "hello?", sender); err != nil {
		t.Fatal(err)
	}

	want := "Sorry, I couldn't connect to the AI service."
	if len(sender.replies) != 1 || sender.replies[0] != want {
		t.Errorf("replies = %q, want [%q]", sender.replies, want)
	}
	if turns, _ := store.Get("u1"); len(turns) != 0 {
		t.Error("history mutated on connection failure")
	}
}

func TestRelay_ChunksLongRepliesInOrder(t *testing.T) {
	completer := &fakeCompleter{text: strings.TrimSpace(strings.Repeat("alpha beta ", 6))}
	d, _ := newTestDispatcher(completer, history.NewMemoryStore(history.DefaultDepth), 20)
	sender := &fakeSender{}

	if err := d.HandleReply(context.Background(), "u1", "go on", sender); err != nil {
		t.Fatal(err)
	}

	if len(sender.replies) != 1 {
		t.Fatalf("replies = %d, want 1 (only the first chunk is a reply)", len(sender.replies))
	}
	if len(sender.sends) == 0 {
		t.Fatal("long response produced no follow-up sends")
	}

	joined := strings.Join(append(sender.replies, sender.sends...), " ")
	if strings.Join(strings.Fields(joined), " ") != completer.text {
		t.Errorf("reassembled output = %q, want original text", joined)
	}
	for _, chunk := range append(sender.replies, sender.sends...) {
		if len(chunk) > 20 {
			t.Errorf("chunk %q exceeds the limit", chunk)
		}
	}
}
