// ABOUTME: Tagged error kinds for completion calls and their user-facing renderings
// ABOUTME: Distinguishes upstream non-200 replies from transport-level failures
package llm

import (
	"errors"
	"fmt"
)

// ErrConnection marks transport-level failures (timeout, DNS, TLS, reset)
// and success replies whose body could not be parsed.
var ErrConnection = errors.New("could not connect to the AI service")

// UpstreamError means the AI service was reachable but returned a non-200
// status. History must never be mutated when one of these comes back.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI service returned HTTP %d", e.StatusCode)
}

// UserMessage renders a completion error as the chat message shown to the
// user. Every per-request failure collapses to one of these two strings.
func UserMessage(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("Sorry, I encountered an error with the AI service (HTTP %d).", upstream.StatusCode)
	}
	return "Sorry, I couldn't connect to the AI service."
}
