// ABOUTME: PromptStore resolves a logical role to its system prompt text
// ABOUTME: Re-reads prompt files on every call so edits take effect live
package prompt

import (
	"log"
	"os"
	"strings"
)

// Logical prompt roles.
const (
	RoleDefault      = "default"
	RoleEconomic     = "economic"
	RoleGeopolitical = "geopolitical"

	// RoleFollowup is used for reply-to-bot messages. It is never
	// file-backed; follow-ups always get the fallback prompt.
	RoleFollowup = "followup"
)

// Fallback is substituted whenever a prompt source is missing or unreadable.
const Fallback = "You are a helpful assistant."

// Store maps prompt roles to their file sources
type Store struct {
	paths map[string]string
}

// NewStore creates a Store from a role → file path table
func NewStore(paths map[string]string) *Store {
	if paths == nil {
		paths = map[string]string{}
	}
	return &Store{paths: paths}
}

// Load returns the system prompt for a role. The file is read fresh on
// every call. A missing or unreadable source is non-fatal: the fallback
// prompt is returned and a warning is logged.
func (s *Store) Load(role string) string {
	if role == RoleFollowup {
		return Fallback
	}

	path, ok := s.paths[role]
	if !ok || path == "" {
		log.Printf("Warning: no prompt source configured for role %q, using fallback", role)
		return Fallback
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: could not read prompt for role %q from %s: %v", role, path, err)
		return Fallback
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		log.Printf("Warning: prompt source for role %q at %s is empty, using fallback", role, path)
		return Fallback
	}

	return text
}
