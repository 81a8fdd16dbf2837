// ABOUTME: Response shaping: section extraction and transport-sized chunking
// ABOUTME: Splits at newlines, then spaces, then hard cuts, never exceeding the limit
package core

import "strings"

// DefaultChunkLimit leaves headroom under the platform's 2000-character cap.
const DefaultChunkLimit = 1990

// ExtractSection truncates text to begin at the first marker found. Markers
// are tried in list order and the first one that occurs anywhere in the text
// wins, even if a later marker in the list occurs earlier in the text. If no
// marker is found the text is returned unchanged. Matching is a plain
// case-sensitive substring search.
func ExtractSection(text string, markers []string) string {
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if i := strings.Index(text, marker); i >= 0 {
			return text[i:]
		}
	}
	return text
}

// ChunkMessage splits text into pieces of at most limit characters. Each cut
// prefers the last newline at or before the limit, then the last space, and
// hard-splits mid-word only when neither exists. Leading whitespace is
// stripped from the remainder after every cut. Limits count runes, not
// bytes, so a hard cut never lands inside a UTF-8 sequence.
func ChunkMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	rest := runes
	for len(rest) > limit {
		// The separator itself may sit at index limit, so the window
		// is one rune wider than the chunk can be.
		window := rest[:limit+1]

		cut := lastIndexRune(window, '\n')
		if cut <= 0 {
			cut = lastIndexRune(window, ' ')
		}
		if cut <= 0 {
			cut = limit
		}

		chunks = append(chunks, string(rest[:cut]))
		rest = trimLeadingWhitespace(rest[cut:])
	}

	if len(rest) > 0 {
		chunks = append(chunks, string(rest))
	}
	return chunks
}

// lastIndexRune finds the last occurrence of target, -1 if absent
func lastIndexRune(window []rune, target rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == target {
			return i
		}
	}
	return -1
}

// trimLeadingWhitespace drops spaces, tabs, and line breaks from the front
func trimLeadingWhitespace(runes []rune) []rune {
	i := 0
	for i < len(runes) {
		switch runes[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return runes[i:]
		}
	}
	return runes[i:]
}
