package dispatch

import "strings"

// Split breaks text into ordered segments of at most max bytes. It prefers
// paragraph boundaries, then line boundaries, and falls back to hard cuts
// only when a single line exceeds the limit. Concatenating the returned
// segments reconstructs the input exactly.
func Split(text string, max int) []string {
	if max <= 0 || len(text) <= max {
		return []string{text}
	}

	var segments []string
	rest := text
	for len(rest) > max {
		cut := splitPoint(rest, max)
		segments = append(segments, rest[:cut])
		rest = rest[cut:]
	}
	if len(rest) > 0 {
		segments = append(segments, rest)
	}
	return segments
}

// splitPoint finds the byte offset to cut at, keeping separators attached
// to the preceding segment so the join is lossless.
func splitPoint(text string, max int) int {
	window := text[:max]

	// Paragraph boundary: cut after the last blank line in the window.
	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return i + 2
	}

	// Line boundary.
	if i := strings.LastIndexByte(window, '\n'); i > 0 {
		return i + 1
	}

	// Word boundary.
	if i := strings.LastIndexByte(window, ' '); i > 0 {
		return i + 1
	}

	// Hard cut, avoiding a split inside a UTF-8 sequence.
	cut := max
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return cut
}
