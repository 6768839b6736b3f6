package vectorstore

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"lg/weight-planner-api/internal/advisor"
)

// Chunking defaults for index-docs.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// SourceName derives a source label from a file path: the base name
// without its extension, so "docs/Human_Nut.txt" becomes "Human_Nut".
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Chunk splits text into passages of at most size characters, each
// starting overlap characters before the end of the previous one. Breaks
// prefer paragraph, then line, then word boundaries.
func Chunk(text, source string, size, overlap int) []advisor.Document {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	r := []rune(strings.TrimSpace(text))
	var docs []advisor.Document
	for start := 0; start < len(r); {
		end := start + size
		if end >= len(r) {
			end = len(r)
		} else {
			end = breakPoint(r, start, end)
		}
		if piece := strings.TrimSpace(string(r[start:end])); piece != "" {
			docs = append(docs, advisor.Document{Content: piece, Source: source})
		}
		if end == len(r) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		// Start the overlap on a word boundary.
		for next < end && !unicode.IsSpace(r[next-1]) {
			next++
		}
		start = next
	}
	return docs
}

// breakPoint moves end back to the last separator in the second half of
// r[start:end], or leaves it when there is none.
func breakPoint(r []rune, start, end int) int {
	window := string(r[start:end])
	half := len(window) / 2
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(window, sep); i > half {
			return start + utf8.RuneCountInString(window[:i+len(sep)])
		}
	}
	return end
}
