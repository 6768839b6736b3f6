// Package advisor answers nutrition questions from retrieved reference
// passages. Retrieval and completion are collaborators supplied by the
// caller.
package advisor

import (
	"context"
	"fmt"
	"strings"
)

// Retrieval defaults.
const (
	DefaultK              = 7
	DefaultScoreThreshold = 0.5
	SnippetLength         = 600
	WrapWidth             = 100
)

// allowedSources is the fixed set of index sources answers may draw on.
var allowedSources = map[string]bool{
	"diet":        true,
	"physical":    true,
	"Weight":      true,
	"GymDataset":  true,
	"weight_gain": true,
	"weight_loss": true,
	"Human_Nut":   true,
	"Nut_Science": true,
}

// AllowedSource reports whether source is on the allow-list. Matching is
// exact and case-sensitive.
func AllowedSource(source string) bool {
	return allowedSources[source]
}

// Document is one indexed passage.
type Document struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ScoredDocument is a search hit. Score is a distance: lower is closer.
type ScoredDocument struct {
	Document
	Score float64 `json:"score"`
}

// Searcher finds the k passages nearest to a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]ScoredDocument, error)
}

// Answerer produces one answer from context passages and a question.
type Answerer interface {
	Answer(ctx context.Context, docs []Document, question string) (string, error)
}

// FilterDocuments keeps hits from allowed sources whose score is at most
// threshold, preserving order.
func FilterDocuments(hits []ScoredDocument, threshold float64) []ScoredDocument {
	var out []ScoredDocument
	for _, h := range hits {
		if AllowedSource(h.Source) && h.Score <= threshold {
			out = append(out, h)
		}
	}
	return out
}

// filterSources applies only the source allow-list.
func filterSources(hits []ScoredDocument) []ScoredDocument {
	var out []ScoredDocument
	for _, h := range hits {
		if AllowedSource(h.Source) {
			out = append(out, h)
		}
	}
	return out
}

func documents(hits []ScoredDocument) []Document {
	docs := make([]Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
	}
	return docs
}

/* ─── Display summaries ──────────────────────────────────────────────── */

// Snippet returns the first SnippetLength characters of content, trimmed,
// with newlines flattened to spaces and "..." appended.
func Snippet(content string) string {
	r := []rune(content)
	if len(r) > SnippetLength {
		r = r[:SnippetLength]
	}
	s := strings.TrimSpace(string(r))
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s + "..."
}

// Wrap fills text into lines of at most width characters, breaking on
// whitespace. Words longer than width are broken across lines.
func Wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return strings.Join(words, " ")
	}

	var lines []string
	var line []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		switch {
		case len(line) == 0:
			line = append(line, word...)
		case len(line)+1+len(word) <= width:
			line = append(line, ' ')
			line = append(line, word...)
		default:
			lines = append(lines, string(line))
			line = append([]rune(nil), word...)
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return strings.Join(lines, "\n")
}

// SourceSummary is the display form of one passage used for an answer.
type SourceSummary struct {
	Chunk   int     `json:"chunk"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`

	scored bool
}

// String renders the summary as a bold header line followed by the wrapped
// snippet.
func (s SourceSummary) String() string {
	if s.scored {
		return fmt.Sprintf("**Chunk %d - Source: %s, Similarity Score: %.4f**\n%s", s.Chunk, s.Source, s.Score, s.Snippet)
	}
	return fmt.Sprintf("**Chunk %d - Source:** %s\n%s", s.Chunk, s.Source, s.Snippet)
}

func summarize(hits []ScoredDocument, scored bool) []SourceSummary {
	out := make([]SourceSummary, len(hits))
	for i, h := range hits {
		source := h.Source
		if source == "" {
			source = "Unknown Source"
		}
		out[i] = SourceSummary{
			Chunk:   i + 1,
			Source:  source,
			Score:   h.Score,
			Snippet: Wrap(Snippet(h.Content), WrapWidth),
			scored:  scored,
		}
	}
	return out
}
