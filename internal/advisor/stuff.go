package advisor

import (
	"context"
	"strings"
)

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StuffAnswerer puts every passage into a single prompt ahead of the
// question and asks for an answer that cites its sources.
type StuffAnswerer struct {
	Completer Completer
}

const stuffPreamble = `Given the following extracted parts of a long document and a question, create a final answer with references ("SOURCES").
If you don't know the answer, just say that you don't know. Don't try to make up an answer.
ALWAYS return a "SOURCES" part in your answer.

`

// StuffPrompt builds the single prompt sent by StuffAnswerer.
func StuffPrompt(docs []Document, question string) string {
	var sb strings.Builder
	sb.WriteString(stuffPreamble)
	sb.WriteString("QUESTION: ")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n=========\n")
	for _, d := range docs {
		sb.WriteString("Content: ")
		sb.WriteString(d.Content)
		sb.WriteString("\nSource: ")
		sb.WriteString(d.Source)
		sb.WriteString("\n")
	}
	sb.WriteString("=========\nFINAL ANSWER:")
	return sb.String()
}

// Answer implements Answerer.
func (s StuffAnswerer) Answer(ctx context.Context, docs []Document, question string) (string, error) {
	return s.Completer.Complete(ctx, StuffPrompt(docs, question))
}
