package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoMatchingContent means retrieval found nothing usable. It is a normal
// outcome, distinct from upstream failures.
var ErrNoMatchingContent = errors.New("no relevant information found")

// NoMatchReply is the user-facing text for ErrNoMatchingContent.
const NoMatchReply = "Sorry, no context matched your question well enough."

// Answer is an advisor response with the prompt and passages behind it.
type Answer struct {
	Prompt  string          `json:"prompt"`
	Text    string          `json:"text"`
	Sources []SourceSummary `json:"sources"`
}

// Advisor runs retrieval, filtering and completion for one caller.
type Advisor struct {
	searcher  Searcher
	answerer  Answerer
	k         int
	threshold float64
}

// Option customizes an Advisor.
type Option func(*Advisor)

// WithK sets how many hits are requested from the searcher.
func WithK(k int) Option {
	return func(a *Advisor) {
		if k > 0 {
			a.k = k
		}
	}
}

// WithScoreThreshold sets the maximum distance a question hit may have.
func WithScoreThreshold(t float64) Option {
	return func(a *Advisor) { a.threshold = t }
}

// New returns an Advisor using DefaultK and DefaultScoreThreshold unless
// overridden.
func New(s Searcher, ans Answerer, opts ...Option) *Advisor {
	a := &Advisor{searcher: s, answerer: ans, k: DefaultK, threshold: DefaultScoreThreshold}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Ask answers question for a user with the given metrics. Hits must come
// from an allowed source and be within the score threshold; when none are
// left it returns ErrNoMatchingContent without calling the answerer. When
// sess is non-nil the exchange is recorded on it, including no-match turns.
func (a *Advisor) Ask(ctx context.Context, question string, m Metrics, sess *Session) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("advisor: empty question")
	}

	hits, err := a.searcher.Search(ctx, question, a.k)
	if err != nil {
		return Answer{}, fmt.Errorf("advisor: search: %w", err)
	}
	kept := FilterDocuments(hits, a.threshold)
	log.Debug().Int("hits", len(hits)).Int("kept", len(kept)).Msg("[advisor] ask retrieval")

	if len(kept) == 0 {
		if sess != nil {
			sess.record(Turn{Question: question, Answer: NoMatchReply, NoMatch: true})
		}
		return Answer{Text: NoMatchReply}, ErrNoMatchingContent
	}

	prompt := AskPrompt(question, m)
	text, err := a.answerer.Answer(ctx, documents(kept), prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("advisor: answer: %w", err)
	}

	ans := Answer{
		Prompt:  strings.TrimSpace(prompt),
		Text:    strings.TrimSpace(text),
		Sources: summarize(kept, true),
	}
	if sess != nil {
		sess.record(Turn{Question: question, Answer: ans.Text, Prompt: ans.Prompt, Sources: ans.Sources})
	}
	return ans, nil
}

// Guidance produces a weekly exercise and nutrition plan. Hits are filtered
// by source only, and the answerer is called even when none remain.
func (a *Advisor) Guidance(ctx context.Context, m Metrics) (Answer, error) {
	hits, err := a.searcher.Search(ctx, GuidanceQuery(m), a.k)
	if err != nil {
		return Answer{}, fmt.Errorf("advisor: search: %w", err)
	}
	kept := filterSources(hits)
	log.Debug().Int("hits", len(hits)).Int("kept", len(kept)).Msg("[advisor] guidance retrieval")

	prompt := GuidancePrompt(m)
	text, err := a.answerer.Answer(ctx, documents(kept), prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("advisor: answer: %w", err)
	}
	return Answer{
		Prompt:  strings.TrimSpace(prompt),
		Text:    strings.TrimSpace(text),
		Sources: summarize(kept, false),
	}, nil
}
