package weightplan

import (
	"context"
	"fmt"
	"strings"
)

// Completer turns a single prompt into a single text response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SummaryPrompt asks for a short motivational summary of the plan.
func SummaryPrompt(p UserProfile, totalWeeks int) string {
	return fmt.Sprintf(
		"A user wants to go from %g kg to %g kg over %d weeks. "+
			"Write an inspiring and friendly summary that briefly motivates the user "+
			"in 2-3 sentences. Be supportive and positive.",
		p.CurrentWeightKG, p.TargetWeightKG, totalWeeks)
}

// Summary is the prompt sent to the completer and its trimmed reply.
type Summary struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
}

// Summarize asks the completer for a motivational summary of the trajectory.
// Completer errors are returned unchanged.
func Summarize(ctx context.Context, c Completer, p UserProfile, points []TrajectoryPoint) (Summary, error) {
	prompt := SummaryPrompt(p, TotalWeeks(points))
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Prompt: prompt, Text: strings.TrimSpace(text)}, nil
}
