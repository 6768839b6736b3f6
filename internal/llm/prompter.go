package llm

import (
	"context"
	"strings"
)

// Prompter sends one prompt as a single user message. It satisfies the
// Completer interfaces of the planning packages.
type Prompter struct {
	Client      *Client
	Model       string
	System      string
	Temperature float64
	MaxTokens   int
}

// Complete returns the trimmed reply to prompt.
func (p Prompter) Complete(ctx context.Context, prompt string) (string, error) {
	var messages []Message
	if p.System != "" {
		messages = append(messages, Message{Role: "system", Content: p.System})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	out, err := p.Client.Chat(ctx, ChatRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SummaryPrompter writes the short trajectory summary.
func (c *Client) SummaryPrompter() Prompter {
	return Prompter{Client: c, Model: "gpt-4-turbo", Temperature: 1, MaxTokens: 100}
}

// MealPrompter names and annotates the selected meals.
func (c *Client) MealPrompter() Prompter {
	return Prompter{Client: c, Model: "gpt-3.5-turbo", Temperature: 1, MaxTokens: 500}
}

// AskPrompter answers free-form questions from retrieved context.
func (c *Client) AskPrompter() Prompter {
	return Prompter{Client: c, Model: DefaultChatModel, Temperature: 0.4}
}

// GuidancePrompter writes the weekly exercise and nutrition plan.
func (c *Client) GuidancePrompter() Prompter {
	return Prompter{Client: c, Model: DefaultChatModel, Temperature: 0.3}
}
