// Package ai implements the trade analyzer on the OpenAI chat API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/vitos/trade_journal/internal/domain"
)

const systemPrompt = `You are a trading psychology coach reviewing a retail trader's journal.
Given their recent trades, point out behavioral patterns: emotion tags that correlate
with losses, recurring execution mistakes, and discipline trends. Be specific and
reference the data. Keep it under 300 words, plain text.`

// Client talks to the OpenAI chat completion API. A zero API key makes
// the client report unavailable instead of failing mid-request.
type Client struct {
	client *openai.Client
	model  string
	keySet bool
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(apiKey),
		model:  model,
		keySet: apiKey != "",
	}
}

func (c *Client) Available() bool {
	return c.keySet
}

// coachTrade is the reduced view of a trade sent to the model; free
// text beyond the summary stays local.
type coachTrade struct {
	Symbol    string   `json:"symbol"`
	Pnl       float64  `json:"pnl"`
	Setup     string   `json:"setup"`
	Emotions  []string `json:"emotions"`
	Error     string   `json:"error"`
	Execution int      `json:"execution"`
	Summary   string   `json:"summary"`
}

// Analyze asks the model for behavioral commentary on the given trades.
func (c *Client) Analyze(ctx context.Context, trades []*domain.Trade) (string, error) {
	if !c.keySet {
		return "", domain.ErrAIKeyMissing
	}

	reduced := make([]coachTrade, 0, len(trades))
	for _, t := range trades {
		reduced = append(reduced, coachTrade{
			Symbol:    t.Symbol,
			Pnl:       t.PnlAmount,
			Setup:     t.Setup,
			Emotions:  t.Emotions,
			Error:     string(t.ErrorCategory),
			Execution: t.ExecutionRating,
			Summary:   t.Summary,
		})
	}
	payload, err := json.Marshal(reduced)
	if err != nil {
		return "", fmt.Errorf("failed to encode trades: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		if isAuthError(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrAIKeyMissing, err)
		}
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// isAuthError recognizes a rejected or under-scoped credential so the
// caller can surface setup guidance instead of a generic failure.
func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403
	}
	msg := err.Error()
	return strings.Contains(msg, "401") || strings.Contains(msg, "invalid_api_key")
}
