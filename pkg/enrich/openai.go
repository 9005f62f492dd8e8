package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const requestTimeout = 60 * time.Second

const systemPrompt = "You are a cultural trend analyst who thinks like a NYC creative director " +
	"and talks like a laid-back LA it-girl. You decode viral trends with ease, " +
	"always clocking what's legit vs. cringe."

const userPromptFmt = "You're a sharp, slightly elitist trend-savvy cultural critic with Gen Z wit and NYC edge. " +
	"TikTok's #%s is trending. Here's a sample of the content: %s\n\n" +
	"Give me a short, smart summary of the trend in 2-3 sentences. Make it human, sarcastic (but not cheesy), and insightful. " +
	"Skip suggestions. Don't be a cheerleader. You're not trying to be cool, you just are. " +
	"Assume the reader knows TikTok but isn't drinking the Kool-Aid. Avoid disclaimers about being an AI."

// OpenAI calls the chat completions API to summarize a trend.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an enricher backed by the OpenAI API. An empty model
// selects gpt-4o-mini; baseURL overrides the API endpoint for proxies
// and compatible providers.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Enrich requests a summary for the trend. Examples are reserved for
// future prompt versions and currently always empty on success.
func (o *OpenAI) Enrich(ctx context.Context, name, snippet string) (string, []string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptFmt, name, snippet)},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("openai: no choices returned")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", nil, fmt.Errorf("openai: empty completion")
	}

	return summary, []string{}, nil
}
