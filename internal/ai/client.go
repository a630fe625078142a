// Package ai wraps the hosted text models used for meal analysis and the
// nutrition assistant.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel = "gemini-1.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

var (
	ErrNotConfigured = errors.New("AI service not configured")
	ErrEmptyResponse = errors.New("model returned no text")
)

type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

type Settings struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
}

// New returns ErrNotConfigured when the selected provider has no API key.
func New(ctx context.Context, settings Settings) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case "", ProviderGemini:
		if strings.TrimSpace(settings.GeminiAPIKey) == "" {
			return nil, ErrNotConfigured
		}
		return NewGemini(ctx, settings.GeminiAPIKey, settings.GeminiModel)
	case ProviderOpenAI:
		if strings.TrimSpace(settings.OpenAIAPIKey) == "" {
			return nil, ErrNotConfigured
		}
		return NewOpenAI(settings.OpenAIAPIKey, settings.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", settings.Provider)
	}
}

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (gemini *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := gemini.client.GenerativeModel(gemini.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var builder strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}

func (gemini *Gemini) Close() error {
	return gemini.client.Close()
}

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey string, model string) *OpenAI {
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (client *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := client.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: client.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return response.Choices[0].Message.Content, nil
}

func (client *OpenAI) Close() error {
	return nil
}
