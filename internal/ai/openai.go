package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient работает с OpenAI-совместимыми API (OpenAI, Groq).
type OpenAIClient struct {
	apiKey    string
	model     string
	maxTokens int
	jsonMode  bool
	client    *openai.Client
}

// NewOpenAIClient создает клиента; пустой BaseURL означает адрес OpenAI.
func NewOpenAIClient(opts Options) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimRight(opts.BaseURL, "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &OpenAIClient{
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		jsonMode:  opts.JSONMode,
		client:    openai.NewClientWithConfig(cfg),
	}
}

// Chat отправляет сообщения в chat completions и возвращает первый вариант ответа.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, ErrMissingAPIKey
	}

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: defaultTemperature,
		MaxTokens:   resolveMaxTokens(c.maxTokens),
	}
	for _, message := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    message.Role,
			Content: message.Content,
		})
	}
	if c.jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", nil, fmt.Errorf("openai api error (%d): %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", nil, fmt.Errorf("openai request: %w", err)
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return "", nil, err
	}

	if len(response.Choices) == 0 {
		return "", raw, errors.New("openai response missing choices")
	}

	return response.Choices[0].Message.Content, raw, nil
}
