package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewSelectsProvider проверяет выбор клиента по провайдеру.
func TestNewSelectsProvider(t *testing.T) {
	if client, err := New(Options{Provider: "Groq"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := client.(*OpenAIClient); !ok {
		t.Fatalf("expected openai client for groq, got %T", client)
	}

	if client, err := New(Options{Provider: ProviderGemini}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	} else if _, ok := client.(*GeminiClient); !ok {
		t.Fatalf("expected gemini client, got %T", client)
	}

	if _, err := New(Options{Provider: "claude"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

// TestOpenAIClientChat проверяет запрос к chat completions и разбор ответа.
func TestOpenAIClientChat(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"day1\":[]}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Options{APIKey: "secret", BaseURL: server.URL + "/", Model: "test-model", Timeout: time.Second, JSONMode: true})
	content, raw, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "json only"},
		{Role: "user", Content: "plan"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `{"day1":[]}` {
		t.Fatalf("unexpected content %q", content)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw response")
	}
	if captured["model"] != "test-model" {
		t.Fatalf("unexpected model %v", captured["model"])
	}
	if captured["max_tokens"] != float64(defaultMaxTokens) {
		t.Fatalf("expected default max tokens, got %v", captured["max_tokens"])
	}
	if _, ok := captured["response_format"]; !ok {
		t.Fatal("expected json response format")
	}
}

// TestOpenAIClientMissingKey проверяет ошибку без ключа.
func TestOpenAIClientMissingKey(t *testing.T) {
	_, _, err := NewOpenAIClient(Options{}).Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

// TestOpenAIClientAPIError проверяет текст ошибки API.
func TestOpenAIClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(Options{APIKey: "secret", BaseURL: server.URL, Model: "m", Timeout: time.Second})
	_, _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected api error, got %v", err)
	}
}

// TestGeminiClientChat проверяет системную инструкцию, роли и склейку частей.
func TestGeminiClientChat(t *testing.T) {
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key in query")
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(Options{APIKey: "k", BaseURL: server.URL, Model: "gemini-test", Timeout: time.Second})
	content, _, err := client.Chat(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "  "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "Hello world" {
		t.Fatalf("unexpected content %q", content)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("expected system instruction, got %+v", captured.SystemInstruction)
	}
	if len(captured.Contents) != 2 || captured.Contents[1].Role != "model" {
		t.Fatalf("unexpected contents %+v", captured.Contents)
	}
	if captured.GenerationConfig.ResponseMimeType != "" {
		t.Fatal("plain text mode must not request json")
	}
}

// TestGeminiClientErrors проверяет ошибки API и пустые запросы.
func TestGeminiClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad model"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient(Options{APIKey: "k", BaseURL: server.URL, Model: "m", Timeout: time.Second})
	if _, raw, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}); err == nil || !strings.Contains(err.Error(), "bad model") || len(raw) == 0 {
		t.Fatalf("expected api error with body, got %v", err)
	}
	if _, _, err := client.Chat(context.Background(), []Message{{Role: "system", Content: "only system"}}); err == nil {
		t.Fatal("expected error without user content")
	}
	if _, _, err := NewGeminiClient(Options{}).Chat(context.Background(), nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
