package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPPlanner обращается к внешнему сервису travelhelper по HTTP.
type HTTPPlanner struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPlanner создает клиента с таймаутом на каждый запрос.
func NewHTTPPlanner(baseURL string, timeout time.Duration) *HTTPPlanner {
	return &HTTPPlanner{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GeneratePlan отправляет запрос на генерацию плана и возвращает разобранный и сырой ответ.
func (p *HTTPPlanner) GeneratePlan(ctx context.Context, req Request) (Response, []byte, error) {
	body, err := p.do(ctx, http.MethodPost, "/travelhelper/plans/ai", req)
	if err != nil {
		return Response{Success: false, Error: err.Error()}, body, err
	}

	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return Response{}, body, fmt.Errorf("decode plan response: %w", err)
	}
	return response, body, nil
}

// Chat пересылает сообщение и текущий план в чат планировщика.
func (p *HTTPPlanner) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	body, err := p.do(ctx, http.MethodPost, "/travelhelper/chat", req)
	if err != nil {
		return ChatResponse{}, err
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return response, nil
}

// Health проверяет доступность сервиса.
func (p *HTTPPlanner) Health(ctx context.Context) (HealthStatus, error) {
	body, err := p.do(ctx, http.MethodGet, "/travelhelper/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	var status HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return HealthStatus{}, fmt.Errorf("decode health response: %w", err)
	}
	if status.Status == "" {
		status.Status = "ok"
	}
	return status, nil
}

func (p *HTTPPlanner) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	response, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("planner request %s: %w", path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return body, fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, path, response.StatusCode, upstreamMessage(body))
	}
	return body, nil
}

// upstreamMessage достает message или error из тела ошибки.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
