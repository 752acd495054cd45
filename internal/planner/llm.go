package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"example.com/travel-planner/backend/internal/ai"
	"example.com/travel-planner/backend/internal/itinerary"
	"example.com/travel-planner/backend/internal/models"
)

const (
	planSystemPrompt = "You are a Sri Lanka travel planner. Respond with JSON only, without extra text."
	chatSystemPrompt = "You are a Sri Lanka travel assistant. Respond with JSON only, without extra text."
)

// LLMPlanner строит план и ответы чата напрямую через модель.
type LLMPlanner struct {
	client   ai.Client
	provider string
	model    string
	now      func() time.Time
}

// NewLLMPlanner создает планировщик поверх AI-клиента.
func NewLLMPlanner(client ai.Client, provider, model string) *LLMPlanner {
	return &LLMPlanner{client: client, provider: provider, model: model, now: time.Now}
}

// GeneratePlan просит модель вернуть маршрут в формате dayN. Текст ответа
// отдается всегда, разобранный JSON - когда он нашелся.
func (p *LLMPlanner) GeneratePlan(ctx context.Context, req Request) (Response, []byte, error) {
	prompt, err := buildPlanPrompt(req)
	if err != nil {
		return Response{}, nil, err
	}

	content, raw, err := p.client.Chat(ctx, []ai.Message{
		{Role: "system", Content: planSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return Response{Success: false, Error: err.Error()}, raw, err
	}

	response := Response{
		Success:        true,
		AIResponseText: content,
		AIProvider:     p.providerName(),
		GeneratedAt:    p.now().UTC().Format(time.RFC3339),
		Summary: &Summary{
			Budget:       req.Budget,
			Days:         req.Days,
			Style:        req.TravelStyle,
			Interests:    req.Interests,
			Destinations: req.Destinations,
		},
	}
	if req.Days > 0 {
		response.Summary.DailyBudget = req.Budget / float64(req.Days)
	}

	var value any
	if err := itinerary.DecodeLoose(content, &value); err == nil {
		if encoded, err := json.Marshal(value); err == nil {
			response.Itinerary = encoded
		}
	}
	return response, raw, nil
}

// Chat отвечает на сообщение и предлагает правки маршрута.
func (p *LLMPlanner) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	prompt := buildChatPrompt(req)

	content, _, err := p.client.Chat(ctx, []ai.Message{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return ChatResponse{}, err
	}

	var reply struct {
		Reply   string                  `json:"reply"`
		Changes models.ItineraryChanges `json:"changes"`
	}
	if err := itinerary.DecodeLoose(content, &reply); err != nil || strings.TrimSpace(reply.Reply) == "" {
		return ChatResponse{Success: true, Reply: strings.TrimSpace(content)}, nil
	}

	response := ChatResponse{Success: true, Reply: reply.Reply}
	if !reply.Changes.Empty() {
		response.Changes = &reply.Changes
	}
	return response, nil
}

// Health сообщает о готовности; модель не опрашивается.
func (p *LLMPlanner) Health(context.Context) (HealthStatus, error) {
	return HealthStatus{Status: "ok", Service: p.providerName()}, nil
}

func (p *LLMPlanner) providerName() string {
	if p.model == "" {
		return p.provider
	}
	return p.provider + "/" + p.model
}

func buildPlanPrompt(req Request) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Create a day-by-day Sri Lanka itinerary as JSON.

Requirements:
- Output JSON only, no code fences, no extra text.
- Use exactly %d day keys: "day1" ... "day%d".
- Schema:
{
  "day1": {
    "morning":   {"activity": string, "location": string, "cost": number, "time": string},
    "afternoon": {"activity": string, "location": string, "cost": number, "time": string},
    "evening":   {"activity": string, "location": string, "cost": number, "time": string},
    "hotel":     {"name": string, "location": string, "cost": number}
  }
}
- Costs are per group in the budget currency; keep the sum within the budget.
- Visit destinations in the listed order, starting from startingLocation if given.

Input:
%s`, req.Days, req.Days, string(payload)), nil
}

func buildChatPrompt(req ChatRequest) string {
	plan := strings.TrimSpace(string(req.Plan))
	if plan == "" || plan == "null" {
		plan = "{}"
	}

	return fmt.Sprintf(`Answer the traveler and suggest itinerary changes as JSON.

Requirements:
- Output JSON only, no code fences.
- Schema:
{"reply": string, "changes": {"added": [string], "removed": [string], "costDelta": number, "currency": string}}
- "removed" must use item names from the current plan.
- Omit "changes" when nothing should change.

Current plan:
%s

Message:
%s`, plan, req.Message)
}
