package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	messagesURL      = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

const intentPrompt = `You are the intent classifier for a Nigerian HR WhatsApp assistant.
Given a user message, respond with ONLY valid JSON (no markdown):
{"intent": "INTENT_NAME", "entities": {}, "clarification": ""}

Valid intents: REGISTER, ADD_EMPLOYEE, PAYROLL, PAYSLIP, LEAVE, LIST, POST_JOB, VIEW_CANDIDATES, APPLY, HELP, HR_QUESTION, UNKNOWN

Entity extraction examples:
- "add John as accountant" -> {"intent": "ADD_EMPLOYEE", "entities": {"name": "John", "position": "accountant"}}
- "how much do I get paid?" -> {"intent": "PAYSLIP", "entities": {}}
- "post a job for developer" -> {"intent": "POST_JOB", "entities": {"title": "developer"}}
- "candidates for SAW-A3F2" -> {"intent": "VIEW_CANDIDATES", "entities": {"job_code": "SAW-A3F2"}}

If the message is a general Nigerian HR/labor law question, use HR_QUESTION.
If you genuinely cannot determine intent, use UNKNOWN.`

const hrPrompt = `You are a Nigerian HR assistant on WhatsApp.
Answer the user's HR question concisely (max 280 chars) using Nigerian labor law context.
Be helpful, accurate, and professional. If unsure, say so.
Focus on: Labour Act, PAYE, pension (PenCom), NHF, NSITF, leave entitlements, minimum wage.`

var ErrNotConfigured = errors.New("anthropic api key not configured")

// Anthropic calls the Messages API directly over HTTP.
type Anthropic struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewAnthropic(apiKey, model string, timeout time.Duration) *Anthropic {
	return &Anthropic{
		APIKey:  apiKey,
		Model:   model,
		Timeout: timeout,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (a *Anthropic) Classify(ctx context.Context, message string) (Result, error) {
	text, err := a.complete(ctx, intentPrompt, message, 200)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return Result{}, fmt.Errorf("failed to parse intent response: %w", err)
	}
	if res.Intent == "" {
		res.Intent = IntentUnknown
	}
	return res, nil
}

func (a *Anthropic) Answer(ctx context.Context, question string) (string, error) {
	text, err := a.complete(ctx, hrPrompt, question, 300)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (a *Anthropic) complete(ctx context.Context, system, message string, maxTokens int) (string, error) {
	if a.APIKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(apiRequest{
		Model:     a.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []apiMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic api returned status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Content) == 0 {
		return "", errors.New("anthropic api returned empty content")
	}
	return strings.TrimSpace(parsed.Content[0].Text), nil
}
