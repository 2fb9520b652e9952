package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"notebook-agent/config"
	apperrors "notebook-agent/errors"
)

// Message is one chat turn in the OpenAI-compatible wire format.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec advertises one callable tool to the model.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the function half of a tool spec.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model       string     `json:"model"`
	Messages    []Message  `json:"messages"`
	Tools       []ToolSpec `json:"tools,omitempty"`
	Temperature *float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

const backoffCap = 30 * time.Second

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Chat performs a non-streaming chat completion call, advertising the given
// tools. Transport failures and malformed responses map to ErrModel.
// temperature is optional; pass nil to use the server default.
func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolSpec, temperature *float64) (Message, error) {
	reqBody := chatRequest{
		Model:       c.cfg.LLMModel,
		Messages:    messages,
		Tools:       tools,
		Temperature: temperature,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "marshal chat request: %v", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.cfg.LLMHost)

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "create chat request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.OpenAIAPIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		}
		if c.cfg.OpenAIProject != "" {
			req.Header.Set("OpenAI-Project", c.cfg.OpenAIProject)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil {
				break
			}
		} else if resp.StatusCode == http.StatusServiceUnavailable {
			// Model loading; retry with backoff
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("llm server status %s", resp.Status)
			resp = nil
			c.logger.Warn("LLM service unavailable, retrying", zap.Int("attempt", attempt+1))
			c.backoffSleep(attempt)
			continue
		} else {
			break
		}
	}
	if resp == nil {
		return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "no response from LLM server: %v", lastErr)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "read chat response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "llm server status %s: %s", resp.Status, string(bodyBytes))
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return Message{}, apperrors.WrapErrorf(apperrors.ErrModel, "decode chat response: %v", err)
	}
	if len(cr.Choices) == 0 {
		return Message{}, apperrors.WrapError(apperrors.ErrModel, "no response choices from llm server")
	}
	return cr.Choices[0].Message, nil
}

func (c *Client) backoffSleep(attempt int) {
	// Exponential backoff with jitter and a fixed cap
	base := c.cfg.RetryDelaySeconds
	if base <= 0 {
		base = time.Second
	}
	d := base * time.Duration(1<<attempt)
	if d > backoffCap {
		d = backoffCap
	}
	jitter := time.Duration(float64(d) * 0.1)
	time.Sleep(d - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter+1)))
}
