package agent

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"notebook-agent/config"
	apperrors "notebook-agent/errors"
	"notebook-agent/llmclient"
	"notebook-agent/notebook"
)

// DecisionKind tags the two shapes a model response may take.
type DecisionKind int

const (
	DecisionToolCall DecisionKind = iota
	DecisionFinalPlan
)

// Decision is the parsed model response: either tool invocations to execute
// or the final notebook plan. Exactly one side is populated.
type Decision struct {
	Kind      DecisionKind
	ToolCalls []llmclient.ToolCall
	Plan      *notebook.Plan
}

// ResponseHandler turns raw model messages into Decisions.
type ResponseHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewResponseHandler(cfg *config.Config, logger *zap.Logger) *ResponseHandler {
	return &ResponseHandler{cfg: cfg, logger: logger}
}

// ParseDecision classifies a model message. A message with tool calls is a
// ToolCall decision; otherwise the content must be a valid plan JSON object.
// Anything else is a model error, terminal for the run.
func (r *ResponseHandler) ParseDecision(msg llmclient.Message) (*Decision, error) {
	if len(msg.ToolCalls) > 0 {
		return &Decision{Kind: DecisionToolCall, ToolCalls: msg.ToolCalls}, nil
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil, apperrors.WrapError(apperrors.ErrModel, "empty response with no tool calls")
	}

	planJSON := extractJSONObject(content)
	if planJSON == "" {
		r.logger.Warn("Model response is neither tool call nor plan JSON",
			zap.String("content_preview", preview(content, 200)))
		return nil, apperrors.WrapError(apperrors.ErrModel, "response does not contain a plan object")
	}

	var plan notebook.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrModel, "decode plan json: %v", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrModel, "invalid plan: %v", err)
	}

	return &Decision{Kind: DecisionFinalPlan, Plan: &plan}, nil
}

// extractJSONObject tolerates markdown fences and prose around the plan by
// slicing from the first '{' to the last '}'.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func preview(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
