// Package agent implements the reasoning loop: it drives a language model
// through tool calls over a CSV dataset until the model emits a notebook
// plan, then assembles and persists the notebook.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"notebook-agent/config"
	apperrors "notebook-agent/errors"
	"notebook-agent/llmclient"
	"notebook-agent/notebook"
	"notebook-agent/prompts"
	"notebook-agent/tools"
)

// ChatClient is the slice of the LLM client the loop needs.
type ChatClient interface {
	Chat(ctx context.Context, messages []llmclient.Message, specs []llmclient.ToolSpec, temperature *float64) (llmclient.Message, error)
}

// NotebookWriter persists an assembled notebook and returns its path.
type NotebookWriter interface {
	Write(nb *notebook.Notebook) (string, error)
}

const actionCacheSize = 32

type Agent struct {
	cfg             *config.Config
	client          ChatClient
	registry        *tools.Registry
	writer          NotebookWriter
	logger          *zap.Logger
	responseHandler *ResponseHandler
	actionCache     *ActionCache
}

func NewAgent(cfg *config.Config, client ChatClient, registry *tools.Registry, writer NotebookWriter, logger *zap.Logger) (*Agent, error) {
	actionCache, err := NewActionCache(actionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init action cache: %w", err)
	}

	logger.Info("Agent initialized",
		zap.String("model", cfg.LLMModel),
		zap.Int("max_turns", cfg.MaxTurns))

	return &Agent{
		cfg:             cfg,
		client:          client,
		registry:        registry,
		writer:          writer,
		logger:          logger,
		responseHandler: NewResponseHandler(cfg, logger),
		actionCache:     actionCache,
	}, nil
}

// Run executes one reasoning run: it presents the request and dataset to the
// model, serves tool calls until the model produces a final plan, assembles
// the notebook and persists it. Returns the path of the written file.
//
// Every error kind is terminal: no retry, and no partial notebook on failure.
func (a *Agent) Run(ctx context.Context, request, dataFile string) (string, error) {
	transcript := []llmclient.Message{
		{Role: "system", Content: prompts.AgentSystem()},
		{Role: "user", Content: fmt.Sprintf("Dataset file: %s\n\nRequest: %s", dataFile, request)},
	}
	specs := a.registry.Specs()
	loop := NewConversationLoop(a.cfg, a.logger)

	for turn := 0; ; turn++ {
		if ok, reason := loop.ShouldContinue(turn); !ok {
			return "", apperrors.WrapError(apperrors.ErrModel, reason)
		}

		callCtx, cancel := context.WithTimeout(ctx, a.cfg.LLMRequestTimeout)
		msg, err := a.client.Chat(callCtx, transcript, specs, &a.cfg.Temperature)
		cancel()
		if err != nil {
			a.logger.Error("Model call failed, aborting run",
				zap.Error(err),
				zap.Int("turn", turn))
			return "", err
		}

		decision, err := a.responseHandler.ParseDecision(msg)
		if err != nil {
			// Malformed model output ends the run in done with no file written.
			return "", err
		}

		switch decision.Kind {
		case DecisionToolCall:
			transcript = append(transcript, msg)
			allCached := true
			for _, tc := range decision.ToolCalls {
				result, fresh, err := a.executeToolCall(ctx, tc, turn)
				if err != nil {
					return "", err
				}
				if fresh {
					allCached = false
				}
				transcript = append(transcript, llmclient.Message{
					Role:       "tool",
					Content:    result,
					ToolCallID: tc.ID,
					Name:       tc.Function.Name,
				})
			}
			if allCached {
				loop.RecordWastedTurn()
			} else {
				loop.RecordProgress()
			}

		case DecisionFinalPlan:
			nb, err := notebook.Assemble(decision.Plan)
			if err != nil {
				return "", apperrors.WrapErrorf(apperrors.ErrModel, "assemble plan: %v", err)
			}
			path, err := a.writer.Write(nb)
			if err != nil {
				return "", err
			}
			a.logger.Info("Run complete",
				zap.Int("turns", turn+1),
				zap.String("notebook", path))
			return path, nil

		default:
			return "", apperrors.WrapErrorf(apperrors.ErrModel, "unhandled decision kind %d", decision.Kind)
		}
	}
}

// executeToolCall dispatches one tool invocation, serving repeats from the
// action cache. fresh is false when the result came from the cache.
func (a *Agent) executeToolCall(ctx context.Context, tc llmclient.ToolCall, turn int) (result string, fresh bool, err error) {
	sig := NewActionSignature(tc.Function.Name, tc.Function.Arguments)

	if cached, ok := a.actionCache.Get(sig); ok {
		a.logger.Info("Tool call already completed, serving cached result",
			zap.String("action", sig.String()),
			zap.Int("turn", turn))
		note := "\n\n[This tool call was already executed this run; result repeated from cache. Do not call it again - proceed to the notebook plan.]"
		return cached + note, false, nil
	}

	args := json.RawMessage(tc.Function.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	a.logger.Info("Executing tool call",
		zap.String("tool", tc.Function.Name),
		zap.Int("turn", turn))

	result, err = a.registry.Dispatch(ctx, tc.Function.Name, args)
	if err != nil {
		if apperrors.IsDataAccess(err) || apperrors.IsFormat(err) || apperrors.IsModel(err) {
			return "", false, err
		}
		// Unknown tool names come from the model, not from us.
		return "", false, apperrors.WrapErrorf(apperrors.ErrModel, "tool dispatch: %v", err)
	}

	a.actionCache.Add(sig, result)
	return result, true, nil
}
