package agent

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"notebook-agent/config"
	apperrors "notebook-agent/errors"
	"notebook-agent/llmclient"
	"notebook-agent/notebook"
	"notebook-agent/tools"
)

func newNopLogger() *zap.Logger {
	return zap.NewNop()
}

// scriptedClient replays canned model responses in order.
type scriptedClient struct {
	responses []llmclient.Message
	calls     int
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llmclient.Message, specs []llmclient.ToolSpec, temperature *float64) (llmclient.Message, error) {
	if c.calls >= len(c.responses) {
		// Out of script: keep repeating the last response.
		return c.responses[len(c.responses)-1], nil
	}
	msg := c.responses[c.calls]
	c.calls++
	return msg, nil
}

func toolCallMsg(id, name, args string) llmclient.Message {
	return llmclient.Message{
		Role: "assistant",
		ToolCalls: []llmclient.ToolCall{{
			ID:   id,
			Type: "function",
			Function: llmclient.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}
}

const validPlan = `{"title": "Age analysis", "cells": [` +
	`{"type": "markdown", "content": "## Load the data"},` +
	`{"type": "code", "content": "import pandas as pd\ndf = pd.read_csv('../data/people.csv')"}` +
	`]}`

func newTestAgent(t *testing.T, client ChatClient) (*Agent, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		DataDir:           t.TempDir(),
		OutputDir:         t.TempDir(),
		MaxTurns:          5,
		ConsecutiveErrors: 2,
		PreviewRows:       3,
		Temperature:       0.2,
		LLMRequestTimeout: 30 * time.Second,
	}
	csv := "age,city\n30,berlin\n40,paris\n50,berlin\n"
	if err := os.WriteFile(filepath.Join(cfg.DataDir, "people.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	logger := newNopLogger()
	registry := tools.NewRegistry(
		tools.NewCSVSummaryTool(cfg, logger),
		tools.NewCSVPreviewTool(cfg, logger),
	)
	writer := tools.NewWriter(cfg, logger)

	a, err := NewAgent(cfg, client, registry, writer, logger)
	if err != nil {
		t.Fatalf("NewAgent() error = %v", err)
	}
	return a, cfg
}

func TestRunToolCallThenPlan(t *testing.T) {
	client := &scriptedClient{responses: []llmclient.Message{
		toolCallMsg("call_1", "csv_summary", `{"file_path": "people.csv"}`),
		{Role: "assistant", Content: validPlan},
	}}
	a, _ := newTestAgent(t, client)

	path, err := a.Run(context.Background(), "Analyze ages by city", "people.csv")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if client.calls != 2 {
		t.Errorf("model calls = %d, want 2", client.calls)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read notebook: %v", err)
	}
	nb, err := notebook.FromJSON(string(data))
	if err != nil {
		t.Fatalf("written notebook invalid: %v", err)
	}
	// Title cell plus the two plan cells.
	if len(nb.Cells) != 3 {
		t.Fatalf("len(Cells) = %d, want 3", len(nb.Cells))
	}
	if nb.Cells[0].Source != "# Age analysis" {
		t.Errorf("Cells[0].Source = %q", nb.Cells[0].Source)
	}
}

func TestRunMalformedPlanWritesNothing(t *testing.T) {
	client := &scriptedClient{responses: []llmclient.Message{
		{Role: "assistant", Content: "I think the data looks fine, no notebook needed."},
	}}
	a, cfg := newTestAgent(t, client)

	_, err := a.Run(context.Background(), "Analyze ages", "people.csv")
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !apperrors.IsModel(err) {
		t.Errorf("Run() error = %v, want ErrModel", err)
	}

	entries, readErr := os.ReadDir(cfg.OutputDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("output dir not empty after failed run: %v", entries)
	}
}

func TestRunRepeatedToolCallsTripBudget(t *testing.T) {
	// The model calls the same tool forever; the wasted-turn budget must stop
	// the run before MaxTurns would.
	same := toolCallMsg("call_x", "csv_preview", `{"file_path": "people.csv"}`)
	client := &scriptedClient{responses: []llmclient.Message{same}}
	a, _ := newTestAgent(t, client)

	_, err := a.Run(context.Background(), "Analyze ages", "people.csv")
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !apperrors.IsModel(err) {
		t.Errorf("Run() error = %v, want ErrModel", err)
	}
	if !strings.Contains(err.Error(), "repeated") {
		t.Errorf("Run() error = %v, want wasted-turn reason", err)
	}
	// First call is fresh, then ConsecutiveErrors cached repeats.
	if client.calls != 3 {
		t.Errorf("model calls = %d, want 3", client.calls)
	}
}

func TestRunMaxTurnsBound(t *testing.T) {
	// Distinct tool calls every turn: productive but never a plan.
	client := &scriptedClient{responses: []llmclient.Message{
		toolCallMsg("c1", "csv_preview", `{"file_path": "people.csv"}`),
		toolCallMsg("c2", "csv_summary", `{"file_path": "people.csv"}`),
		toolCallMsg("c3", "csv_preview", `{"file_path": "people.csv", "n": 1}`),
		toolCallMsg("c4", "csv_preview", `{"file_path": "people.csv", "n": 2}`),
		toolCallMsg("c5", "csv_preview", `{"file_path": "people.csv", "n": 3}`),
		toolCallMsg("c6", "csv_preview", `{"file_path": "people.csv", "n": 4}`),
	}}
	a, cfg := newTestAgent(t, client)
	cfg.MaxTurns = 4

	_, err := a.Run(context.Background(), "Analyze ages", "people.csv")
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !apperrors.IsModel(err) {
		t.Errorf("Run() error = %v, want ErrModel", err)
	}
	if !strings.Contains(err.Error(), "maximum turns") {
		t.Errorf("Run() error = %v, want max-turns reason", err)
	}
	if client.calls != 4 {
		t.Errorf("model calls = %d, want 4", client.calls)
	}

	entries, readErr := os.ReadDir(cfg.OutputDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("output dir not empty after aborted run: %v", entries)
	}
}

func TestRunMissingDataFile(t *testing.T) {
	client := &scriptedClient{responses: []llmclient.Message{
		toolCallMsg("call_1", "csv_summary", `{"file_path": "absent.csv"}`),
	}}
	a, _ := newTestAgent(t, client)

	_, err := a.Run(context.Background(), "Analyze ages", "absent.csv")
	if err == nil {
		t.Fatal("Run() expected error, got nil")
	}
	if !apperrors.IsDataAccess(err) {
		t.Errorf("Run() error = %v, want ErrDataAccess", err)
	}
}
