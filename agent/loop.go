package agent

import (
	"notebook-agent/config"

	"go.uber.org/zap"
)

// ConversationLoop tracks the turn budget and the wasted-turn counter so the
// reasoning loop always terminates, even when the model never emits a plan.
type ConversationLoop struct {
	cfg         *config.Config
	wastedTurns int
	logger      *zap.Logger
}

func NewConversationLoop(cfg *config.Config, logger *zap.Logger) *ConversationLoop {
	return &ConversationLoop{cfg: cfg, logger: logger}
}

// ShouldContinue checks the loop bounds before each turn.
// Returns (shouldContinue, reason); reason is set when the loop must stop.
func (c *ConversationLoop) ShouldContinue(turn int) (bool, string) {
	if c.wastedTurns >= c.cfg.ConsecutiveErrors {
		c.logger.Warn("Model kept repeating completed actions, breaking loop",
			zap.Int("wasted_turns", c.wastedTurns))
		return false, "model repeated completed tool calls without progressing"
	}

	if turn >= c.cfg.MaxTurns {
		c.logger.Info("Reached maximum turns limit",
			zap.Int("max_turns", c.cfg.MaxTurns))
		return false, "maximum turns reached without a final plan"
	}

	return true, ""
}

// RecordWastedTurn increments the counter after a turn that produced no new
// work (every tool call was served from the action cache).
func (c *ConversationLoop) RecordWastedTurn() {
	c.wastedTurns++
	c.logger.Debug("Recorded wasted turn", zap.Int("wasted_turns", c.wastedTurns))
}

// RecordProgress resets the wasted-turn counter.
func (c *ConversationLoop) RecordProgress() {
	if c.wastedTurns > 0 {
		c.logger.Debug("Resetting wasted-turn count after productive turn")
		c.wastedTurns = 0
	}
}
