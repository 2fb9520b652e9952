package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notebook-agent/agent"
	"notebook-agent/config"
	"notebook-agent/llmclient"
	"notebook-agent/tools"
)

var (
	flagData  string
	flagOut   string
	flagModel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notebook-agent \"<request>\"",
		Short: "Generate a statistics notebook for a CSV dataset from a natural-language request",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
		// Errors are logged with context in run; keep cobra quiet.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVar(&flagData, "data", "", "CSV dataset file (relative paths resolve against the data directory)")
	rootCmd.Flags().StringVar(&flagOut, "out", "", "output directory for generated notebooks (overrides config)")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "model identifier (overrides config)")
	_ = rootCmd.MarkFlagRequired("data")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "notebook-agent: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// .env is optional; env vars may come from the shell instead.
	_ = godotenv.Load()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}
	if flagModel != "" {
		cfg.LLMModel = flagModel
	}

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("re-initialize logger with configured level: %w", err)
	}
	defer config.Cleanup()

	client := llmclient.New(cfg, logger)
	registry := tools.NewRegistry(
		tools.NewCSVSummaryTool(cfg, logger),
		tools.NewCSVPreviewTool(cfg, logger),
		tools.NewEditCellTool(logger),
		tools.NewInsertCellTool(logger),
		tools.NewAppendCellTool(logger),
		tools.NewMergeCellsTool(logger),
		tools.NewSwapCellsTool(logger),
		tools.NewNotebookFromMarkdownTool(logger),
		tools.NewExtractCodeTool(logger),
	)
	writer := tools.NewWriter(cfg, logger)

	notebookAgent, err := agent.NewAgent(cfg, client, registry, writer, logger)
	if err != nil {
		return err
	}

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	path, err := notebookAgent.Run(ctx, args[0], flagData)
	if err != nil {
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	logger.Info("Notebook generated", zap.String("path", path))
	fmt.Println(path)
	return nil
}
