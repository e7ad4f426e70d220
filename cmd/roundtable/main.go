// =============================================================================
// Roundtable 主入口
// =============================================================================
// 完整服务入口点，包含 HTTP 服务、健康检查、Prometheus 指标
//
// 使用方法:
//
//	roundtable serve                       # 启动服务
//	roundtable serve --config config.yaml  # 指定配置文件
//	roundtable run --config config.yaml    # 命令行跑一场对话
//	roundtable version                     # 显示版本信息
//	roundtable health                      # 健康检查
// =============================================================================

// @title Roundtable API
// @version 1.0.0
// @description Roundtable orchestrates turn-based conversations between LLM-backed speakers.
// @description
// @description ## Features
// @description - Round-robin and seeded-random speaker selection
// @description - Atomic turn semantics: an oracle failure leaves the conversation untouched
// @description - WebSocket streaming of completed turns
// @description - Health monitoring and metrics

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/roundtable/config"
	"github.com/BaSui01/roundtable/dialogue"
	"github.com/BaSui01/roundtable/internal/telemetry"
	"github.com/BaSui01/roundtable/llm"
	"github.com/BaSui01/roundtable/llm/tokenizer"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "run":
		runDialogue(os.Args[2:])
	case "version":
		printVersion()
	case "health":
		runHealthCheck(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🖥️ serve 命令
// =============================================================================

func loadConfig(args []string, name string) *config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func runServe(args []string) {
	cfg := loadConfig(args, "serve")

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting Roundtable",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Initialize OpenTelemetry
	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	server := NewServer(cfg, logger, otelProviders)

	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	server.WaitForShutdown()

	logger.Info("Roundtable stopped")
}

// =============================================================================
// 🗣️ run 命令 — 在命令行里跑一场完整对话
// =============================================================================

func runDialogue(args []string) {
	cfg := loadConfig(args, "run")

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	if len(cfg.Dialogue.Speakers) == 0 {
		fmt.Fprintln(os.Stderr, "No speakers configured (dialogue.speakers)")
		os.Exit(1)
	}

	provider, err := buildProvider(cfg.LLM, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build provider: %v\n", err)
		os.Exit(1)
	}
	// 命令行模式下对可重试的 oracle 失败做有限重试
	provider = llm.NewRetryProvider(provider, 3, 500*time.Millisecond, logger)

	roster := make([]*dialogue.Speaker, len(cfg.Dialogue.Speakers))
	for i, sp := range cfg.Dialogue.Speakers {
		roster[i] = dialogue.NewSpeaker(sp.Identity, sp.Directive, provider,
			dialogue.WithModel(cfg.LLM.Model),
			dialogue.WithMaxTokens(cfg.Dialogue.MaxTokens),
			dialogue.WithTemperature(float32(cfg.Dialogue.Temperature)),
			dialogue.WithTokenCounter(tokenizer.ForModel(cfg.LLM.Model)),
			dialogue.WithSpeakerLogger(logger),
		)
	}

	orch, err := dialogue.NewOrchestrator(roster, dialogue.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create conversation: %v\n", err)
		os.Exit(1)
	}

	if cfg.Dialogue.Seed.Text != "" {
		orch.Prime(cfg.Dialogue.Seed.Identity, cfg.Dialogue.Seed.Text)
		fmt.Printf("%s: %s\n", cfg.Dialogue.Seed.Identity, cfg.Dialogue.Seed.Text)
	}

	runner := dialogue.NewRunner(orch, cfg.Dialogue.MaxTurns,
		dialogue.WithTurnObserver(func(turn dialogue.Turn) {
			fmt.Printf("%s: %s\n", turn.Identity, turn.Text)
		}),
		dialogue.WithRunnerLogger(logger),
	)

	if _, err := runner.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Conversation failed: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// 🏥 健康检查命令
// =============================================================================

func runHealthCheck(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Server address")
	fs.Parse(args)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("OK")
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("Roundtable %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`Roundtable - Turn-based conversation orchestrator

Usage:
  roundtable <command> [options]

Commands:
  serve     Start the Roundtable server
  run       Run one conversation in the terminal
  version   Show version information
  health    Check server health
  help      Show this help message

Options for 'serve' and 'run':
  --config <path>   Path to configuration file (YAML)

Examples:
  roundtable serve
  roundtable serve --config /etc/roundtable/config.yaml
  roundtable run --config quest.yaml
  roundtable health --addr http://localhost:8080
  roundtable version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}
