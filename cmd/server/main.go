// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/sozercan/review-sentiment/internal/app"
	"github.com/sozercan/review-sentiment/internal/backend"
	"github.com/sozercan/review-sentiment/internal/config"
	"github.com/sozercan/review-sentiment/internal/llm"
	"github.com/sozercan/review-sentiment/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	setupLogging(cfg.Log)

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithMaxResponseBytes(cfg.Backend.MaxResponseBytes),
	)
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	var gateway app.Gateway = backendClient
	if cfg.Provider == config.ProviderOpenAI {
		llmProvider, err := llm.NewOpenAI(&cfg.OpenAI)
		if err != nil {
			log.Fatalf("failed to create LLM provider: %v", err)
		}
		gateway = llm.NewGateway(llm.NewClassifier(llmProvider), backendClient)
	}

	client := app.NewClient(gateway, app.WithTimestampLayout(cfg.Display.TimestampLayout))

	// The health check resolves in the background; until then the status reads "checking".
	go client.Start(context.Background())

	srv := server.New(*cfg, client)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "provider", cfg.Provider)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
