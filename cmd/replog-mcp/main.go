package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/replog/internal/config"
	"github.com/meltforce/replog/internal/enrich"
	"github.com/meltforce/replog/internal/llm"
	"github.com/meltforce/replog/internal/logbook"
	"github.com/meltforce/replog/internal/mcp"
	"github.com/meltforce/replog/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	user := flag.String("user", "local", "login all tool calls run as")
	flag.Parse()

	_ = godotenv.Load()

	// stdout carries the MCP protocol, logs go to stderr
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userID, err := db.GetOrCreateUser(ctx, *user, *user)
	if err != nil {
		log.Error("failed to resolve user", "login", *user, "error", err)
		os.Exit(1)
	}

	names := enrich.NewCatalog(db, nil, 0, log)
	completer := llm.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.StrictJSON)
	svc := logbook.NewService(db, completer, names, log)

	s := mcp.New(db, svc, Version, log)

	log.Info("RepLog MCP server starting", "version", Version, "user", *user)
	err = mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, userID)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
