package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vinobot/internal/assistant"
	"vinobot/internal/bus"
	"vinobot/internal/channel"
	"vinobot/internal/config"
	"vinobot/internal/knowledge"
	"vinobot/internal/provider"
	"vinobot/internal/vectorstore"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "vinobot",
		Short:   "Vinobot: a sommelier assistant for a wine retail chat",
		Long:    "Vinobot is a RAG-backed Telegram sommelier: it routes questions about wines, regions, grapes and food pairings to a local LLM grounded in the shop's own knowledge base.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default: ./config.yaml)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(chatCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(statusCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig loads .env and the YAML config, reconfiguring the logger
// to the configured level.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env file")
	}

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	switch cfg.General.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file and create the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Defaults()
			path := resolveConfigPath()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Knowledge.DataDir, 0o755); err != nil {
				return err
			}
			logger.Info("initialized", "config", path, "data_dir", cfg.Knowledge.DataDir)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram.token is required to serve (set TELEGRAM_TOKEN in .env or config.yaml)")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			core, err := buildCore(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer core.close()

			go core.loop.Run(ctx)
			go core.sessions.StartJanitor(ctx)

			tg := channel.NewTelegram(channel.TelegramConfig{
				Token:     cfg.Telegram.Token,
				ParseMode: cfg.Telegram.ParseMode,
				Menu:      core.store,
				Logger:    logger,
			})
			return tg.Start(ctx, core.bus)
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			core, err := buildCore(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer core.close()

			go core.loop.Run(ctx)
			go core.sessions.StartJanitor(ctx)

			cli := channel.NewCLI(channel.CLIConfig{Logger: logger})
			return cli.Start(ctx, core.bus)
		},
	}
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector index from the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			core, err := buildCore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer core.close()

			if !core.index.Ready() {
				return fmt.Errorf("index build failed, see log")
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show config and backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			logger.Info("config",
				"data_dir", cfg.Knowledge.DataDir,
				"index_dir", cfg.Knowledge.IndexDir,
				"llm_model", cfg.LLM.Model,
				"embedding_model", cfg.Embedding.Model,
				"telegram_configured", cfg.Telegram.Token != "",
			)

			llm := provider.NewOllama(provider.OllamaConfig{
				APIBase: cfg.LLM.APIBase,
				Model:   cfg.LLM.Model,
				Logger:  logger,
			})
			if err := llm.Healthy(ctx); err != nil {
				logger.Warn("llm backend", "healthy", false, "err", err)
			} else {
				logger.Info("llm backend", "healthy", true, "api_base", cfg.LLM.APIBase)
			}
			return nil
		},
	}
}

// core bundles the wired assistant pipeline.
type core struct {
	store    *knowledge.Store
	index    *knowledge.Index
	vectors  *vectorstore.SQLiteStore
	sessions *assistant.Sessions
	bus      *bus.InMemoryBus
	loop     *assistant.Loop
}

func (c *core) close() {
	c.bus.Close()
	if err := c.vectors.Close(); err != nil {
		logger.Warn("cannot close vector store", "err", err)
	}
}

// buildCore loads the knowledge base, opens or builds the vector index
// and wires the assistant loop. With rebuild set, the index is always
// rebuilt from the data directory.
func buildCore(ctx context.Context, cfg *config.Config, rebuild bool) (*core, error) {
	store := knowledge.NewStore(cfg.Knowledge.DataDir, logger)
	if err := store.Load(); err != nil {
		return nil, err
	}

	vectors, err := vectorstore.New(cfg.Knowledge.IndexDir, logger)
	if err != nil {
		return nil, err
	}

	httpClient := provider.SharedHTTPClient(time.Duration(cfg.LLM.TimeoutSecs) * time.Second)

	embedder := provider.NewOllamaEmbedder(provider.EmbedderConfig{
		APIBase: cfg.Embedding.APIBase,
		Model:   cfg.Embedding.Model,
		Client:  httpClient,
		Logger:  logger,
	})

	index := knowledge.NewIndex(knowledge.IndexConfig{
		Embedder: embedder,
		Store:    vectors,
		Splitter: knowledge.NewSplitter(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap),
		Logger:   logger,
	})

	if rebuild || !index.Open(ctx) {
		// A failed build degrades semantic search to empty results; the
		// structured intents still work.
		if err := index.Build(ctx, store.Documents()); err != nil {
			logger.Warn("continuing without semantic search", "err", err)
		}
	}

	llm := provider.NewOllama(provider.OllamaConfig{
		APIBase:     cfg.LLM.APIBase,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Client:      httpClient,
		Logger:      logger,
	})

	sessions := assistant.NewSessions(
		cfg.Sessions.MaxHistoryMessages,
		time.Duration(cfg.Sessions.IdleTTLMinutes)*time.Minute,
		logger,
	)

	asst := assistant.New(assistant.Config{
		Provider:      llm,
		Resolver:      assistant.NewResolver(store, index),
		Sessions:      sessions,
		Logger:        logger,
		LLMTimeout:    time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		ContextWindow: cfg.Sessions.ContextWindow,
	})

	messageBus := bus.New(100, logger)

	loop := assistant.NewLoop(assistant.LoopConfig{
		Assistant:   asst,
		Bus:         messageBus,
		Logger:      logger,
		Concurrency: cfg.General.MaxConcurrentMessages,
	})

	return &core{
		store:    store,
		index:    index,
		vectors:  vectors,
		sessions: sessions,
		bus:      messageBus,
		loop:     loop,
	}, nil
}
