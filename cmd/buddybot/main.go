package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"buddybot/internal/agent"
	"buddybot/internal/channel"
	"buddybot/internal/config"
	"buddybot/internal/domain"
	"buddybot/internal/history"
	"buddybot/internal/knowledge"
	"buddybot/internal/memory"
	"buddybot/internal/provider"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:     "buddybot",
		Short:   "buddybot: a chat-history-aware group buddy",
		Long:    "buddybot ingests a chat channel's history, indexes it for retrieval, and answers new messages in persona.",
		Version: version,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.buddybot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(chatCmd())

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

func loadConfig() (*config.Config, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		return config.Defaults(), nil
	}
	return cfg, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	var (
		exportPath string
		resume     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest channel history from a Telegram export into the corpus file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			transport, err := channel.NewExportTransport(exportPath)
			if err != nil {
				return err
			}

			checkpoints, err := memory.NewCheckpointStore(cfg.Ingest.CheckpointPath, logger)
			if err != nil {
				return err
			}
			defer checkpoints.Close()

			ing := history.NewIngestor(history.IngestorConfig{
				Transport:   transport,
				Directory:   newDirectory(cfg, transport),
				Checkpoints: checkpoints,
				Logger:      logger,
			})

			var resumeFrom int64
			if resume {
				id, ok, err := checkpoints.Get(ctx, cfg.Telegram.ChannelID)
				if err != nil {
					return err
				}
				if ok {
					resumeFrom = id
					logger.Info("resuming ingestion", "from_message_id", id)
				}
			}

			corpus, err := ing.RunFiltered(ctx, cfg.Telegram.ChannelID, domain.IterOptions{
				OffsetID: resumeFrom,
				Search:   cfg.Ingest.Search,
			})
			if err != nil {
				return err
			}

			if err := corpus.Save(cfg.Ingest.CorpusPath); err != nil {
				return err
			}
			logger.Info("corpus written", "path", cfg.Ingest.CorpusPath, "messages", len(corpus))
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "path to the Telegram export result.json")
	cmd.Flags().BoolVar(&resume, "resume", false, "start from the stored checkpoint instead of a full pass")
	cmd.MarkFlagRequired("export")
	return cmd
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Chunk and embed the corpus into the retrieval index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			corpus, err := domain.LoadCorpus(cfg.Ingest.CorpusPath)
			if err != nil {
				return err
			}

			index, err := openIndex(cfg)
			if err != nil {
				return err
			}
			defer index.Close()

			engine := knowledge.NewEngine(knowledge.EngineConfig{
				ChunkSize: cfg.Knowledge.ChunkSize,
				Overlap:   cfg.Knowledge.Overlap,
				Index:     index,
				Logger:    logger,
			})

			chunks, err := engine.BuildIndex(ctx, corpus)
			if err != nil {
				return err
			}
			logger.Info("indexing done", "chunks", chunks)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer messages over HTTP and, when configured, Telegram",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			buddy, closeIndex, err := buildBuddy(cfg)
			if err != nil {
				return err
			}
			defer closeIndex()

			errCh := make(chan error, 2)

			api := channel.NewAPI(channel.APIConfig{
				Host:   cfg.API.Host,
				Port:   cfg.API.Port,
				Buddy:  buddy,
				Logger: logger,
			})
			go func() { errCh <- api.Start(ctx) }()

			if cfg.Telegram.Token != "" {
				tg, err := channel.NewTelegram(channel.TelegramConfig{
					Token:     cfg.Telegram.Token,
					ChannelID: cfg.Telegram.ChannelID,
					Buddy:     buddy,
					Aliases:   cfg.Telegram.Aliases,
					Logger:    logger,
				})
				if err != nil {
					return err
				}
				go func() { errCh <- tg.Start(ctx) }()
			}

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil
			case err := <-errCh:
				return err
			}
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agent from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			buddy, closeIndex, err := buildBuddy(cfg)
			if err != nil {
				return err
			}
			defer closeIndex()

			fmt.Printf("%s is listening. Ctrl-D to quit.\n", buddy.Persona().Name)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				resp, err := buddy.Reply(ctx, line)
				if err != nil {
					logger.Error("turn failed", "err", err)
					continue
				}
				fmt.Println(resp.Answer)
			}
		},
	}
}

// buildBuddy wires the conversation agent from config. The returned func
// closes the retrieval index, if one was opened.
func buildBuddy(cfg *config.Config) (*agent.Buddy, func(), error) {
	persona, err := config.LoadPersona(cfg.Agent.PersonaPath)
	if err != nil {
		return nil, nil, err
	}

	completer := newProvider(cfg)

	var (
		index      domain.RetrievalIndex
		closeIndex = func() {}
	)
	if cfg.Agent.Retrieval {
		sqlIndex, err := openIndex(cfg)
		if err != nil {
			return nil, nil, err
		}
		index = sqlIndex
		closeIndex = func() { sqlIndex.Close() }
	}

	buddy := agent.NewBuddy(agent.BuddyConfig{
		Completer:   completer,
		Index:       index,
		Persona:     persona,
		Logger:      logger,
		Reformulate: cfg.Agent.Reformulate,
		MemoryTurns: cfg.Agent.MemoryTurns,
		Temperature: cfg.Provider.Temperature,
		Model:       cfg.Provider.Model,
		SearchK:     cfg.Knowledge.SearchK,
	})
	return buddy, closeIndex, nil
}

func newProvider(cfg *config.Config) *provider.OpenAI {
	return provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:         cfg.Provider.APIKey,
		APIBase:        cfg.Provider.APIBase,
		Model:          cfg.Provider.Model,
		EmbeddingModel: cfg.Provider.EmbeddingModel,
		Logger:         logger,
	})
}

func openIndex(cfg *config.Config) (*knowledge.SQLiteIndex, error) {
	return knowledge.NewSQLiteIndex(knowledge.SQLiteIndexConfig{
		DBPath:   cfg.Knowledge.IndexPath,
		Embedder: newProvider(cfg),
		Logger:   logger,
	})
}

// newDirectory seeds the identity directory with the configured aliases plus
// the persona's own identity so the bot recognizes itself in history.
func newDirectory(cfg *config.Config, resolver history.EntityResolver) *history.Directory {
	seed := make(map[int64]string, len(cfg.Telegram.Aliases)+1)
	for id, name := range cfg.Telegram.Aliases {
		seed[id] = name
	}
	if persona, err := config.LoadPersona(cfg.Agent.PersonaPath); err == nil && persona.UserID != 0 {
		seed[persona.UserID] = persona.Name
	}
	return history.NewDirectory(history.DirectoryConfig{
		Resolver: resolver,
		Seed:     seed,
		Logger:   logger,
	})
}
