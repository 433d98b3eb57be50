package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/petbattle/internal/api"
	"github.com/mcoot/petbattle/internal/collaborators/httpclient"
	"github.com/mcoot/petbattle/internal/config"
	"github.com/mcoot/petbattle/internal/factory"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
	redisstorage "github.com/mcoot/petbattle/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.Level()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	factoryCfg := factory.Config{
		ProgramID:   model.ActorID(cfg.ProgramID),
		StoreID:     model.ActorID(cfg.StoreID),
		Logger:      logger,
		StorageType: cfg.StorageType,
		Directory:   directory(cfg),
		Devnet:      cfg.Devnet,
		BlockTime:   cfg.BlockTime,
		RandomSeed:  cfg.RandomSeed,
		AuthConfig:  auth.Config{SessionDuration: cfg.SessionTTL},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		logger.Error("failed to start battle", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Deliver delayed messages in the background
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		app.Scheduler.Run(ctx, cfg.PollInterval)
	}()

	// Sweep expired sessions
	go app.Auth.RunCleanup(ctx, time.Minute)

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		AuthService: app.Auth,
		Dispatcher:  app.Dispatcher,
		Storage:     app.Storage,
		Devnet:      app.Devnet,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	exitCode := 0
	if err := server.Listen(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
		cancel()
	} else {
		logger.Info("server started",
			slog.String("addr", server.Addr()),
			slog.String("program_id", cfg.ProgramID),
			slog.Bool("devnet", cfg.Devnet),
		)

		// Serve until a shutdown signal arrives
		if err := server.Run(ctx); err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
		cancel()
	}

	<-schedulerDone
	if err := app.Close(); err != nil {
		logger.Error("close error", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// directory builds the collaborator directory. With the dev network on
// and no base URL configured, unknown actors are served by this process.
func directory(cfg config.Config) httpclient.Directory {
	d := httpclient.Directory{
		Endpoints: make(map[model.ActorID]string, len(cfg.ActorDirectory)),
		BaseURL:   cfg.ActorBaseURL,
	}
	for address, u := range cfg.ActorDirectory {
		d.Endpoints[model.ActorID(address)] = u
	}
	if d.BaseURL == "" && cfg.Devnet {
		d.BaseURL = cfg.DevnetBaseURL()
	}
	return d
}
