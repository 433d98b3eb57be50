package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/petbattle/internal/collaborators"
	"github.com/mcoot/petbattle/internal/collaborators/httpclient"
	collabmem "github.com/mcoot/petbattle/internal/collaborators/memory"
	"github.com/mcoot/petbattle/internal/dependencies/clock"
	"github.com/mcoot/petbattle/internal/dependencies/random"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
	"github.com/mcoot/petbattle/internal/services/battle"
	"github.com/mcoot/petbattle/internal/services/scheduler"
	"github.com/mcoot/petbattle/internal/storage"
	"github.com/mcoot/petbattle/internal/storage/memory"
	redisstorage "github.com/mcoot/petbattle/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock      clock.Clock
	Random     random.Random
	Owners     collaborators.OwnerRegistry
	Attributes collaborators.AttributeStore

	// Devnet is the in-process collaborator registry, nil unless enabled
	Devnet *collabmem.Registry

	// Services
	Auth       *auth.Service
	Machine    *battle.Machine
	Dispatcher *battle.Dispatcher
	Scheduler  *scheduler.Scheduler

	programID model.ActorID
	storeID   model.ActorID
	logger    *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// ProgramID is the address of the hosted battle program
	ProgramID model.ActorID
	// StoreID is the attribute store the battle is initialized with
	StoreID model.ActorID
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Directory locates collaborating actors over HTTP
	Directory httpclient.Directory
	// Devnet creates an in-process registry for the /devnet routes
	Devnet bool
	// BlockTime converts delays in blocks to wall time (default 1s)
	BlockTime time.Duration
	// RandomSeed makes draws reproducible when non-empty
	RandomSeed string
	// AuthConfig configures sessions. The program address is always reserved.
	// Zero fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.ProgramID == "" {
		return nil, errors.New("ProgramID required")
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.RandomSeed != "" {
		logger.Warn("using seeded randomness, draws are predictable")
		rnd = random.NewSeeded([]byte(cfg.RandomSeed))
	}

	client := httpclient.New(cfg.Directory, &http.Client{}, logger)

	var devnet *collabmem.Registry
	if cfg.Devnet {
		devnet = collabmem.New()
	}

	blockTime := cfg.BlockTime
	if blockTime == 0 {
		blockTime = time.Second
	}

	app := newWithDependencies(cfg.ProgramID, cfg.StoreID, store, clk, rnd, client, client, blockTime, cfg.AuthConfig, logger)
	app.Devnet = devnet
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	programID, storeID model.ActorID,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	owners collaborators.OwnerRegistry,
	attributes collaborators.AttributeStore,
	blockTime time.Duration,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	// Nobody may claim the program's address and send messages as it
	authCfg.Reserved = append(authCfg.Reserved, programID)

	// Create services
	authService := auth.New(store, clk, authCfg, logger)
	sched := scheduler.New(store, clk, blockTime, logger)
	machine := battle.NewMachine(owners, attributes, rnd, logger)
	dispatcher := battle.NewDispatcher(programID, store, machine, sched, clk, logger)
	sched.Register(programID, dispatcher)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Owners:     owners,
		Attributes: attributes,
		Auth:       authService,
		Machine:    machine,
		Dispatcher: dispatcher,
		Scheduler:  sched,
		programID:  programID,
		storeID:    storeID,
		logger:     logger,
	}
}

// Start starts the dispatcher and initializes the battle if it does not
// exist yet. A battle found in storage is resumed as is.
func (a *App) Start(ctx context.Context) error {
	a.Dispatcher.Start()

	_, err := a.Dispatcher.Init(ctx, a.storeID)
	if errors.Is(err, model.ErrAlreadyInitialized) {
		a.logger.Info("resuming battle", slog.String("program_id", a.programID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("init battle: %w", err)
	}
	return nil
}

// Close stops the dispatcher and releases storage connections
func (a *App) Close() error {
	a.Dispatcher.Stop()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
