package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/petbattle/internal/api/apierr"
	"github.com/mcoot/petbattle/internal/api/handler"
	"github.com/mcoot/petbattle/internal/api/middleware"
	"github.com/mcoot/petbattle/internal/api/response"
	collabmem "github.com/mcoot/petbattle/internal/collaborators/memory"
	"github.com/mcoot/petbattle/internal/services/auth"
	"github.com/mcoot/petbattle/internal/services/battle"
	"github.com/mcoot/petbattle/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	Dispatcher  *battle.Dispatcher
	Storage     storage.Storage

	// Devnet, when set, serves the in-process collaborators under /devnet
	Devnet *collabmem.Registry
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService)
	battleHandler := handler.NewBattleHandler(cfg.Dispatcher)
	notificationHandler := handler.NewNotificationHandler(cfg.Storage)

	// Create middleware
	actorMiddleware := middleware.Actor(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Public routes (no session required)
	api.HandleFunc("/health", healthHandler(cfg.Dispatcher)).Methods(http.MethodGet)
	api.HandleFunc("/accounts", accountHandler.Claim).Methods(http.MethodPost)
	api.HandleFunc("/sessions", accountHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/battle", battleHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/actors/{address}/notifications", notificationHandler.List).Methods(http.MethodGet)

	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(actorMiddleware)
	sessions.HandleFunc("/me", accountHandler.Me).Methods(http.MethodGet)
	sessions.HandleFunc("/me", accountHandler.Logout).Methods(http.MethodDelete)

	// Battle requests are sent as the address the session belongs to
	battles := api.PathPrefix("/battle").Subrouter()
	battles.Use(actorMiddleware)
	battles.HandleFunc("/register", battleHandler.Register).Methods(http.MethodPost)
	battles.HandleFunc("/move", battleHandler.Move).Methods(http.MethodPost)
	battles.HandleFunc("/update-info", battleHandler.UpdateInfo).Methods(http.MethodPost)
	battles.HandleFunc("/reset", battleHandler.Reset).Methods(http.MethodPost)

	if cfg.Devnet != nil {
		devnetHandler := handler.NewDevnetHandler(cfg.Devnet, cfg.Logger)

		devnet := r.PathPrefix("/devnet").Subrouter()
		devnet.Use(recoveryMiddleware)
		devnet.Use(loggingMiddleware)
		devnet.HandleFunc("/entities/{address}", devnetHandler.SetEntity).Methods(http.MethodPut)
		devnet.HandleFunc("/actors/{address}/handle", devnetHandler.Handle).Methods(http.MethodPost)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError("No route for "+r.URL.Path))
	})

	return r
}

func healthHandler(dispatcher *battle.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.Health{
			Status:    "ok",
			ProgramID: dispatcher.ProgramID().String(),
		})
	}
}
