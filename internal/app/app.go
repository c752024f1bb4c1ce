// Package app wires together the chat client's dependencies: configuration,
// logging, the persisted session, the transport stack, and the services the
// CLI commands call.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PeterJohnBishop/go-chat-cli/internal/config"
	"github.com/PeterJohnBishop/go-chat-cli/internal/metrics"
	"github.com/PeterJohnBishop/go-chat-cli/internal/service"
	"github.com/PeterJohnBishop/go-chat-cli/internal/session"
	"github.com/PeterJohnBishop/go-chat-cli/internal/transport"
)

// App holds the client's wired dependencies.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Sessions      session.Store
	Auth          *service.AuthService
	Directory     *service.DirectoryService
	Conversations *service.ConversationService

	store         *session.SQLiteStore
	metricsServer *http.Server
}

// New creates an application instance, initializing all dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := session.OpenSQLite(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client := transport.New(transport.Config{
		BaseURL:      cfg.ServerURL,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryWaitMin: cfg.RetryWaitMin,
		RetryWaitMax: cfg.RetryWaitMax,
	}, store, logger)

	doer := transport.NewCircuitBreakerClient(
		client,
		transport.DefaultCircuitBreakerConfig("chat-backend"),
		logger,
	)

	a := &App{
		Config:        cfg,
		Logger:        logger,
		Sessions:      store,
		Auth:          service.NewAuthService(doer, store, logger),
		Directory:     service.NewDirectoryService(doer, logger),
		Conversations: service.NewConversationService(doer, logger),
		store:         store,
	}

	if cfg.MetricsAddr != "" {
		a.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener failed", slog.String("error", err.Error()))
			}
		}()
		logger.Info("metrics listening", slog.String("addr", cfg.MetricsAddr))
	}

	return a, nil
}

// Close releases the session store and stops the metrics listener.
func (a *App) Close() error {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricsServer.Shutdown(ctx)
	}
	return a.store.Close()
}
