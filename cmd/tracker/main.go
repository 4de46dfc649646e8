package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chepyr/team-tracker/internal/account"
	"github.com/chepyr/team-tracker/internal/config"
	"github.com/chepyr/team-tracker/internal/db"
	"github.com/chepyr/team-tracker/internal/handlers"
	"github.com/chepyr/team-tracker/internal/session"
	"github.com/chepyr/team-tracker/internal/task"
	"github.com/chepyr/team-tracker/internal/team"
	"github.com/chepyr/team-tracker/internal/workspace"
	"github.com/spf13/pflag"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	dbConn, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to initialise database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	store := db.NewStore(dbConn)
	handler := initHandlers(cfg, store, logger)
	defer handler.RateLimiter.Stop()
	server := initServer(cfg.Server, handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sweepSessions(ctx, handler.Sessions, logger)

	if err := startServer(ctx, server, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dbConn, err := db.Connect(cfg.Driver, cfg.DataSource())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Migrate(context.Background(), dbConn, cfg.Driver); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return dbConn, nil
}

func initHandlers(cfg config.Config, store *db.Store, logger *slog.Logger) *handlers.Handler {
	teams := team.NewManager(store, logger)
	return &handlers.Handler{
		Accounts:    account.NewService(store, teams, logger),
		Teams:       teams,
		Tasks:       task.NewService(store, logger),
		Sessions:    session.NewManager(store.Sessions, cfg.Auth.TokenTTL),
		Resolver:    workspace.NewResolver(store.Teams, logger),
		RateLimiter: handlers.NewRateLimiter(cfg.Auth.LoginLimit, cfg.Auth.LoginWindow),
		Logger:      logger,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL,
	}
}

func initServer(cfg config.ServerConfig, handler *handlers.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func startServer(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	logger.Info("starting server", "addr", server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// sweepSessions drops expired sessions until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions *session.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}
