package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fantasytools/fpl-agent/auth"
	"github.com/fantasytools/fpl-agent/cache"
	"github.com/fantasytools/fpl-agent/fplclient"
	"github.com/fantasytools/fpl-agent/internal/config"
	"github.com/fantasytools/fpl-agent/resolver"
	"github.com/fantasytools/fpl-agent/server"
	"github.com/fantasytools/fpl-agent/service"
	"github.com/fantasytools/fpl-agent/tools"
)

const version = "1.0.0"

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	logger := setupLogger(cfg)
	displayAppname(cfg.AppName)

	// stdout carries the MCP protocol; everything human-facing goes to
	// stderr.
	client := fplclient.New(logger, fplclient.WithBaseURL(cfg.UpstreamBaseURL))
	store := cache.NewStore(logger)
	sessions := auth.NewStore(client, logger, auth.WithInactivityTimeout(cfg.SessionTimeout))
	names := resolver.New(logger, resolver.WithThreshold(cfg.ResolveThreshold))
	svc := service.New(client, store, sessions, names, cfg, logger)

	loginServer, err := server.New(cfg, sessions)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	httpServer := &http.Server{Addr: cfg.Addr, Handler: loginServer}
	go listenAndServe(httpServer, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go sweepSessions(ctx, sessions, cfg.SweepInterval)

	logger.Info().Str("addr", cfg.Addr).Str("public_base_url", cfg.PublicBaseURL).Msg("agent ready")
	mcpServer := tools.NewServer(svc, cfg, logger, version)
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		returnError = fmt.Errorf("mcpServer.Run: %w", err)
	}

	if err := shutdown(httpServer); err != nil && returnError == nil {
		returnError = err
	}
	return returnError
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.Env != "production" {
		logger = logger.Level(zerolog.DebugLevel).Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger
	return logger
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("login server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("login server stopped")
	}
}

func sweepSessions(ctx context.Context, sessions *auth.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep()
		}
	}
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpServer.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	figure.Write(os.Stderr, myFigure)
	fmt.Fprintln(os.Stderr)
}
