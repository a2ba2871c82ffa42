package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/typerace-go/internal/config"
	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/leaderboard"
	lbmemory "github.com/mcoot/typerace-go/internal/leaderboard/memory"
	lbredis "github.com/mcoot/typerace-go/internal/leaderboard/redis"
	"github.com/mcoot/typerace-go/internal/registry"
	"github.com/mcoot/typerace-go/internal/server"
	"github.com/mcoot/typerace-go/internal/services/auth"
	"github.com/mcoot/typerace-go/internal/services/game"
	"github.com/mcoot/typerace-go/internal/status"
	"github.com/mcoot/typerace-go/internal/ws"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	clk := clock.New()

	// Leaderboard backend
	var results leaderboard.Store
	switch cfg.LeaderboardBackend {
	case config.LeaderboardRedis:
		redisCfg := lbredis.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		store, err := lbredis.New(redisCfg)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer store.Close()
		results = store
	default:
		results = lbmemory.New()
	}

	// Wire core components
	reg := registry.New(clk, logger)
	authService := auth.New(cfg.JWTSecret, clk)
	fanout := ws.NewFanout(reg, logger)
	games := game.NewController(reg, fanout, results, clk, logger)

	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Logger:      logger,
		Registry:    reg,
		Games:       games,
		AuthService: authService,
	})

	wsMux := http.NewServeMux()
	wsMux.Handle("/ws", wsHandler)

	statusRouter := status.NewRouter(status.RouterConfig{
		Logger:      logger,
		Source:      reg,
		Leaderboard: results,
		Clock:       clk,
	})

	wsConfig := server.DefaultConfig()
	wsConfig.Host = cfg.Host
	wsConfig.Port = cfg.WSPort
	wsConfig.ReadTimeout = 0 // Connections idle between frames indefinitely
	wsServer := server.New(wsMux, wsConfig, logger)

	statusConfig := server.DefaultConfig()
	statusConfig.Host = cfg.Host
	statusConfig.Port = cfg.StatusPort
	statusConfig.WriteTimeout = 15 * time.Second
	statusServer := server.New(statusRouter, statusConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Evict finished and abandoned races
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := reg.Sweep(cfg.SessionTTL); n > 0 {
					logger.Info("swept stale races", slog.Int("removed", n))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 2)
	go func() {
		errCh <- wsServer.Start()
	}()
	go func() {
		errCh <- statusServer.Start()
	}()

	logger.Info("game server ready",
		slog.String("ws_addr", wsServer.Addr()),
		slog.String("status_addr", statusServer.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := wsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
