package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splax/shiftwatch/internal/app/migrate"
	httpx "github.com/splax/shiftwatch/internal/http"
	"github.com/splax/shiftwatch/internal/repository/postgres"
	"github.com/splax/shiftwatch/internal/service/activity"
	"github.com/splax/shiftwatch/internal/service/admin"
	"github.com/splax/shiftwatch/internal/service/analytics"
	"github.com/splax/shiftwatch/internal/service/auth"
	"github.com/splax/shiftwatch/internal/service/employee"
	"github.com/splax/shiftwatch/internal/service/membership"
	"github.com/splax/shiftwatch/internal/service/project"
	"github.com/splax/shiftwatch/internal/service/screenshot"
	"github.com/splax/shiftwatch/internal/service/shift"
	"github.com/splax/shiftwatch/internal/service/task"
	"github.com/splax/shiftwatch/internal/service/team"
	"github.com/splax/shiftwatch/internal/ws"
	"github.com/splax/shiftwatch/pkg/config"
	"github.com/splax/shiftwatch/pkg/logger"
)

func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := migrate.New(cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	_ = runner.Close()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.New(pool)
	hub := ws.NewHub()
	defer hub.Close()
	feed := activity.New(hub, log)
	members := membership.New(repo, log)

	authSvc, err := auth.New(repo, repo, repo, log, cfg)
	if err != nil {
		log.Error("failed to configure auth", "error", err)
		os.Exit(1)
	}
	if _, err := authSvc.Bootstrap(ctx); err != nil {
		log.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	var limiter httpx.RateLimiter
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(ctx, addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable, using memory", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, httpx.Services{
		Auth:       authSvc,
		Admin:      admin.New(repo, log),
		Employee:   employee.New(repo, repo, members, log),
		Team:       team.New(repo, log),
		Project:    project.New(repo, members, log),
		Task:       task.New(repo, repo, members, log),
		Shift:      shift.New(repo, repo, repo, repo, feed, log),
		Analytics:  analytics.New(repo, repo, repo, repo, members, log),
		Screenshot: screenshot.New(repo, repo, repo, members, feed, log),
		Activity:   feed,
	}, limiter, httpx.Options{
		APIPrefix:    cfg.APIPrefix,
		CORSOrigins:  cfg.CORSOrigins,
		DBHealth:     repo.Ping,
		WriteTimeout: cfg.WebsocketWriteWindow,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment, "prefix", cfg.APIPrefix)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
