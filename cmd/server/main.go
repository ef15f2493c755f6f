package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/superlists/config"
	"github.com/ErlanBelekov/superlists/internal/email"
	"github.com/ErlanBelekov/superlists/internal/health"
	"github.com/ErlanBelekov/superlists/internal/infrastructure/memory"
	"github.com/ErlanBelekov/superlists/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/superlists/internal/log"
	"github.com/ErlanBelekov/superlists/internal/metrics"
	"github.com/ErlanBelekov/superlists/internal/repository"
	"github.com/ErlanBelekov/superlists/internal/scheduler"
	httptransport "github.com/ErlanBelekov/superlists/internal/transport/http"
	"github.com/ErlanBelekov/superlists/internal/transport/http/handler"
	"github.com/ErlanBelekov/superlists/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

// stores bundles the repositories for whichever backend STORE selects.
type stores struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	lists  repository.ListRepository
	health health.Dependency
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("store: %v", err)
	}
	defer st.close()

	sender, err := email.NewSender(email.Config{
		Provider:     cfg.EmailProvider,
		From:         cfg.EmailFrom,
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPAddr:     cfg.SMTPAddr,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
	}, logger)
	if err != nil {
		stop()
		log.Fatalf("email: %v", err)
	}

	jwtKey := []byte(cfg.JWTSecret)

	// Auth
	issuer := usecase.NewTokenIssuer(st.tokens)
	resolver := usecase.NewResolver(st.users, st.tokens, cfg.LoginTokenSingleUse, logger)
	authUsecase := usecase.NewAuthUsecase(issuer, resolver, sender, jwtKey, cfg.SessionTTL, cfg.LoginLinkBase)
	authHandler := handler.NewAuthHandler(authUsecase, logger, cfg.SecureCookies())

	// Lists
	listUsecase := usecase.NewListUsecase(st.lists)
	listHandler := handler.NewListHandler(listUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, st.health)

	// The memory store has no separate reaper process to share tokens with.
	if cfg.Store == "memory" {
		reaper, err := scheduler.NewReaper(st.tokens, logger, cfg.TokenReaperCron, cfg.LoginTokenMaxAge, 0)
		if err != nil {
			stop()
			log.Fatalf("reaper: %v", err)
		}
		go reaper.Start(ctx)
	}

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, listHandler, authUsecase, jwtKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.Store, "email_provider", cfg.EmailProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Store == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &stores{
			users:  mem,
			tokens: mem,
			lists:  mem,
			health: health.Dependency{Name: "memory", Pinger: mem},
			close:  func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	if cfg.RunMigrations {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	return &stores{
		users:  postgres.NewUserRepository(pool),
		tokens: postgres.NewTokenRepository(pool),
		lists:  postgres.NewListRepository(pool),
		health: health.Dependency{Name: "postgres", Pinger: pool},
		close:  pool.Close,
	}, nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
