package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wxyClark/LaravelX-AI/internal/config"
	"github.com/wxyClark/LaravelX-AI/internal/database"
	"github.com/wxyClark/LaravelX-AI/internal/handler"
	"github.com/wxyClark/LaravelX-AI/internal/metrics"
	"github.com/wxyClark/LaravelX-AI/internal/middleware"
	"github.com/wxyClark/LaravelX-AI/internal/model"
	"github.com/wxyClark/LaravelX-AI/internal/repository"
	"github.com/wxyClark/LaravelX-AI/internal/service"
	"github.com/wxyClark/LaravelX-AI/pkg/jwt"
)

func main() {
	seedEmail := flag.String("seed-email", "", "Create this account at startup if it does not exist")
	seedPassword := flag.String("seed-password", "", "Password for the seeded account")
	seedName := flag.String("seed-name", "Seed User", "Display name for the seeded account")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.ApplySchema(ctx); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize token codec
	codec, err := jwt.NewCodec(cfg.TokenConfig())
	if err != nil {
		slog.Error("failed to initialize token codec", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories and services
	userRepo := repository.NewUserRepository(db)
	directory := service.NewDirectory(service.DirectoryConfig{Users: userRepo})

	if *seedEmail != "" {
		seedUser(ctx, directory, model.CreateUserRequest{
			Name:     *seedName,
			Email:    *seedEmail,
			Password: *seedPassword,
		})
	}

	var denylist service.Denylist
	if cfg.Revocation.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Revocation.RedisAddr,
			Password: cfg.Revocation.RedisPassword,
			DB:       cfg.Revocation.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		revocations := repository.NewRevocationRepository(rdb)
		if err := revocations.Ping(ctx); err != nil {
			slog.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		denylist = revocations

		slog.Info("token revocation enabled", slog.String("redis", cfg.Revocation.RedisAddr))
	}

	m := metrics.New()

	tokenService := service.NewTokenService(service.TokenServiceConfig{
		Codec: codec,
	})

	authService, err := service.NewAuthService(service.AuthServiceConfig{
		Directory:    directory,
		TokenService: tokenService,
		Denylist:     denylist,
		Recorder:     m,
	})
	if err != nil {
		slog.Error("failed to initialize auth service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		Auth:          handler.NewAuthHandler(handler.AuthHandlerConfig{AuthService: authService}),
		Authenticator: authService,
		RateLimiter:   rateLimiter,
		Metrics:       m.Handler(),
		CORSOrigins:   cfg.Server.AllowedOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.Bool("revocation", authService.RevocationEnabled()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

func seedUser(ctx context.Context, directory *service.Directory, req model.CreateUserRequest) {
	user, created, err := directory.EnsureUser(ctx, req)
	if err != nil {
		slog.Error("failed to seed user",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	if created {
		slog.Info("seeded user", slog.String("id", user.ID), slog.String("email", user.Email))
		return
	}
	slog.Info("seed user already exists", slog.String("id", user.ID))
}
