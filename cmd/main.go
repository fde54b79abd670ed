package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/keterhq/keter-rest/internal/auth"
	"github.com/keterhq/keter-rest/internal/config"
	"github.com/keterhq/keter-rest/internal/database"
	"github.com/keterhq/keter-rest/internal/token"
	"github.com/keterhq/keter-rest/internal/upload"
	"github.com/keterhq/keter-rest/internal/user"
	"go.uber.org/zap"
	"moul.io/chizap"
)

var version = "0.1.0"

func main() {
	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// load dotenv file
	if err := godotenv.Load(); err != nil {
		logger.Warn("failed to load .env file", zap.Error(err))
	}

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// load database
	db, err := database.Init(cfg.DbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// run migrations
	database.SetMigrationLogger(logger)
	if err := database.Migrate(context.Background(), db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// wire services
	userRepo := user.NewRepo(db, logger)
	userService := user.NewService(userRepo, cfg.RootConfig.HashCost, logger)
	tokenService := token.NewService(cfg.JWTConfig, logger)
	authService, err := auth.NewService(tokenService, user.NewAuthStore(userRepo), cfg.RootConfig, logger)
	if err != nil {
		logger.Fatal("failed to initialize auth service", zap.Error(err))
	}
	uploadService, err := upload.NewService(cfg.UploadConfig.Dir, logger)
	if err != nil {
		logger.Fatal("failed to initialize upload directory", zap.Error(err))
	}

	authHandler := auth.NewHandler(authService, logger)
	userHandler := user.NewHandler(userService, logger)
	uploadHandler := upload.NewHandler(uploadService, cfg.UploadConfig.MaxBytes, logger)

	r := chi.NewRouter()
	r.Use(chizap.New(logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// public routes
	r.Get("/health-check", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("App version: " + version))
	})
	r.Post("/login", authHandler.Login)

	// protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(authService, logger))
		r.Mount("/users", userHandler.Routes())
		r.Mount("/upload", uploadHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppConfig.Port,
		Handler:      r,
		ReadTimeout:  cfg.AppConfig.ReadTimeout,
		WriteTimeout: cfg.AppConfig.WriteTimeout,
		IdleTimeout:  cfg.AppConfig.IdleTimeout,
	}

	go func() {
		logger.Info("application started",
			zap.String("addr", srv.Addr),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
