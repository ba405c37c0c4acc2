package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"quizwire/internal/auth"
	"quizwire/internal/config"
	"quizwire/internal/db"
	"quizwire/internal/metrics"
	"quizwire/internal/questions"
	"quizwire/internal/rooms"
	"quizwire/internal/wshub"
)

func Run() error {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	srv := &Server{
		Cfg:    cfg,
		Logger: logger,
	}

	var catalog rooms.Catalog
	var recorder rooms.Recorder

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("database unreachable, running without persistence", "err", err)
		} else {
			if err := database.Migrate(); err != nil {
				logger.Error("migration failed", "err", err)
				return err
			}
			seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := database.SeedQuestions(seedCtx, questions.DefaultCatalog().All()); err != nil {
				logger.Warn("seeding questions failed", "err", err)
			}
			cancel()
			srv.DB = database
			catalog = database
			recorder = database
			srv.Users = database
		}
	} else {
		logger.Info("DATABASE_URL not set, running without persistence")
	}
	if catalog == nil {
		catalog = questions.DefaultCatalog()
	}

	srv.Auth = auth.NewService(cfg.JWTSecret, srv.Users)
	srv.Registry = rooms.NewRegistry(catalog, recorder, func(string) rooms.Emitter {
		return wshub.NewHub(logger)
	}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", srv.handleRegister)
	mux.HandleFunc("/api/login", srv.handleLogin)
	mux.HandleFunc("/api/guest", srv.handleGuest)
	mux.HandleFunc("/api/categories", srv.handleCategories)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/ws", srv.handleWS)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	addr := "0.0.0.0:" + cfg.Port
	logger.Info("server listening", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
