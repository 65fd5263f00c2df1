// MedAssist - Medication Reminder and Dose Verification Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/medassist-labs/medassist/internal/api"
	"github.com/medassist-labs/medassist/internal/capture"
	"github.com/medassist-labs/medassist/internal/config"
	"github.com/medassist-labs/medassist/internal/domain"
	"github.com/medassist-labs/medassist/internal/identity"
	"github.com/medassist-labs/medassist/internal/images"
	"github.com/medassist-labs/medassist/internal/middleware"
	"github.com/medassist-labs/medassist/internal/store"
	"github.com/medassist-labs/medassist/internal/verify"
	"github.com/medassist-labs/medassist/internal/vision"
	"github.com/medassist-labs/medassist/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "ai_enabled", cfg.AIEnabled())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if err := repo.SeedMedications(context.Background(), domain.SeedMedications()); err != nil {
		slog.Error("Failed to seed medication schedule", "error", err)
		os.Exit(1)
	}

	// Hosted model collaborators. Without an API key every collaborator
	// degrades to its deterministic offline fallback.
	var (
		classifier vision.Classifier  = vision.Disabled{}
		synth      vision.Synthesizer = vision.Disabled{}
		assistant  vision.Assistant   = vision.Disabled{}
	)
	if cfg.AIEnabled() {
		gemini, err := vision.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ImageModel)
		if err != nil {
			slog.Warn("Failed to initialize Gemini client, AI features disabled", "error", err)
		} else {
			classifier = gemini
			synth = gemini
			assistant = gemini
			slog.Info("Gemini client initialized", "model", cfg.GeminiModel, "image_model", cfg.ImageModel)
		}
	} else {
		slog.Info("AI features disabled (GEMINI_API_KEY not set)")
	}

	// Camera input. The browser pushes frames over /ws/camera; a file-backed
	// provider substitutes for it in simulation runs.
	feeds := capture.NewFeedProvider()
	var camera capture.Provider = feeds
	if cfg.SimCameraPath != "" {
		camera = &capture.FileProvider{Path: cfg.SimCameraPath}
		slog.Info("Using simulated camera", "path", cfg.SimCameraPath)
	}

	prefetcher := images.NewPrefetcher(repo, synth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PrefetchEnabled {
		go func() {
			meds, err := repo.ListMedications(ctx)
			if err != nil {
				slog.Error("Failed to list medications for prefetch", "error", err)
				return
			}
			prefetcher.Run(ctx, meds)
		}()
	}

	// Initialize handlers.
	workflows := verify.NewManager()
	handler := api.NewHandler(repo, workflows, camera, classifier, assistant, prefetcher, cfg.RefillWindowDays, cfg.VerifyTimeout)
	feedHandler := capture.NewFeedHandler(feeds, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(repo, cfg.IsDevelopment()))

	// All routes use identity middleware (no auth needed).
	handler.RegisterRoutes(r)

	// WebSocket camera feed.
	r.Get("/ws/camera", feedHandler.ServeHTTP)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // camera feed connections stay open indefinitely
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
