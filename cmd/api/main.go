package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davitk/edureel/internal/api"
	"github.com/davitk/edureel/internal/config"
	"github.com/davitk/edureel/internal/pipeline"
	"github.com/davitk/edureel/internal/progress"
	"github.com/davitk/edureel/internal/services"
	"github.com/davitk/edureel/internal/storage"
	"github.com/davitk/edureel/internal/timeline"
)

func main() {
	log.Println("Starting EduReel API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to Redis progress store
	store, err := progress.New(cfg.RedisURL, time.Duration(cfg.RunTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to connect to progress store: %v", err)
	}
	defer store.Close()
	log.Println("Connected to Redis progress store")

	// Initialize object storage
	assets := storage.New(cfg.StorageURL, cfg.StorageServiceKey, cfg.StorageBucket, cfg.StoragePrefix)
	log.Printf("Initialized storage (bucket: %s)", cfg.StorageBucket)

	// Initialize text generation — OpenAI preferred when configured, Gemini as default
	var generator pipeline.Generator
	if cfg.OpenAIKey != "" {
		generator = services.NewOpenAIService(cfg.OpenAIKey, cfg.SegmentCount)
		log.Println("Text provider: OpenAI (gpt-4o-mini)")
	} else {
		generator = services.NewGeminiService(cfg.GeminiKeys[0], cfg.SegmentCount)
		log.Println("Text provider: Gemini (gemini-2.0-flash)")
	}

	imagen := services.NewImagenService(cfg.ImageAspectRatio)
	log.Printf("Image synthesis: Imagen (%d credentials, aspect %s)", len(cfg.GeminiKeys), cfg.ImageAspectRatio)

	renderer := services.NewRenderService(cfg.RenderAPIURL, cfg.RenderAPIKey)
	speech := services.NewSpeechService(cfg.GeminiKeys[0])

	p := pipeline.New(generator, imagen, assets, renderer, pipeline.Options{
		ImageKeys:       cfg.GeminiKeys,
		PollInterval:    time.Duration(cfg.RenderPollIntervalMs) * time.Millisecond,
		MaxPollAttempts: cfg.RenderMaxPollAttempts,
		Timeline: timeline.Options{
			DefaultSegmentSeconds: cfg.DefaultSegmentSeconds,
			NarrationEnabled:      cfg.NarrationEnabled,
			NarrationVoice:        cfg.NarrationVoice,
		},
	})

	// Create API handler
	handler := api.NewHandler(store, p, speech, func(err error) bool {
		return errors.Is(err, progress.ErrNotFound)
	})
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
