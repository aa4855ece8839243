package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quill-backend/internal/config"
	"quill-backend/internal/handlers"
	"quill-backend/internal/logger"
	"quill-backend/internal/router"
	"quill-backend/internal/services"
	"quill-backend/internal/websocket"
)

const version = "0.3.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "quill-backend",
		Short: "Local backend for the Quill desktop chat client",
		Run: func(cmd *cobra.Command, args []string) {
			serve()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the backend version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("quill-backend %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() {
	log.Println("🚀 Starting Quill Backend...")

	// ──── Step 1: Load Configuration ────
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel, cfg.LogFile)
	log.Println("✓ Configuration loaded")

	// ──── Step 2: Initialize Services ────
	ollamaService := services.NewOllamaService(
		cfg.OllamaURL,
		cfg.OllamaModel,
		cfg.OllamaTemperature,
		time.Duration(cfg.OllamaTimeoutSecs)*time.Second,
	)
	searchService := services.NewSearchService(
		cfg.SearchURL,
		cfg.SearchAPIKey,
		time.Duration(cfg.SearchTimeoutSecs)*time.Second,
	)
	fileExtractService := services.NewFileExtractService()
	assembler := services.NewAssembler(fileExtractService, cfg.AttachMaxBytes, cfg.SearchResultMaxBytes)
	chatService := services.NewChatService(ollamaService, searchService, assembler)
	statsService := services.NewStatsService()
	log.Printf("✓ Ollama relay ready (%s, model %s)", cfg.OllamaURL, cfg.OllamaModel)
	if cfg.SearchAPIKey == "" {
		log.Println("! SEARCH_API_KEY not set; web search calls will fail soft")
	}

	// ──── Step 3: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(chatService)
	systemHandler := handlers.NewSystemHandler(statsService, ollamaService)
	wsHandler := websocket.NewHandler(chatService)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, systemHandler, wsHandler)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: chat responses stream for as long as inference runs.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Quill Backend ready on http://%s:%s", cfg.Host, cfg.Port)
	log.Printf("  API: http://%s:%s/api/v1", cfg.Host, cfg.Port)
	log.Printf("  WS:  ws://%s:%s/api/v1/ws", cfg.Host, cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
