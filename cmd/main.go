/*
Package main is the entry point for the event chat relay.

It is responsible for loading configuration, initializing the global logging system,
opening the chat history store, setting up the HTTP server and the chat Gateway,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
so that connected clients are closed and queued history is flushed before exit.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventchat/internal/app/chat"
	"eventchat/internal/app/history"
	"eventchat/internal/configs"
	"eventchat/internal/handler"
	"eventchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("history_backend", cfg.HistoryBackend).
		Int("send_queue_size", cfg.SendQueueSize).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open history store", "backend", cfg.HistoryBackend)
	}

	writer := history.NewWriter(store, history.WriterOptions{
		Workers:      cfg.HistoryWorkers,
		QueueSize:    cfg.HistoryQueueSize,
		WriteTimeout: cfg.HistoryWriteTimeout,
	})

	gateway := chat.NewGateway(chat.NewRegistry(cfg.SendQueueSize), chat.NewDirectory(), writer)

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Gateway: gateway,
		Config:  cfg,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Event chat relay starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	// hijacked WebSocket connections are not tracked by the server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server shutdown did not complete")
	}

	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Chat sessions did not finish before the shutdown deadline")
	}

	if err := writer.Close(shutdownCtx); err != nil {
		logx.Error(err, "History writer did not drain before the shutdown deadline")
	}

	if err := store.Close(); err != nil {
		logx.Error(err, "Failed to close history store")
	}

	logx.Info("Server gracefully stopped.")
}
