package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jondude1/retro-pricer/internal/api"
	"github.com/Jondude1/retro-pricer/internal/config"
	"github.com/Jondude1/retro-pricer/internal/database"
	"github.com/Jondude1/retro-pricer/internal/services"
)

func main() {
	// Local dev convenience; the file is optional.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := database.NewStore(database.GetDB(), cfg.PriceCacheTTL)

	// Initialize services
	marketService := services.NewPriceChartingService()
	retailService := services.NewDKOldiesService(cfg.DataDir)
	buylistService := services.NewBuylistService(retailService, cfg.BuylistTTL)
	priceService := services.NewPriceService(marketService, retailService, buylistService, store)
	visionService := services.NewVisionService(cfg.AnthropicAPIKey)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep the buy-list warm in the background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in buylist refresher: %v - restarting in 30 seconds", r)
					}
				}()
				buylistService.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Buylist refresher restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(cfg, marketService, priceService, buylistService, visionService, store)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Stop the buylist refresher
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
