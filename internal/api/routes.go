package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jondude1/retro-pricer/internal/api/handlers"
	"github.com/Jondude1/retro-pricer/internal/config"
	"github.com/Jondude1/retro-pricer/internal/database"
	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/services"
)

// maxUploadBytes caps scan photo uploads at 16MB.
const maxUploadBytes = 16 << 20

func SetupRouter(
	cfg *config.Config,
	market *services.PriceChartingService,
	priceService *services.PriceService,
	buylist *services.BuylistService,
	vision *services.VisionService,
	store *database.Store,
) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = maxUploadBytes
	router.Use(metricsMiddleware())

	// CORS configuration - allow origins from environment or use defaults
	corsConfig := cors.DefaultConfig()
	if cfg.CORSAllowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(market, store)
	priceHandler := handlers.NewPriceHandler(priceService)
	dealHandler := handlers.NewDealHandler()
	scanHandler := handlers.NewScanHandler(vision)

	// API routes
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/search", searchHandler.Search)
		apiGroup.GET("/prices", priceHandler.GetPrices)
		apiGroup.GET("/deal", dealHandler.RateDeal)
		apiGroup.GET("/history", searchHandler.History)
		apiGroup.GET("/platforms", searchHandler.Platforms)
		apiGroup.POST("/scan", scanHandler.Scan)
		apiGroup.POST("/scan/followup", scanHandler.ScanFollowUp)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		entries, source, fetchedAt := buylist.Status()
		c.JSON(200, gin.H{
			"status":             "ok",
			"buylist_entries":    entries,
			"buylist_source":     source,
			"buylist_fetched_at": fetchedAt,
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
