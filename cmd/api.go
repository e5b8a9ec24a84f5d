package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/krupapatkar/appsolution-admin/config"
	"github.com/krupapatkar/appsolution-admin/internal/api"
	"github.com/krupapatkar/appsolution-admin/internal/cache"
	"github.com/krupapatkar/appsolution-admin/internal/database"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/repositories"
	"github.com/krupapatkar/appsolution-admin/internal/search"
	"github.com/krupapatkar/appsolution-admin/internal/services"
	"github.com/krupapatkar/appsolution-admin/internal/storage"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long:  `Start the HTTP API server for the storefront and admin panel`,
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize database connections
	db, readOnlyDB, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}

	// Initialize cache
	var cacheClient services.Cache
	if redisCache, err := cache.NewRedisCache(cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	} else {
		cacheClient = redisCache
	}

	// Initialize tracer
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		tracer = tracing.Disabled()
	}

	// Initialize Elasticsearch client
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize repositories
	productRepo := repositories.NewProductRepository(db, readOnlyDB)
	blogRepo := repositories.NewBlogRepository(db, readOnlyDB)
	purchaseRepo := repositories.NewPurchaseRepository(db, readOnlyDB)
	contactRepo := repositories.NewContactRepository(db, readOnlyDB)

	// Initialize services. Author identity is owned by the gateway; no
	// resolver is wired here, so author names fall back to a default.
	productService := services.NewProductService(productRepo, cacheClient, elasticClient, metricsCollector, tracer)
	blogService := services.NewBlogService(blogRepo, cacheClient, elasticClient, nil, metricsCollector, tracer)
	purchaseService := services.NewPurchaseService(purchaseRepo, productRepo, cacheClient, metricsCollector, tracer)
	contactService := services.NewContactService(contactRepo, metricsCollector, tracer)

	// Initialize upload storage
	blobs := storage.NewLocalStore(cfg.Uploads.Dir)

	// Initialize and start the server
	server := api.NewServer(cfg, productService, blogService, purchaseService, contactService, blobs, metricsCollector, tracer)

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	tracer.Close()
	log.Info().Msg("Shutting down API server")
	return nil
}
