package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/krupapatkar/appsolution-admin/config"
	"github.com/krupapatkar/appsolution-admin/internal/cache"
	"github.com/krupapatkar/appsolution-admin/internal/database"
	"github.com/krupapatkar/appsolution-admin/internal/messaging"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/repositories"
	"github.com/krupapatkar/appsolution-admin/internal/search"
	"github.com/krupapatkar/appsolution-admin/internal/services"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker to apply payment gateway events and reindex the catalog`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
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

	g, ctx := errgroup.WithContext(ctx)

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

	// Initialize repositories and services
	productRepo := repositories.NewProductRepository(db, readOnlyDB)
	purchaseRepo := repositories.NewPurchaseRepository(db, readOnlyDB)
	productService := services.NewProductService(productRepo, cacheClient, elasticClient, metricsCollector, tracer)
	purchaseService := services.NewPurchaseService(purchaseRepo, productRepo, cacheClient, metricsCollector, tracer)

	// Initialize Azure Service Bus client
	azureBus, err := messaging.NewAzureServiceBus(cfg.Azure)
	if err != nil {
		return err
	}

	// Start the payment event processor
	g.Go(func() error {
		log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting payment event processor")
		return azureBus.ProcessMessages(ctx, purchaseService.ProcessPaymentMessage)
	})

	// Start the catalog reindex cron job. Index writes on the API path
	// are best-effort; this job catches anything missed.
	g.Go(func() error {
		log.Info().Msg("Starting catalog reindex job")

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(time.Hour),
			gocron.NewTask(func() {
				log.Info().Msg("Running catalog reindex job")
				if err := productService.ReindexCatalog(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to reindex catalog")
				}
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		<-ctx.Done()

		return scheduler.Shutdown()
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	if err := azureBus.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Service Bus client")
	}
	tracer.Close()

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}
