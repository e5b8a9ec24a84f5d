package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/config"
	"github.com/krupapatkar/appsolution-admin/internal/api/handlers"
	"github.com/krupapatkar/appsolution-admin/internal/api/middleware"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/services"
	"github.com/krupapatkar/appsolution-admin/internal/storage"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
)

// Server represents the HTTP server
type Server struct {
	config     config.Config
	router     *gin.Engine
	httpServer *http.Server

	products  *services.ProductService
	blog      *services.BlogService
	purchases *services.PurchaseService
	contacts  *services.ContactService
	blobs     storage.BlobStore
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.Config,
	products *services.ProductService,
	blog *services.BlogService,
	purchases *services.PurchaseService,
	contacts *services.ContactService,
	blobs storage.BlobStore,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *Server {
	server := &Server{
		config:    cfg,
		products:  products,
		blog:      blog,
		purchases: purchases,
		contacts:  contacts,
		blobs:     blobs,
		metrics:   metricsCollector,
		tracer:    tracer,
	}

	server.router = server.setupRouter()
	server.httpServer = &http.Server{
		Addr:    cfg.HTTPServerAddress,
		Handler: server.router,
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Tracing(s.tracer))

	handlers.NewProductHandler(s.products, s.blobs).RegisterRoutes(router)
	handlers.NewBlogHandler(s.blog, s.blobs).RegisterRoutes(router)
	handlers.NewPurchaseHandler(s.purchases).RegisterRoutes(router)
	handlers.NewContactHandler(s.contacts).RegisterRoutes(router)
	handlers.NewMetricsHandler(s.metrics).RegisterRoutes(router)

	// Uploaded assets are served as static files under the same refs
	// the entities store.
	router.Static("/uploads", s.config.Uploads.Dir)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.HTTPServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
