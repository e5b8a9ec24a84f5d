package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/assets"
	"github.com/krupapatkar/appsolution-admin/internal/cache"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/search"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
	"github.com/krupapatkar/appsolution-admin/internal/workflow"
)

const productCacheTTL = 5 * time.Minute

// ProductService handles catalog business logic
type ProductService struct {
	store   ProductStore
	cache   Cache
	search  *search.ElasticClient
	metrics *metrics.Metrics
	tracer  tracing.Tracer
}

// NewProductService creates a new product service
func NewProductService(
	store ProductStore,
	cacheClient Cache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *ProductService {
	return &ProductService{
		store:   store,
		cache:   cacheClient,
		search:  elasticClient,
		metrics: metricsCollector,
		tracer:  tracer,
	}
}

// ProductPage is a page of products with the pagination envelope the
// storefront expects.
type ProductPage struct {
	Products    []models.Product `json:"products"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// List returns a filtered, searched page of products. Public scope is
// pinned to ACTIVE; admin scope sees every status unless one is given.
func (s *ProductService) List(ctx context.Context, params query.ListParams) (*ProductPage, error) {
	if params.Status != "" && !workflow.IsStatus(workflow.KindProduct, params.Status) {
		return nil, errs.Validation("status", "unknown status "+params.Status)
	}

	products, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:    products,
		Total:       total,
		TotalPages:  query.TotalPages(total, params.Page.Size),
		CurrentPage: params.Page.Number,
	}, nil
}

// GetPublic returns an active product, read through the cache.
func (s *ProductService) GetPublic(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := cache.ProductCacheKey(id)
	if s.cache != nil {
		var cached models.Product
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.store.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, product, productCacheTTL); err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("Failed to cache product")
		}
	}
	return product, nil
}

// GetAdmin returns a product regardless of status.
func (s *ProductService) GetAdmin(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.store.GetByID(ctx, id)
}

// CreateProductInput carries the validated fields for a new product.
type CreateProductInput struct {
	Name            string
	Description     string
	FullDescription *string
	Price           float64
	Category        string
	Technologies    models.StringList
	Features        models.StringList
	Requirements    models.StringList
	Support         models.StringList
	VideoURL        *string
	DownloadURL     *string
}

// Create validates and inserts a new product, then attaches assets and
// mirrors the document into the search index.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput, files assets.ProductAssets) (*models.Product, error) {
	txn := s.tracer.StartTransaction("create-product")
	defer s.tracer.EndTransaction(txn)

	if in.Name == "" {
		return nil, errs.Validation("name", "is required")
	}
	if in.Description == "" {
		return nil, errs.Validation("description", "is required")
	}
	if in.Category == "" {
		return nil, errs.Validation("category", "is required")
	}
	if in.Price < 0 {
		return nil, errs.Validation("price", "must be non-negative")
	}

	product := &models.Product{
		ID:              uuid.New(),
		Name:            in.Name,
		Description:     in.Description,
		FullDescription: in.FullDescription,
		Price:           in.Price,
		Category:        in.Category,
		Technologies:    in.Technologies,
		Features:        in.Features,
		Requirements:    in.Requirements,
		Support:         in.Support,
		VideoURL:        in.VideoURL,
		DownloadURL:     in.DownloadURL,
		Status:          models.ProductActive,
	}
	// An uploaded download file wins over the plain downloadUrl field.
	files.ApplyToProduct(product)

	if err := s.store.Create(ctx, product); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.metrics.IncrementCounter("products_created")
	s.indexProduct(ctx, product)

	log.Info().Str("product_id", product.ID.String()).Str("name", product.Name).Msg("Product created")
	return product, nil
}

// UpdateProductInput carries a partial patch; nil fields are left
// unchanged.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	FullDescription *string
	Price           *float64
	Category        *string
	Technologies    *models.StringList
	Features        *models.StringList
	Requirements    *models.StringList
	Support         *models.StringList
	VideoURL        *string
	DownloadURL     *string
	Status          *string
}

// Update applies a partial patch plus any newly uploaded assets.
// Status arriving through the generic update path is the legacy
// fast-path bypass; it is validated for membership and logged, but
// workflow-aware callers should use Transition.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput, files assets.ProductAssets) (*models.Product, error) {
	fields := make(map[string]interface{})
	if in.Name != nil {
		if *in.Name == "" {
			return nil, errs.Validation("name", "must not be empty")
		}
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.FullDescription != nil {
		fields["full_description"] = *in.FullDescription
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, errs.Validation("price", "must be non-negative")
		}
		fields["price"] = *in.Price
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.Technologies != nil {
		fields["technologies"] = *in.Technologies
	}
	if in.Features != nil {
		fields["features"] = *in.Features
	}
	if in.Requirements != nil {
		fields["requirements"] = *in.Requirements
	}
	if in.Support != nil {
		fields["support"] = *in.Support
	}
	if in.VideoURL != nil {
		fields["video_url"] = *in.VideoURL
	}
	if in.DownloadURL != nil {
		fields["download_url"] = *in.DownloadURL
	}
	if in.Status != nil {
		if !workflow.IsStatus(workflow.KindProduct, *in.Status) {
			return nil, errs.Validation("status", "unknown status "+*in.Status)
		}
		log.Warn().Str("product_id", id.String()).Str("status", *in.Status).
			Msg("Product status overwritten through generic update")
		fields["status"] = *in.Status
	}
	files.ApplyToFields(fields)

	product, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.indexProduct(ctx, product)
	return product, nil
}

// Transition moves the product's workflow status. Setting the current
// status again is an idempotent no-op.
func (s *ProductService) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*models.Product, error) {
	product, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if string(product.Status) == newStatus {
		return product, nil
	}
	if err := workflow.Validate(workflow.KindProduct, string(product.Status), newStatus); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, id, product.Status, models.ProductStatus(newStatus)); err != nil {
		return nil, err
	}
	product.Status = models.ProductStatus(newStatus)

	s.invalidate(ctx, id)
	s.indexProduct(ctx, product)

	log.Info().Str("product_id", id.String()).Str("status", newStatus).Msg("Product status changed")
	return product, nil
}

// Delete removes the catalog entry. Existing purchases keep their weak
// reference and fall back to a placeholder at display time.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	if s.search != nil {
		if err := s.search.DeleteProduct(ctx, id); err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("Failed to remove product from search index")
		}
	}

	log.Info().Str("product_id", id.String()).Msg("Product deleted")
	return nil
}

// ReindexCatalog walks the whole catalog and reindexes every product.
// Used by the worker as a fallback for missed index writes.
func (s *ProductService) ReindexCatalog(ctx context.Context) error {
	if s.search == nil {
		return nil
	}

	page := 1
	for {
		products, total, err := s.store.List(ctx, query.ListParams{
			Scope: query.ScopeAdmin,
			Page:  query.Page{Number: page, Size: 200},
		})
		if err != nil {
			return err
		}
		for i := range products {
			if err := s.search.IndexProduct(ctx, &products[i]); err != nil {
				log.Warn().Err(err).Str("product_id", products[i].ID.String()).Msg("Failed to reindex product")
			}
		}
		if int64(page*200) >= total || len(products) == 0 {
			return nil
		}
		page++
	}
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ProductCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("Failed to invalidate product cache")
	}
}

// indexProduct mirrors the product into Elasticsearch. Indexing is
// best-effort; the reindex job catches anything missed here.
func (s *ProductService) indexProduct(ctx context.Context, product *models.Product) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexProduct(ctx, product); err != nil {
		log.Warn().Err(err).Str("product_id", product.ID.String()).Msg("Failed to index product")
	}
}
