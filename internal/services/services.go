// Package services holds the business logic between the HTTP layer
// and the repositories: validation, workflow transitions, entitlement
// accounting, caching and search indexing.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
)

// Cache is the subset of the redis cache the services use.
type Cache interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// IdentityResolver resolves an author id to a display name. Identity
// is owned by an external collaborator; resolution is best-effort.
type IdentityResolver interface {
	ResolveName(ctx context.Context, id uuid.UUID) (string, error)
}

// ProductStore is the repository contract the services depend on.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	List(ctx context.Context, params query.ListParams) ([]models.Product, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProductStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementSales(ctx context.Context, id uuid.UUID) error
}

// BlogStore is the repository contract for blog posts.
type BlogStore interface {
	Create(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	List(ctx context.Context, params query.ListParams) ([]models.BlogPost, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.BlogPost, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BlogStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

// PurchaseStore is the repository contract for the purchase ledger.
type PurchaseStore interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*models.Purchase, error)
	List(ctx context.Context, params query.ListParams) ([]models.Purchase, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) error
	RedeemDownload(ctx context.Context, id uuid.UUID, now time.Time) (*models.Purchase, error)
	Stats(ctx context.Context) (*models.PurchaseStats, error)
}

// ContactStore is the repository contract for contact inquiries.
type ContactStore interface {
	Create(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	List(ctx context.Context, params query.ListParams) ([]models.Contact, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ContactStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
