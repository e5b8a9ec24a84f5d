package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
)

// ProductRepository provides access to catalog products
type ProductRepository struct {
	db         *gorm.DB // Write database
	readOnlyDB *gorm.DB // Read-only database
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ProductRepository {
	return &ProductRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return writeErr(err, "failed to create product")
	}
	return nil
}

// GetByID gets a product by id regardless of status
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.readOnlyDB.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, readErr(err, "failed to get product by id")
	}
	return &product, nil
}

// GetActiveByID gets a product by id for public callers; inactive
// products surface as not found.
func (r *ProductRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.readOnlyDB.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.ProductActive).
		First(&product).Error
	if err != nil {
		return nil, readErr(err, "failed to get active product by id")
	}
	return &product, nil
}

// GetByIDs resolves products by id for display joins. Missing ids are
// simply absent from the result, never an error.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var products []models.Product
	err := r.readOnlyDB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to get products by ids")
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

// List returns a filtered, searched, paginated page of products plus
// the total match count.
func (r *ProductRepository) List(ctx context.Context, params query.ListParams) ([]models.Product, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.Product{})

	if params.Scope == query.ScopePublic {
		q = q.Where("status = ?", models.ProductActive)
	} else if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Category != "" && params.Category != "all" {
		q = q.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	var products []models.Product
	err := q.Order("created_at DESC, id DESC").
		Limit(params.Page.Size).
		Offset(params.Page.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list products")
	}

	return products, total, nil
}

// Update applies a partial patch; only the supplied columns change.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, writeErr(res.Error, "failed to update product")
		}
		if res.RowsAffected == 0 {
			return nil, errors.Wrap(errs.ErrNotFound, "product")
		}
	}

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, readErr(err, "failed to reload product")
	}
	return &product, nil
}

// UpdateStatus moves the workflow status with an optimistic guard on
// the prior status so a concurrent transition loses cleanly.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProductStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update product status")
	}
	if res.RowsAffected == 0 {
		var p models.Product
		err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errs.ErrNotFound, "product")
		}
		if err != nil {
			return errors.Wrap(err, "failed to recheck product status")
		}
		return errors.Wrapf(errs.ErrConflict, "product status changed concurrently to %s", p.Status)
	}
	return nil
}

// Delete soft-deletes the catalog entry. Purchases keep their weak
// reference to the id.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(errs.ErrNotFound, "product")
	}
	return nil
}

// IncrementSales bumps the sales counter atomically in the store.
func (r *ProductRepository) IncrementSales(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("sales", gorm.Expr("sales + 1"))
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to increment product sales")
	}
	return nil
}
