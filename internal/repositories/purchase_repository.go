package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
)

// PurchaseRepository provides access to the purchase and entitlement
// ledger
type PurchaseRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB, readOnlyDB *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create inserts a new purchase. A duplicate transaction id maps to
// Conflict via the unique index.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return writeErr(err, "failed to create purchase")
	}
	return nil
}

// GetByID gets a purchase by id
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.readOnlyDB.WithContext(ctx).First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, readErr(err, "failed to get purchase by id")
	}
	return &purchase, nil
}

// GetByTransactionID gets a purchase by its gateway transaction id
func (r *PurchaseRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.readOnlyDB.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&purchase).Error
	if err != nil {
		return nil, readErr(err, "failed to get purchase by transaction id")
	}
	return &purchase, nil
}

// List returns a filtered, searched, paginated page of purchases plus
// the total match count. Purchases have no public listing scope.
func (r *PurchaseRepository) List(ctx context.Context, params query.ListParams) ([]models.Purchase, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.Purchase{})

	if params.Status != "" {
		q = q.Where("payment_status = ?", params.Status)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		q = q.Where("LOWER(transaction_id) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?",
			term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count purchases")
	}

	var purchases []models.Purchase
	err := q.Order("created_at DESC, id DESC").
		Limit(params.Page.Size).
		Offset(params.Page.Offset()).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list purchases")
	}

	return purchases, total, nil
}

// UpdateStatus moves the payment status with an optimistic guard on
// the prior status.
func (r *PurchaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND payment_status = ?", id, from).
		Update("payment_status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update payment status")
	}
	if res.RowsAffected == 0 {
		var p models.Purchase
		err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errs.ErrNotFound, "purchase")
		}
		if err != nil {
			return errors.Wrap(err, "failed to recheck payment status")
		}
		return errors.Wrapf(errs.ErrConflict, "payment status changed concurrently to %s", p.PaymentStatus)
	}
	return nil
}

// RedeemDownload increments the download counter and stamps the last
// download time in a single statement, guarded on COMPLETED status.
// The store-side increment makes concurrent redemptions lose no
// updates.
func (r *PurchaseRepository) RedeemDownload(ctx context.Context, id uuid.UUID, now time.Time) (*models.Purchase, error) {
	res := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentCompleted).
		Updates(map[string]interface{}{
			"download_count": gorm.Expr("download_count + 1"),
			"last_download":  now,
		})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to redeem download")
	}
	if res.RowsAffected == 0 {
		var p models.Purchase
		err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errs.ErrNotFound, "purchase")
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to recheck purchase")
		}
		return nil, errors.Wrapf(errs.ErrNotEntitled, "purchase is %s", p.PaymentStatus)
	}

	var purchase models.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, readErr(err, "failed to reload purchase")
	}
	return &purchase, nil
}

// Stats derives the admin aggregates from the current collection in a
// single conditional-aggregate query; nothing is stored.
func (r *PurchaseRepository) Stats(ctx context.Context) (*models.PurchaseStats, error) {
	var stats models.PurchaseStats
	err := r.readOnlyDB.WithContext(ctx).Model(&models.Purchase{}).
		Select(`COALESCE(SUM(CASE WHEN payment_status = 'COMPLETED' THEN amount ELSE 0 END), 0) AS total_revenue,
			COUNT(CASE WHEN payment_status = 'COMPLETED' THEN 1 END) AS total_sales,
			COALESCE(SUM(download_count), 0) AS total_downloads,
			COUNT(CASE WHEN payment_status = 'PENDING' THEN 1 END) AS pending_orders`).
		Scan(&stats).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute purchase stats")
	}
	return &stats, nil
}
