package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/cache"
	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
	"github.com/krupapatkar/appsolution-admin/internal/workflow"
)

// PlaceholderProductName is shown when a purchase's product has been
// deleted from the catalog. The weak reference itself stays intact.
const PlaceholderProductName = "Product unavailable"

const statsCacheTTL = 30 * time.Second

// PurchaseService handles the purchase ledger and download
// entitlements
type PurchaseService struct {
	store    PurchaseStore
	products ProductStore
	cache    Cache
	metrics  *metrics.Metrics
	tracer   tracing.Tracer
	now      func() time.Time
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	store PurchaseStore,
	products ProductStore,
	cacheClient Cache,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *PurchaseService {
	return &PurchaseService{
		store:    store,
		products: products,
		cache:    cacheClient,
		metrics:  metricsCollector,
		tracer:   tracer,
		now:      time.Now,
	}
}

// RecordPurchaseInput carries the fields of a new order.
type RecordPurchaseInput struct {
	ProductID     uuid.UUID
	CustomerName  string
	CustomerEmail string
	Amount        float64
	PaymentMethod string
	TransactionID string // generated when empty
	Completed     bool   // gateway settled the payment atomically
}

// Record creates a purchase in PENDING state, or COMPLETED when the
// caller supplies the settled signal. The product must exist at order
// time; afterwards the reference is weak.
func (s *PurchaseService) Record(ctx context.Context, in RecordPurchaseInput) (*models.Purchase, error) {
	txn := s.tracer.StartTransaction("record-purchase")
	defer s.tracer.EndTransaction(txn)

	if in.CustomerName == "" {
		return nil, errs.Validation("customerName", "is required")
	}
	if in.CustomerEmail == "" {
		return nil, errs.Validation("customerEmail", "is required")
	}
	if in.Amount < 0 {
		return nil, errs.Validation("amount", "must be non-negative")
	}
	if in.ProductID == uuid.Nil {
		return nil, errs.Validation("productId", "is required")
	}

	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = "TXN-" + uuid.NewString()
	}

	status := models.PaymentPending
	if in.Completed {
		status = models.PaymentCompleted
	}

	purchase := &models.Purchase{
		ID:            uuid.New(),
		TransactionID: transactionID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		ProductID:     in.ProductID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: status,
	}

	if err := s.store.Create(ctx, purchase); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	if status == models.PaymentCompleted {
		s.countSale(ctx, purchase.ProductID)
	}
	s.metrics.IncrementCounter("purchases_recorded")
	s.invalidateStats(ctx)

	log.Info().
		Str("purchase_id", purchase.ID.String()).
		Str("transaction_id", purchase.TransactionID).
		Str("status", string(status)).
		Msg("Purchase recorded")
	return purchase, nil
}

// Get returns a purchase by id.
func (s *PurchaseService) Get(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	return s.store.GetByID(ctx, id)
}

// Transition moves the payment status. Completion bumps the product's
// sales counter; the amount is never touched on any transition.
// Setting the current status again is an idempotent no-op.
func (s *PurchaseService) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*models.Purchase, error) {
	purchase, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if string(purchase.PaymentStatus) == newStatus {
		return purchase, nil
	}
	if err := workflow.Validate(workflow.KindPurchase, string(purchase.PaymentStatus), newStatus); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, id, purchase.PaymentStatus, models.PaymentStatus(newStatus)); err != nil {
		return nil, err
	}
	purchase.PaymentStatus = models.PaymentStatus(newStatus)

	if purchase.PaymentStatus == models.PaymentCompleted {
		s.countSale(ctx, purchase.ProductID)
	}
	s.invalidateStats(ctx)

	log.Info().Str("purchase_id", id.String()).Str("status", newStatus).Msg("Purchase status changed")
	return purchase, nil
}

// DownloadGrant is a successful redemption plus the asset reference
// the customer downloads.
type DownloadGrant struct {
	models.Purchase
	DownloadURL *string `json:"downloadUrl,omitempty"`
}

// Redeem records one download against a completed purchase and hands
// back the product's download reference. The counter increment is
// atomic in the store, so concurrent redemptions of the same purchase
// never lose updates.
func (s *PurchaseService) Redeem(ctx context.Context, id uuid.UUID) (*DownloadGrant, error) {
	purchase, err := s.store.RedeemDownload(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	grant := &DownloadGrant{Purchase: *purchase}
	if product, err := s.products.GetByID(ctx, purchase.ProductID); err == nil {
		grant.DownloadURL = product.DownloadURL
	} else {
		// The product may have been deleted since purchase; the
		// redemption still counts.
		log.Warn().Err(err).Str("purchase_id", id.String()).Msg("Failed to resolve download reference")
	}

	s.metrics.IncrementCounter("downloads_redeemed")
	s.invalidateStats(ctx)
	log.Info().
		Str("purchase_id", id.String()).
		Int64("download_count", purchase.DownloadCount).
		Msg("Download redeemed")
	return grant, nil
}

// PurchaseView is a purchase with its product resolved for display.
type PurchaseView struct {
	models.Purchase
	ProductName string `json:"productName"`
}

// PurchasePage is a page of purchases with the pagination envelope.
type PurchasePage struct {
	Purchases   []PurchaseView `json:"purchases"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// ListAdmin returns a page of purchases with product names resolved at
// read time. A deleted product yields the placeholder, never an error.
func (s *PurchaseService) ListAdmin(ctx context.Context, params query.ListParams) (*PurchasePage, error) {
	if params.Status != "" && !workflow.IsStatus(workflow.KindPurchase, params.Status) {
		return nil, errs.Validation("status", "unknown status "+params.Status)
	}

	purchases, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(purchases))
	seen := make(map[uuid.UUID]bool, len(purchases))
	for _, p := range purchases {
		if !seen[p.ProductID] {
			seen[p.ProductID] = true
			ids = append(ids, p.ProductID)
		}
	}
	productsByID, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to resolve purchase products, using placeholders")
		productsByID = map[uuid.UUID]models.Product{}
	}

	views := make([]PurchaseView, len(purchases))
	for i, p := range purchases {
		name := PlaceholderProductName
		if product, ok := productsByID[p.ProductID]; ok {
			name = product.Name
		}
		views[i] = PurchaseView{Purchase: p, ProductName: name}
	}

	return &PurchasePage{
		Purchases:   views,
		Total:       total,
		TotalPages:  query.TotalPages(total, params.Page.Size),
		CurrentPage: params.Page.Number,
	}, nil
}

// Stats derives the admin aggregates, read through a short-lived
// cache.
func (s *PurchaseService) Stats(ctx context.Context) (*models.PurchaseStats, error) {
	key := cache.StatsCacheKey()
	if s.cache != nil {
		var cached models.PurchaseStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache purchase stats")
		}
	}
	return stats, nil
}

// PaymentEvent is the settlement notification the payment gateway
// relay drops on the queue.
type PaymentEvent struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// ProcessPaymentMessage applies a gateway settlement event to the
// matching purchase. Illegal transitions are logged and dropped so a
// stale event cannot poison the queue.
func (s *PurchaseService) ProcessPaymentMessage(ctx context.Context, message *azservicebus.ReceivedMessage) error {
	var event PaymentEvent
	if err := json.Unmarshal(message.Body, &event); err != nil {
		return errors.Wrap(err, "failed to unmarshal payment event")
	}
	if event.TransactionID == "" {
		return errors.New("payment event missing transaction id")
	}

	newStatus, err := mapGatewayStatus(event.Status)
	if err != nil {
		return err
	}

	purchase, err := s.store.GetByTransactionID(ctx, event.TransactionID)
	if err != nil {
		return errors.Wrap(err, "failed to look up purchase for payment event")
	}

	if _, err := s.Transition(ctx, purchase.ID, newStatus); err != nil {
		if errs.IsInvalidTransition(err) {
			log.Warn().
				Str("transaction_id", event.TransactionID).
				Str("status", event.Status).
				Msg("Dropping stale payment event")
			return nil
		}
		return err
	}

	s.metrics.IncrementCounter("payment_events_processed")
	return nil
}

func mapGatewayStatus(status string) (string, error) {
	switch strings.ToUpper(status) {
	case "COMPLETED", "SETTLED", "PAID":
		return string(models.PaymentCompleted), nil
	case "FAILED", "DECLINED":
		return string(models.PaymentFailed), nil
	case "REFUNDED":
		return string(models.PaymentRefunded), nil
	default:
		return "", errors.Errorf("unknown gateway status %q", status)
	}
}

func (s *PurchaseService) countSale(ctx context.Context, productID uuid.UUID) {
	if err := s.products.IncrementSales(ctx, productID); err != nil {
		// The product may have been deleted; the sale still counts.
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("Failed to increment product sales")
	}
}

func (s *PurchaseService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.StatsCacheKey()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate stats cache")
	}
}
