package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
)

// In-memory store fakes. They honor the same contracts the gorm
// repositories do, including the optimistic status guards and atomic
// counter increments, so the services can be tested without a database.

type fakeProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	seq      int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[uuid.UUID]models.Product)}
}

func (s *fakeProductStore) Create(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	product.CreatedAt = time.Unix(int64(s.seq), 0)
	s.products[product.ID] = *product
	return nil
}

func (s *fakeProductStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "product")
	}
	return &p, nil
}

func (s *fakeProductStore) GetActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.Status != models.ProductActive {
		return nil, errors.Wrap(errs.ErrNotFound, "product")
	}
	return &p, nil
}

func (s *fakeProductStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uuid.UUID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *fakeProductStore) List(ctx context.Context, params query.ListParams) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Product
	for _, p := range s.products {
		if params.Scope == query.ScopePublic && p.Status != models.ProductActive {
			continue
		}
		if params.Scope == query.ScopeAdmin && params.Status != "" && string(p.Status) != params.Status {
			continue
		}
		if params.Category != "" && params.Category != "all" && p.Category != params.Category {
			continue
		}
		if params.Search != "" {
			term := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(p.Name), term) &&
				!strings.Contains(strings.ToLower(p.Description), term) {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return pageSlice(matched, params.Page), total, nil
}

func (s *fakeProductStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "product")
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["description"]; ok {
		p.Description = v.(string)
	}
	if v, ok := fields["category"]; ok {
		p.Category = v.(string)
	}
	if v, ok := fields["price"]; ok {
		p.Price = v.(float64)
	}
	if v, ok := fields["status"]; ok {
		p.Status = models.ProductStatus(v.(string))
	}
	if v, ok := fields["image"]; ok {
		p.Image = v.(string)
	}
	if v, ok := fields["download_url"]; ok {
		u := v.(string)
		p.DownloadURL = &u
	}
	if v, ok := fields["screenshots"]; ok {
		p.Screenshots = v.(models.StringList)
	}
	if v, ok := fields["technologies"]; ok {
		p.Technologies = v.(models.StringList)
	}
	s.products[id] = p
	return &p, nil
}

func (s *fakeProductStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ProductStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, "product")
	}
	if p.Status != from {
		return errors.Wrapf(errs.ErrConflict, "product status changed concurrently to %s", p.Status)
	}
	p.Status = to
	s.products[id] = p
	return nil
}

func (s *fakeProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return errors.Wrap(errs.ErrNotFound, "product")
	}
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) IncrementSales(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Sales++
		s.products[id] = p
	}
	return nil
}

type fakeBlogStore struct {
	mu    sync.Mutex
	posts map[uuid.UUID]models.BlogPost
	seq   int
}

func newFakeBlogStore() *fakeBlogStore {
	return &fakeBlogStore{posts: make(map[uuid.UUID]models.BlogPost)}
}

func (s *fakeBlogStore) Create(ctx context.Context, post *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	post.CreatedAt = time.Unix(int64(s.seq), 0)
	s.posts[post.ID] = *post
	return nil
}

func (s *fakeBlogStore) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "blog post")
	}
	return &p, nil
}

func (s *fakeBlogStore) GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || p.Status != models.BlogPublished {
		return nil, errors.Wrap(errs.ErrNotFound, "blog post")
	}
	return &p, nil
}

func (s *fakeBlogStore) List(ctx context.Context, params query.ListParams) ([]models.BlogPost, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.BlogPost
	for _, p := range s.posts {
		if params.Scope == query.ScopePublic && p.Status != models.BlogPublished {
			continue
		}
		if params.Scope == query.ScopeAdmin && params.Status != "" && string(p.Status) != params.Status {
			continue
		}
		if params.Category != "" && params.Category != "all" && p.Category != params.Category {
			continue
		}
		if params.Search != "" {
			term := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(p.Title), term) &&
				!strings.Contains(strings.ToLower(p.Excerpt), term) &&
				!strings.Contains(strings.ToLower(p.Category), term) {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return pageSlice(matched, params.Page), total, nil
}

func (s *fakeBlogStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "blog post")
	}
	if v, ok := fields["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := fields["excerpt"]; ok {
		p.Excerpt = v.(string)
	}
	if v, ok := fields["content"]; ok {
		p.Content = v.(string)
	}
	if v, ok := fields["category"]; ok {
		p.Category = v.(string)
	}
	if v, ok := fields["status"]; ok {
		p.Status = models.BlogStatus(v.(string))
	}
	if v, ok := fields["image"]; ok {
		p.Image = v.(string)
	}
	if v, ok := fields["tags"]; ok {
		p.Tags = v.(models.StringList)
	}
	s.posts[id] = p
	return &p, nil
}

func (s *fakeBlogStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BlogStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, "blog post")
	}
	if p.Status != from {
		return errors.Wrapf(errs.ErrConflict, "blog post status changed concurrently to %s", p.Status)
	}
	p.Status = to
	s.posts[id] = p
	return nil
}

func (s *fakeBlogStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return errors.Wrap(errs.ErrNotFound, "blog post")
	}
	delete(s.posts, id)
	return nil
}

func (s *fakeBlogStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok || p.Status != models.BlogPublished {
		return errors.Wrap(errs.ErrNotFound, "blog post")
	}
	p.Views++
	s.posts[id] = p
	return nil
}

type fakePurchaseStore struct {
	mu        sync.Mutex
	purchases map[uuid.UUID]models.Purchase
	seq       int
}

func newFakePurchaseStore() *fakePurchaseStore {
	return &fakePurchaseStore{purchases: make(map[uuid.UUID]models.Purchase)}
}

func (s *fakePurchaseStore) Create(ctx context.Context, purchase *models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if p.TransactionID == purchase.TransactionID {
			return errors.Wrap(errs.ErrConflict, "transaction id already recorded")
		}
	}
	s.seq++
	purchase.CreatedAt = time.Unix(int64(s.seq), 0)
	s.purchases[purchase.ID] = *purchase
	return nil
}

func (s *fakePurchaseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "purchase")
	}
	return &p, nil
}

func (s *fakePurchaseStore) GetByTransactionID(ctx context.Context, transactionID string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.purchases {
		if p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, errors.Wrap(errs.ErrNotFound, "purchase")
}

func (s *fakePurchaseStore) List(ctx context.Context, params query.ListParams) ([]models.Purchase, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Purchase
	for _, p := range s.purchases {
		if params.Status != "" && string(p.PaymentStatus) != params.Status {
			continue
		}
		if params.Search != "" {
			term := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(p.TransactionID), term) &&
				!strings.Contains(strings.ToLower(p.CustomerName), term) &&
				!strings.Contains(strings.ToLower(p.CustomerEmail), term) {
				continue
			}
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return pageSlice(matched, params.Page), total, nil
}

func (s *fakePurchaseStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, "purchase")
	}
	if p.PaymentStatus != from {
		return errors.Wrapf(errs.ErrConflict, "purchase status changed concurrently to %s", p.PaymentStatus)
	}
	p.PaymentStatus = to
	s.purchases[id] = p
	return nil
}

func (s *fakePurchaseStore) RedeemDownload(ctx context.Context, id uuid.UUID, now time.Time) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "purchase")
	}
	if p.PaymentStatus != models.PaymentCompleted {
		return nil, errors.Wrapf(errs.ErrNotEntitled, "purchase is %s", p.PaymentStatus)
	}
	p.DownloadCount++
	p.LastDownload = &now
	s.purchases[id] = p
	return &p, nil
}

func (s *fakePurchaseStore) Stats(ctx context.Context) (*models.PurchaseStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.PurchaseStats{}
	for _, p := range s.purchases {
		stats.TotalDownloads += p.DownloadCount
		switch p.PaymentStatus {
		case models.PaymentCompleted:
			stats.TotalRevenue += p.Amount
			stats.TotalSales++
		case models.PaymentPending:
			stats.PendingOrders++
		}
	}
	return stats, nil
}

type fakeContactStore struct {
	mu       sync.Mutex
	contacts map[uuid.UUID]models.Contact
	seq      int
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[uuid.UUID]models.Contact)}
}

func (s *fakeContactStore) Create(ctx context.Context, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	contact.CreatedAt = time.Unix(int64(s.seq), 0)
	s.contacts[contact.ID] = *contact
	return nil
}

func (s *fakeContactStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, "contact")
	}
	return &c, nil
}

func (s *fakeContactStore) List(ctx context.Context, params query.ListParams) ([]models.Contact, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Contact
	for _, c := range s.contacts {
		if params.Status != "" && string(c.Status) != params.Status {
			continue
		}
		if params.Search != "" {
			term := strings.ToLower(params.Search)
			if !strings.Contains(strings.ToLower(c.Name), term) &&
				!strings.Contains(strings.ToLower(c.Email), term) &&
				!strings.Contains(strings.ToLower(c.Message), term) {
				continue
			}
		}
		matched = append(matched, c)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	return pageSlice(matched, params.Page), total, nil
}

func (s *fakeContactStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ContactStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, "contact")
	}
	if c.Status != from {
		return errors.Wrapf(errs.ErrConflict, "contact status changed concurrently to %s", c.Status)
	}
	c.Status = to
	s.contacts[id] = c
	return nil
}

func (s *fakeContactStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return errors.Wrap(errs.ErrNotFound, "contact")
	}
	delete(s.contacts, id)
	return nil
}

// fakeCache mimics the redis cache: values round-trip through JSON,
// so a cached copy is detached from the store's state.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return errors.New("key not found in cache")
	}
	c.hits++
	return json.Unmarshal(data, value)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

type fakeIdentity struct {
	names map[uuid.UUID]string
}

func (f *fakeIdentity) ResolveName(ctx context.Context, id uuid.UUID) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", errors.Wrap(errs.ErrNotFound, "author")
}

func pageSlice[T any](items []T, page query.Page) []T {
	if page.Size <= 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
