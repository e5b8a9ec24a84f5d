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

// BlogRepository provides access to blog posts
type BlogRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB, readOnlyDB *gorm.DB) *BlogRepository {
	return &BlogRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create inserts a new blog post
func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return writeErr(err, "failed to create blog post")
	}
	return nil
}

// GetByID gets a post by id regardless of status
func (r *BlogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.readOnlyDB.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		return nil, readErr(err, "failed to get blog post by id")
	}
	return &post, nil
}

// GetPublishedByID gets a post for public callers; drafts surface as
// not found.
func (r *BlogRepository) GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.readOnlyDB.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.BlogPublished).
		First(&post).Error
	if err != nil {
		return nil, readErr(err, "failed to get published blog post")
	}
	return &post, nil
}

// List returns a filtered, searched, paginated page of posts plus the
// total match count.
func (r *BlogRepository) List(ctx context.Context, params query.ListParams) ([]models.BlogPost, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.BlogPost{})

	if params.Scope == query.ScopePublic {
		q = q.Where("status = ?", models.BlogPublished)
	} else if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Category != "" && params.Category != "all" {
		q = q.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(category) LIKE ?", term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count blog posts")
	}

	var posts []models.BlogPost
	err := q.Order("created_at DESC, id DESC").
		Limit(params.Page.Size).
		Offset(params.Page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list blog posts")
	}

	return posts, total, nil
}

// Update applies a partial patch; only the supplied columns change.
func (r *BlogRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.BlogPost, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, writeErr(res.Error, "failed to update blog post")
		}
		if res.RowsAffected == 0 {
			return nil, errors.Wrap(errs.ErrNotFound, "blog post")
		}
	}

	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, readErr(err, "failed to reload blog post")
	}
	return &post, nil
}

// UpdateStatus moves the publish status with an optimistic guard.
func (r *BlogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BlogStatus) error {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update blog post status")
	}
	if res.RowsAffected == 0 {
		var p models.BlogPost
		err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errs.ErrNotFound, "blog post")
		}
		if err != nil {
			return errors.Wrap(err, "failed to recheck blog post status")
		}
		return errors.Wrapf(errs.ErrConflict, "blog post status changed concurrently to %s", p.Status)
	}
	return nil
}

// Delete soft-deletes the post
func (r *BlogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete blog post")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(errs.ErrNotFound, "blog post")
	}
	return nil
}

// IncrementViews bumps the view counter atomically in the store. Only
// published posts accumulate views.
func (r *BlogRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("id = ? AND status = ?", id, models.BlogPublished).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to increment blog post views")
	}
	return nil
}
