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

// ContactRepository provides access to contact inquiries
type ContactRepository struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB, readOnlyDB *gorm.DB) *ContactRepository {
	return &ContactRepository{
		db:         db,
		readOnlyDB: readOnlyDB,
	}
}

// Create inserts a new contact inquiry
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return writeErr(err, "failed to create contact")
	}
	return nil
}

// GetByID gets a contact by id
func (r *ContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.readOnlyDB.WithContext(ctx).First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, readErr(err, "failed to get contact by id")
	}
	return &contact, nil
}

// List returns a filtered, searched, paginated page of contacts plus
// the total match count. Contacts are admin-only.
func (r *ContactRepository) List(ctx context.Context, params query.ListParams) ([]models.Contact, int64, error) {
	q := r.readOnlyDB.WithContext(ctx).Model(&models.Contact{})

	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(message) LIKE ?", term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count contacts")
	}

	var contacts []models.Contact
	err := q.Order("created_at DESC, id DESC").
		Limit(params.Page.Size).
		Offset(params.Page.Offset()).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list contacts")
	}

	return contacts, total, nil
}

// UpdateStatus moves the handling status with an optimistic guard.
func (r *ContactRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.ContactStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update contact status")
	}
	if res.RowsAffected == 0 {
		var c models.Contact
		err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.Wrap(errs.ErrNotFound, "contact")
		}
		if err != nil {
			return errors.Wrap(err, "failed to recheck contact status")
		}
		return errors.Wrapf(errs.ErrConflict, "contact status changed concurrently to %s", c.Status)
	}
	return nil
}

// Delete soft-deletes the contact
func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete contact")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(errs.ErrNotFound, "contact")
	}
	return nil
}
