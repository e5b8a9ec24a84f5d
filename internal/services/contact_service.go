package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krupapatkar/appsolution-admin/internal/errs"
	"github.com/krupapatkar/appsolution-admin/internal/metrics"
	"github.com/krupapatkar/appsolution-admin/internal/models"
	"github.com/krupapatkar/appsolution-admin/internal/query"
	"github.com/krupapatkar/appsolution-admin/internal/tracing"
	"github.com/krupapatkar/appsolution-admin/internal/workflow"
)

// ContactService handles customer inquiries
type ContactService struct {
	store   ContactStore
	metrics *metrics.Metrics
	tracer  tracing.Tracer
}

// NewContactService creates a new contact service
func NewContactService(store ContactStore, metricsCollector *metrics.Metrics, tracer tracing.Tracer) *ContactService {
	return &ContactService{
		store:   store,
		metrics: metricsCollector,
		tracer:  tracer,
	}
}

// Submit logs a new inquiry from the public contact form.
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.Contact, error) {
	txn := s.tracer.StartTransaction("submit-contact")
	defer s.tracer.EndTransaction(txn)

	if name == "" {
		return nil, errs.Validation("name", "is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("email", "must be a valid email address")
	}
	if message == "" {
		return nil, errs.Validation("message", "is required")
	}

	contact := &models.Contact{
		ID:      uuid.New(),
		Name:    name,
		Email:   email,
		Message: message,
		Status:  models.ContactUnread,
	}

	if err := s.store.Create(ctx, contact); err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	s.metrics.IncrementCounter("contacts_submitted")
	log.Info().Str("contact_id", contact.ID.String()).Msg("Contact inquiry submitted")
	return contact, nil
}

// Get returns an inquiry by id.
func (s *ContactService) Get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return s.store.GetByID(ctx, id)
}

// ContactPage is a page of inquiries with the pagination envelope.
type ContactPage struct {
	Contacts    []models.Contact `json:"contacts"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// ListAdmin returns a filtered, searched page of inquiries.
func (s *ContactService) ListAdmin(ctx context.Context, params query.ListParams) (*ContactPage, error) {
	if params.Status != "" && !workflow.IsStatus(workflow.KindContact, params.Status) {
		return nil, errs.Validation("status", "unknown status "+params.Status)
	}

	contacts, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ContactPage{
		Contacts:    contacts,
		Total:       total,
		TotalPages:  query.TotalPages(total, params.Page.Size),
		CurrentPage: params.Page.Number,
	}, nil
}

// Transition moves the handling status. UNREAD may jump straight to
// REPLIED; REPLIED is terminal. Setting the current status again is an
// idempotent no-op.
func (s *ContactService) Transition(ctx context.Context, id uuid.UUID, newStatus string) (*models.Contact, error) {
	contact, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if string(contact.Status) == newStatus {
		return contact, nil
	}
	if err := workflow.Validate(workflow.KindContact, string(contact.Status), newStatus); err != nil {
		return nil, err
	}

	if err := s.store.UpdateStatus(ctx, id, contact.Status, models.ContactStatus(newStatus)); err != nil {
		return nil, err
	}
	contact.Status = models.ContactStatus(newStatus)

	log.Info().Str("contact_id", id.String()).Str("status", newStatus).Msg("Contact status changed")
	return contact, nil
}

// Delete removes the inquiry.
func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
