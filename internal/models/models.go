package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ProductStatus is the catalog visibility state of a product.
type ProductStatus string

const (
	ProductActive   ProductStatus = "ACTIVE"
	ProductInactive ProductStatus = "INACTIVE"
)

// BlogStatus is the publish state of a blog post.
type BlogStatus string

const (
	BlogDraft     BlogStatus = "DRAFT"
	BlogPublished BlogStatus = "PUBLISHED"
)

// PaymentStatus is the settlement state of a purchase.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// ContactStatus is the handling state of a contact inquiry.
type ContactStatus string

const (
	ContactUnread  ContactStatus = "UNREAD"
	ContactRead    ContactStatus = "READ"
	ContactReplied ContactStatus = "REPLIED"
)

// StringList is an ordered sequence of strings stored as a jsonb column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal string list")
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, (*[]string)(l)), "failed to unmarshal string list")
}

// GormDataType tells GORM the column type for migrations.
func (StringList) GormDataType() string {
	return "jsonb"
}

// Product is a downloadable software product in the catalog.
type Product struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `gorm:"not null" json:"description"`
	FullDescription *string        `gorm:"type:text" json:"fullDescription,omitempty"`
	Price           float64        `gorm:"not null" json:"price"`
	Category        string         `gorm:"not null;index" json:"category"`
	Technologies    StringList     `gorm:"type:jsonb" json:"technologies"`
	Features        StringList     `gorm:"type:jsonb" json:"features"`
	Requirements    StringList     `gorm:"type:jsonb" json:"requirements"`
	Support         StringList     `gorm:"type:jsonb" json:"support"`
	Image           string         `json:"image"`
	Screenshots     StringList     `gorm:"type:jsonb" json:"screenshots"`
	VideoURL        *string        `json:"videoUrl,omitempty"`
	DownloadURL     *string        `json:"downloadUrl,omitempty"`
	Sales           int64          `gorm:"not null;default:0" json:"sales"`
	Status          ProductStatus  `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status"`
}

// BlogPost is an article with a draft/publish workflow. The author is
// owned by the external identity service; only the id is stored here.
type BlogPost struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Title     string         `gorm:"not null" json:"title"`
	Excerpt   string         `gorm:"not null" json:"excerpt"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Category  string         `gorm:"not null;index" json:"category"`
	Tags      StringList     `gorm:"type:jsonb" json:"tags"`
	Image     string         `json:"image"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"authorId"`
	Views     int64          `gorm:"not null;default:0" json:"views"`
	Status    BlogStatus     `gorm:"type:varchar(16);not null;default:'DRAFT';index" json:"status"`
}

// Purchase records a customer order and its download entitlement.
// ProductID is a weak reference: deleting the product leaves the
// purchase intact and display falls back to a placeholder.
type Purchase struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	TransactionID string         `gorm:"not null;uniqueIndex" json:"transactionId"`
	CustomerName  string         `gorm:"not null" json:"customerName"`
	CustomerEmail string         `gorm:"not null;index" json:"customerEmail"`
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"productId"`
	Amount        float64        `gorm:"not null" json:"amount"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(16);not null;default:'PENDING';index" json:"paymentStatus"`
	DownloadCount int64          `gorm:"not null;default:0" json:"downloadCount"`
	LastDownload  *time.Time     `json:"lastDownload,omitempty"`
}

// Contact is a customer inquiry logged from the contact form.
type Contact struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;index" json:"email"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Status    ContactStatus  `gorm:"type:varchar(16);not null;default:'UNREAD';index" json:"status"`
}

// PurchaseStats are derived admin aggregates, computed at query time.
type PurchaseStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalSales     int64   `json:"totalSales"`
	TotalDownloads int64   `json:"totalDownloads"`
	PendingOrders  int64   `json:"pendingOrders"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Product{},
		&BlogPost{},
		&Purchase{},
		&Contact{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
