// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the id application-side when the database default is
// unavailable (the sqlite test driver has no gen_random_uuid).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusFlagged   ProductStatus = "flagged"
	ProductStatusPublished ProductStatus = "published"
)

type SignalSource string

const (
	SignalSourceAmazonMovers   SignalSource = "amazon_movers"
	SignalSourceRedditSkincare SignalSource = "reddit_skincare"
	SignalSourceGoogleTrends   SignalSource = "google_trends"
)

func (s SignalSource) Valid() bool {
	switch s {
	case SignalSourceAmazonMovers, SignalSourceRedditSkincare, SignalSourceGoogleTrends:
		return true
	}
	return false
}

type ContentStatus string

const (
	ContentStatusPending  ContentStatus = "pending"
	ContentStatusReady    ContentStatus = "ready"
	ContentStatusArchived ContentStatus = "archived"
)

type NotificationStatus string

const (
	NotificationStatusUnread NotificationStatus = "unread"
	NotificationStatusRead   NotificationStatus = "read"
)
