// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AdminUser struct {
	BaseModel
	Email        string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Name         string `json:"name" gorm:"size:255"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
}

func (u *AdminUser) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *AdminUser) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ScraperSource is an ingestion credential for one scraper collaborator.
// The raw API key is shown once at creation; only the bcrypt hash is stored.
type ScraperSource struct {
	BaseModel
	Name       string     `json:"name" gorm:"size:100;uniqueIndex;not null"`
	APIKeyHash string     `json:"-" gorm:"size:255;not null"`
	Active     bool       `json:"active" gorm:"default:true"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

func (s *ScraperSource) SetAPIKey(key string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.APIKeyHash = string(hash)
	return nil
}

func (s *ScraperSource) CheckAPIKey(key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.APIKeyHash), []byte(key)) == nil
}

type AdminNotification struct {
	BaseModel
	Type      string             `json:"type" gorm:"type:varchar(50);not null;index"`
	Title     string             `json:"title" gorm:"size:255;not null"`
	Message   string             `json:"message" gorm:"type:text;not null"`
	ProductID *uuid.UUID         `json:"product_id,omitempty" gorm:"type:uuid;index"`
	Status    NotificationStatus `json:"status" gorm:"type:varchar(20);default:'unread';index"`
	ReadAt    *time.Time         `json:"read_at,omitempty"`
}
