// internal/models/review.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a single marketplace review ingested by the review collaborator.
// The core only consumes the aggregate (average rating, counts) for the
// review-based score adjustment.
type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Rating    float64   `json:"rating" gorm:"type:decimal(2,1);not null"`
	Content   string    `json:"content" gorm:"type:text"`
	Author    string    `json:"author" gorm:"size:255"`
	Verified  bool      `json:"verified" gorm:"default:false"`
	Helpful   int       `json:"helpful" gorm:"default:0"`
	Date      time.Time `json:"date" gorm:"not null"`
}
