// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name          string         `json:"name" gorm:"size:255;not null;index"`
	Brand         *string        `json:"brand,omitempty" gorm:"size:255;index"`
	Category      *string        `json:"category,omitempty" gorm:"size:100;index"`
	Price         *float64       `json:"price,omitempty" gorm:"type:decimal(10,2)"`
	ImageURL      *string        `json:"image_url,omitempty" gorm:"type:text"`
	ImageStored   bool           `json:"image_stored" gorm:"default:false"`
	SourceURL     *string        `json:"source_url,omitempty" gorm:"type:text"`
	Keywords      pq.StringArray `json:"keywords,omitempty" gorm:"type:text[]"`
	TrendScore    int            `json:"trend_score" gorm:"default:0;index"`
	CurrentScore  float64        `json:"current_score" gorm:"type:decimal(5,2);default:0;index"`
	BaseScore     int            `json:"base_score" gorm:"default:0"`
	PeakScore     int            `json:"peak_score" gorm:"default:0"`
	DaysTrending  int            `json:"days_trending" gorm:"default:0"`
	Status        ProductStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	FirstDetected time.Time      `json:"first_detected" gorm:"not null;index"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`

	// Relationships
	Signals      []TrendSignal         `json:"signals,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews      []Review              `json:"reviews,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Content      *ProductContent       `json:"content,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ScoreHistory []ProductScoreHistory `json:"score_history,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// HasPermanentImage reports whether the product image has been copied into our
// own storage. Permanently stored images are never overwritten during a merge.
func (p *Product) HasPermanentImage() bool {
	return p.ImageStored && p.ImageURL != nil && *p.ImageURL != ""
}

// ProductContent holds editorial copy written by the content collaborator.
// This core never generates it; it only owns the row for cascade semantics.
type ProductContent struct {
	BaseModel
	ProductID uuid.UUID     `json:"product_id" gorm:"type:uuid;not null;uniqueIndex"`
	Title     string        `json:"title" gorm:"size:255"`
	Body      string        `json:"body" gorm:"type:text"`
	Status    ContentStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
}

// ProductScoreHistory is an append-only per-run snapshot of the displayed
// score, consumed by the admin UI sparkline.
type ProductScoreHistory struct {
	BaseModel
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index:idx_score_history_product_recorded"`
	CurrentScore float64   `json:"current_score" gorm:"type:decimal(5,2);not null"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"not null;index:idx_score_history_product_recorded"`
}
