// internal/models/signal.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TrendSignal is one observation of trendiness from one source at one point in
// time. Rows are immutable once written; the only permitted mutation is
// reassigning ProductID when a duplicate product is merged away.
type TrendSignal struct {
	BaseModel
	ProductID  uuid.UUID      `json:"product_id" gorm:"type:uuid;not null;index"`
	Source     SignalSource   `json:"source" gorm:"type:varchar(50);not null;index"`
	Value      float64        `json:"value" gorm:"type:decimal(12,2);not null"`
	Metadata   SignalMetadata `json:"metadata" gorm:"type:jsonb"`
	DetectedAt time.Time      `json:"detected_at" gorm:"not null;index"`
}

// SignalMetadata carries the source-specific payload of a signal. Each source
// populates only its own fields; Validate enforces that on ingest.
type SignalMetadata struct {
	// amazon_movers
	SalesJumpPercent *float64 `json:"sales_jump_percent,omitempty"`
	SalesRank        *int     `json:"sales_rank,omitempty"`
	CategoryRank     *int     `json:"category_rank,omitempty"`

	// reddit_skincare
	Upvotes   *int    `json:"upvotes,omitempty"`
	Comments  *int    `json:"comments,omitempty"`
	Subreddit *string `json:"subreddit,omitempty"`
	Permalink *string `json:"permalink,omitempty"`

	// google_trends
	InterestIndex *int    `json:"interest_index,omitempty"`
	Region        *string `json:"region,omitempty"`
}

func (m SignalMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *SignalMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = SignalMetadata{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, m)
}

func (m SignalMetadata) Validate(source SignalSource) error {
	switch source {
	case SignalSourceAmazonMovers:
		if m.Upvotes != nil || m.Comments != nil || m.Subreddit != nil || m.InterestIndex != nil {
			return errors.New("amazon_movers metadata may only carry sales fields")
		}
	case SignalSourceRedditSkincare:
		if m.SalesJumpPercent != nil || m.SalesRank != nil || m.InterestIndex != nil {
			return errors.New("reddit_skincare metadata may only carry discussion fields")
		}
	case SignalSourceGoogleTrends:
		if m.SalesJumpPercent != nil || m.SalesRank != nil || m.Upvotes != nil || m.Comments != nil {
			return errors.New("google_trends metadata may only carry interest fields")
		}
	default:
		return errors.New("unknown signal source")
	}
	return nil
}
