// internal/services/signal_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/matching"
	"github.com/trendlens/trendlens-backend/internal/models"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidSource   = errors.New("unknown signal source")
)

type SignalService struct {
	db  *gorm.DB
	cfg *config.Config
}

type NewProductRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=255"`
	Brand     *string  `json:"brand,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	ImageURL  *string  `json:"image_url,omitempty"`
	SourceURL *string  `json:"source_url,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

type IngestSignalRequest struct {
	ProductID  *uuid.UUID            `json:"product_id,omitempty"`
	Product    *NewProductRequest    `json:"product,omitempty"`
	Source     models.SignalSource   `json:"source" validate:"required,signal_source"`
	Value      float64               `json:"value"`
	Metadata   models.SignalMetadata `json:"metadata,omitempty"`
	DetectedAt time.Time             `json:"detected_at" validate:"required"`
}

type IngestReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    float64   `json:"rating" validate:"required,min=1,max=5"`
	Content   string    `json:"content,omitempty"`
	Author    string    `json:"author,omitempty"`
	Verified  bool      `json:"verified,omitempty"`
	Helpful   int       `json:"helpful,omitempty" validate:"omitempty,min=0"`
	Date      time.Time `json:"date" validate:"required"`
}

type IngestResult struct {
	Product        *models.Product     `json:"product"`
	Signal         *models.TrendSignal `json:"signal"`
	ProductCreated bool                `json:"product_created"`
}

func NewSignalService(db *gorm.DB, cfg *config.Config) *SignalService {
	return &SignalService{db: db, cfg: cfg}
}

// IngestSignal appends one observation from a scraper collaborator. When the
// request names no existing product, the owning product is resolved by fuzzy
// identity match or created as a DRAFT with first_detected = detected_at.
func (s *SignalService) IngestSignal(req *IngestSignalRequest) (*IngestResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.Source.Valid() {
		return nil, ErrInvalidSource
	}

	if err := req.Metadata.Validate(req.Source); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}

	if req.ProductID == nil && req.Product == nil {
		return nil, errors.New("either product_id or product descriptor is required")
	}

	var result IngestResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, created, err := s.resolveProduct(tx, req)
		if err != nil {
			return err
		}

		signal := &models.TrendSignal{
			ProductID:  product.ID,
			Source:     req.Source,
			Value:      req.Value,
			Metadata:   req.Metadata,
			DetectedAt: req.DetectedAt,
		}

		if err := tx.Create(signal).Error; err != nil {
			return fmt.Errorf("failed to store signal: %w", err)
		}

		result = IngestResult{Product: product, Signal: signal, ProductCreated: created}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &result, nil
}

// IngestReview stores a marketplace review for the review-adjustment axis.
func (s *SignalService) IngestReview(req *IngestReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	review := &models.Review{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Content:   req.Content,
		Author:    req.Author,
		Verified:  req.Verified,
		Helpful:   req.Helpful,
		Date:      req.Date,
	}

	if err := s.db.Create(review).Error; err != nil {
		return nil, fmt.Errorf("failed to store review: %w", err)
	}

	return review, nil
}

func (s *SignalService) resolveProduct(tx *gorm.DB, req *IngestSignalRequest) (*models.Product, bool, error) {
	if req.ProductID != nil {
		var product models.Product
		if err := tx.First(&product, *req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, ErrProductNotFound
			}
			return nil, false, fmt.Errorf("database error: %w", err)
		}
		return &product, false, nil
	}

	// Identity resolution before creation keeps independent discoveries of the
	// same item on one record when the names line up well enough.
	if existing, err := s.findExisting(tx, req.Product); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	product := &models.Product{
		Name:          req.Product.Name,
		Brand:         req.Product.Brand,
		Category:      req.Product.Category,
		Price:         req.Product.Price,
		ImageURL:      req.Product.ImageURL,
		SourceURL:     req.Product.SourceURL,
		Keywords:      req.Product.Keywords,
		Status:        models.ProductStatusDraft,
		FirstDetected: req.DetectedAt,
	}

	if err := tx.Create(product).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create product: %w", err)
	}

	return product, true, nil
}

func (s *SignalService) findExisting(tx *gorm.DB, desc *NewProductRequest) (*models.Product, error) {
	query := tx.Model(&models.Product{})
	if desc.Category != nil {
		query = query.Where("category = ? OR category IS NULL", *desc.Category)
	}

	var candidates []models.Product
	if err := query.Limit(500).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to load match candidates: %w", err)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	target := matching.Identity{Name: desc.Name}
	if desc.Brand != nil {
		target.Brand = *desc.Brand
	}

	pool := make([]matching.Identity, len(candidates))
	for i, p := range candidates {
		pool[i] = matching.Identity{Name: p.Name}
		if p.Brand != nil {
			pool[i].Brand = *p.Brand
		}
	}

	idx, _ := matching.BestMatch(target, pool, s.cfg.Scoring.MatchThreshold)
	if idx < 0 {
		return nil, nil
	}

	return &candidates[idx], nil
}

// loadSignals returns a product's full signal set in deterministic order.
// The Amazon component picks the first positive jump, so ordering matters.
func loadSignals(tx *gorm.DB, productID uuid.UUID) ([]models.TrendSignal, error) {
	var signals []models.TrendSignal
	if err := tx.Where("product_id = ?", productID).
		Order("detected_at ASC, id ASC").
		Find(&signals).Error; err != nil {
		return nil, fmt.Errorf("failed to load signals: %w", err)
	}
	return signals, nil
}
