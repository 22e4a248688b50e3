// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
	"github.com/trendlens/trendlens-backend/internal/scoring"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

// Display threshold contract consumed by the trending-list UI. These cut
// points are fixed; the score calculator's output ranges stay compatible.
const (
	TrendingHotScore    = 70
	TrendingRisingScore = 50
	TrendingAllScore    = 40
	TrendingRecentDays  = 7
)

var ErrAlreadyPublished = errors.New("product is already published")

type ProductService struct {
	db  *gorm.DB
	cfg *config.Config
}

type ProductSearchParams struct {
	utils.ListParams
	Status   *models.ProductStatus `json:"status,omitempty"`
	Brand    *string               `json:"brand,omitempty"`
	Category *string               `json:"category,omitempty"`
	Search   string                `json:"search,omitempty"`
}

// ProductScoreView is the output contract handed to catalog consumers.
type ProductScoreView struct {
	ID               uuid.UUID            `json:"id"`
	Name             string               `json:"name"`
	Brand            *string              `json:"brand,omitempty"`
	CurrentScore     float64              `json:"current_score"`
	TrendScore       int                  `json:"trend_score"`
	PeakScore        int                  `json:"peak_score"`
	Status           models.ProductStatus `json:"status"`
	DaysTrending     int                  `json:"days_trending"`
	ReviewAdjustment float64              `json:"review_adjustment"`
}

func NewProductService(db *gorm.DB, cfg *config.Config) *ProductService {
	return &ProductService{db: db, cfg: cfg}
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Signals", func(db *gorm.DB) *gorm.DB {
		return db.Order("detected_at ASC, id ASC")
	}).Preload("Content").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

// GetProductScore returns the score view, including the review-based ranking
// adjustment computed from the product's stored reviews.
func (s *ProductService) GetProductScore(id uuid.UUID) (*ProductScoreView, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	stats, err := s.reviewStats(id)
	if err != nil {
		return nil, err
	}

	return &ProductScoreView{
		ID:               product.ID,
		Name:             product.Name,
		Brand:            product.Brand,
		CurrentScore:     product.CurrentScore,
		TrendScore:       product.TrendScore,
		PeakScore:        product.PeakScore,
		Status:           product.Status,
		DaysTrending:     product.DaysTrending,
		ReviewAdjustment: scoring.ReviewAdjustment(stats),
	}, nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}

	if params.Brand != nil {
		query = query.Where("LOWER(brand) = ?", strings.ToLower(*params.Brand))
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.ListParams, utils.CatalogSortFields)
	query = utils.ApplyPagination(query, params.ListParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetTrending returns products bucketed by the display threshold contract:
// hot >= 70, rising 50-69, all >= 40, recent = trending for more than 7 days.
func (s *ProductService) GetTrending(filter string, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.Product{})

	switch filter {
	case "hot":
		query = query.Where("current_score >= ?", TrendingHotScore)
	case "rising":
		query = query.Where("current_score >= ? AND current_score < ?", TrendingRisingScore, TrendingHotScore)
	case "recent":
		query = query.Where("days_trending > ?", TrendingRecentDays)
	default:
		query = query.Where("current_score >= ?", TrendingAllScore)
	}

	var products []models.Product
	if err := query.Order("current_score DESC, peak_score DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch trending products: %w", err)
	}

	return products, nil
}

// GetScoreHistory returns the last N days of score snapshots, oldest first,
// for sparkline rendering.
func (s *ProductService) GetScoreHistory(id uuid.UUID, days int) ([]models.ProductScoreHistory, error) {
	if days < 1 {
		days = TrendingRecentDays
	}

	var count int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, ErrProductNotFound
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	var history []models.ProductScoreHistory
	if err := s.db.Where("product_id = ? AND recorded_at >= ?", id, cutoff).
		Order("recorded_at ASC").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch score history: %w", err)
	}

	return history, nil
}

// Publish is the explicit editorial action that sets the terminal PUBLISHED
// state. Nothing in the scoring pipeline unsets it afterwards.
func (s *ProductService) Publish(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status == models.ProductStatusPublished {
		return nil, ErrAlreadyPublished
	}

	now := time.Now()
	product.Status = models.ProductStatusPublished
	product.PublishedAt = &now

	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to publish product: %w", err)
	}

	return &product, nil
}

// DeleteProduct removes a product and, via the cascade, everything it owns.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.TrendSignal{},
			&models.Review{},
			&models.ProductContent{},
			&models.ProductScoreHistory{},
		} {
			if err := tx.Where("product_id = ?", id).Delete(owned).Error; err != nil {
				return fmt.Errorf("failed to delete owned rows: %w", err)
			}
		}

		if err := tx.Unscoped().Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func (s *ProductService) reviewStats(productID uuid.UUID) (scoring.ReviewStats, error) {
	var agg struct {
		Avg   float64
		Total int64
	}

	if err := s.db.Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Scan(&agg).Error; err != nil {
		return scoring.ReviewStats{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	var recent int64
	recentCutoff := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.Review{}).
		Where("product_id = ? AND date >= ?", productID, recentCutoff).
		Count(&recent).Error; err != nil {
		return scoring.ReviewStats{}, fmt.Errorf("failed to count recent reviews: %w", err)
	}

	return scoring.ReviewStats{
		AverageRating: agg.Avg,
		TotalCount:    agg.Total,
		RecentCount:   recent,
		CountKnown:    true,
	}, nil
}
