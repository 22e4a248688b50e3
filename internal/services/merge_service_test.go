// internal/services/merge_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/models"
)

type MergeServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	mergeService *MergeService
}

func (s *MergeServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testConfig()
	s.mergeService = NewMergeService(s.db, cfg, NewNotificationService(s.db, cfg))
}

func (s *MergeServiceTestSuite) seedProduct(name string, firstDetected time.Time, mutate func(*models.Product)) *models.Product {
	product := &models.Product{
		Name:          name,
		Status:        models.ProductStatusDraft,
		FirstDetected: firstDetected,
	}
	if mutate != nil {
		mutate(product)
	}
	s.Require().NoError(s.db.Create(product).Error)
	return product
}

func (s *MergeServiceTestSuite) seedSignal(productID uuid.UUID, source models.SignalSource, value float64, detectedAt time.Time) {
	s.Require().NoError(s.db.Create(&models.TrendSignal{
		ProductID:  productID,
		Source:     source,
		Value:      value,
		DetectedAt: detectedAt,
	}).Error)
}

func (s *MergeServiceTestSuite) TestMergeTransfersSignalsAndReviews() {
	now := time.Now()
	canonical := s.seedProduct("CeraVe Moisturizing Cream", now.AddDate(0, 0, -5), nil)
	duplicate := s.seedProduct("Cerave Moisturizing Cream 16oz", now.AddDate(0, 0, -2), nil)

	s.seedSignal(canonical.ID, models.SignalSourceAmazonMovers, 240, now.Add(-time.Hour))
	s.seedSignal(duplicate.ID, models.SignalSourceRedditSkincare, 600, now.Add(-2*time.Hour))
	s.seedSignal(duplicate.ID, models.SignalSourceRedditSkincare, 350, now.Add(-time.Hour))

	s.Require().NoError(s.db.Create(&models.Review{
		ProductID: duplicate.ID,
		Rating:    4.5,
		Date:      now,
	}).Error)

	result, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
	s.Require().NoError(err)

	s.Equal(int64(2), result.SignalsTransferred)
	s.Equal(int64(1), result.ReviewsTransferred)

	// Signal conservation: canonical now owns all three
	var signalCount int64
	s.db.Model(&models.TrendSignal{}).Where("product_id = ?", canonical.ID).Count(&signalCount)
	s.Equal(int64(3), signalCount)

	// The duplicate is gone, soft-delete included
	var dupCount int64
	s.db.Unscoped().Model(&models.Product{}).Where("id = ?", duplicate.ID).Count(&dupCount)
	s.Equal(int64(0), dupCount)

	// Amazon 240 -> 12, reddit 600+350 -> capped 30
	s.Equal(42, result.Breakdown.Total)
}

func (s *MergeServiceTestSuite) TestMergeReconcilesFields() {
	now := time.Now()
	earlier := now.AddDate(0, 0, -20)

	canonical := s.seedProduct("CeraVe Cream", now.AddDate(0, 0, -5), func(p *models.Product) {
		p.TrendScore = 30
		p.CurrentScore = 25
		p.PeakScore = 45
	})
	duplicate := s.seedProduct("CeraVe Moisturizing Cream 16oz", earlier, func(p *models.Product) {
		p.Brand = strPtr("CeraVe")
		p.Price = float64Ptr(18.99)
		p.TrendScore = 55
		p.CurrentScore = 50
		p.PeakScore = 55
	})

	s.seedSignal(duplicate.ID, models.SignalSourceAmazonMovers, 240, now)

	result, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
	s.Require().NoError(err)

	var merged models.Product
	s.Require().NoError(s.db.First(&merged, canonical.ID).Error)

	s.Equal("CeraVe Moisturizing Cream 16oz", merged.Name, "longer name wins")
	s.Require().NotNil(merged.Brand)
	s.Equal("CeraVe", *merged.Brand)
	s.Require().NotNil(merged.Price)
	s.Equal(18.99, *merged.Price)
	s.True(merged.FirstDetected.Equal(earlier), "earlier detection wins")
	s.GreaterOrEqual(merged.PeakScore, 55, "scores never go down in a merge")
	s.GreaterOrEqual(merged.CurrentScore, 50.0)
	s.GreaterOrEqual(float64(result.Breakdown.Total), 0.0)
}

func (s *MergeServiceTestSuite) TestMergeKeepsPermanentImage() {
	now := time.Now()
	canonical := s.seedProduct("CeraVe Cream", now, func(p *models.Product) {
		p.ImageURL = strPtr("https://cdn.trendlens.io/products/abc.jpg")
		p.ImageStored = true
	})
	duplicate := s.seedProduct("CeraVe Cream 16oz", now, func(p *models.Product) {
		p.ImageURL = strPtr("https://images.example.com/scraped.jpg")
	})

	_, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
	s.Require().NoError(err)

	var merged models.Product
	s.Require().NoError(s.db.First(&merged, canonical.ID).Error)
	s.Equal("https://cdn.trendlens.io/products/abc.jpg", *merged.ImageURL)
	s.True(merged.ImageStored)
}

func (s *MergeServiceTestSuite) TestMergePrefersStoredImageOverScraped() {
	now := time.Now()
	canonical := s.seedProduct("CeraVe Cream", now, func(p *models.Product) {
		p.ImageURL = strPtr("https://images.example.com/scraped.jpg")
	})
	duplicate := s.seedProduct("CeraVe Cream 16oz", now, func(p *models.Product) {
		p.ImageURL = strPtr("https://cdn.trendlens.io/products/stored.jpg")
		p.ImageStored = true
	})

	_, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
	s.Require().NoError(err)

	var merged models.Product
	s.Require().NoError(s.db.First(&merged, canonical.ID).Error)
	s.Equal("https://cdn.trendlens.io/products/stored.jpg", *merged.ImageURL)
	s.True(merged.ImageStored)
}

func (s *MergeServiceTestSuite) TestMergeFlagsWhenCombinedScoreCrossesThreshold() {
	now := time.Now()
	canonical := s.seedProduct("CeraVe Cream", now, nil)
	duplicate := s.seedProduct("CeraVe Cream 16oz", now, nil)

	s.seedSignal(canonical.ID, models.SignalSourceAmazonMovers, 1300, now) // 65 points
	s.seedSignal(duplicate.ID, models.SignalSourceRedditSkincare, 600, now)

	result, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
	s.Require().NoError(err)

	s.Equal(85, result.Breakdown.Total)
	s.Equal(models.ProductStatusFlagged, result.Status)
}

func (s *MergeServiceTestSuite) TestSelfMergeRejected() {
	now := time.Now()
	product := s.seedProduct("CeraVe Cream", now, nil)

	_, err := s.mergeService.MergeProducts(product.ID, product.ID)
	s.ErrorIs(err, ErrSelfMerge)

	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	s.Equal(int64(1), count)
}

func (s *MergeServiceTestSuite) TestMergeMissingProductRejectedWithoutSideEffects() {
	now := time.Now()
	canonical := s.seedProduct("CeraVe Cream", now, nil)
	s.seedSignal(canonical.ID, models.SignalSourceAmazonMovers, 240, now)

	_, err := s.mergeService.MergeProducts(uuid.New(), canonical.ID)
	s.ErrorIs(err, ErrProductNotFound)

	_, err = s.mergeService.MergeProducts(canonical.ID, uuid.New())
	s.ErrorIs(err, ErrProductNotFound)

	// Nothing moved or changed
	var product models.Product
	s.Require().NoError(s.db.First(&product, canonical.ID).Error)
	s.Equal(0, product.TrendScore)

	var signalCount int64
	s.db.Model(&models.TrendSignal{}).Where("product_id = ?", canonical.ID).Count(&signalCount)
	s.Equal(int64(1), signalCount)
}

func TestMergeServiceSuite(t *testing.T) {
	suite.Run(t, new(MergeServiceTestSuite))
}
