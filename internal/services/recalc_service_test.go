// internal/services/recalc_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/models"
)

type RecalcServiceTestSuite struct {
	suite.Suite
	db            *gorm.DB
	recalcService *RecalcService
}

func (s *RecalcServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := testConfig()
	notificationService := NewNotificationService(s.db, cfg)
	mergeService := NewMergeService(s.db, cfg, notificationService)
	s.recalcService = NewRecalcService(s.db, cfg, mergeService, notificationService)
}

func (s *RecalcServiceTestSuite) seedProductWithSignal(name string, status models.ProductStatus, firstDetected time.Time, source models.SignalSource, value float64) *models.Product {
	product := &models.Product{
		Name:          name,
		Status:        status,
		FirstDetected: firstDetected,
	}
	s.Require().NoError(s.db.Create(product).Error)
	s.Require().NoError(s.db.Create(&models.TrendSignal{
		ProductID:  product.ID,
		Source:     source,
		Value:      value,
		DetectedAt: firstDetected,
	}).Error)
	return product
}

func (s *RecalcServiceTestSuite) TestRecalculateComputesScoreAndHistory() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, now, models.SignalSourceAmazonMovers, 240)

	report, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	s.Equal(1, report.Recalculated)
	s.Equal(1, report.Updated)
	s.Empty(report.Errors)

	var updated models.Product
	s.Require().NoError(s.db.First(&updated, product.ID).Error)
	s.Equal(12, updated.TrendScore)
	s.Equal(12, updated.BaseScore)
	s.Equal(12, updated.PeakScore)
	s.Equal(12.0, updated.CurrentScore)
	s.Equal(models.ProductStatusDraft, updated.Status)

	var historyCount int64
	s.db.Model(&models.ProductScoreHistory{}).Where("product_id = ?", product.ID).Count(&historyCount)
	s.Equal(int64(1), historyCount)
}

func (s *RecalcServiceTestSuite) TestRecalculateIsIdempotent() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, now, models.SignalSourceAmazonMovers, 1300)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var first models.Product
	s.Require().NoError(s.db.First(&first, product.ID).Error)
	s.Equal(models.ProductStatusFlagged, first.Status)

	// Re-running with an unchanged signal set changes neither score nor status
	_, err = s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var second models.Product
	s.Require().NoError(s.db.First(&second, product.ID).Error)
	s.Equal(first.CurrentScore, second.CurrentScore)
	s.Equal(first.TrendScore, second.TrendScore)
	s.Equal(first.Status, second.Status)

	// One history row per invocation, no more
	var historyCount int64
	s.db.Model(&models.ProductScoreHistory{}).Where("product_id = ?", product.ID).Count(&historyCount)
	s.Equal(int64(2), historyCount)
}

func (s *RecalcServiceTestSuite) TestRecalculateAppliesDecay() {
	// 13 days trending with a 3-day grace and 4% daily decay loses 40%
	firstDetected := time.Now().AddDate(0, 0, -13)
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, firstDetected, models.SignalSourceAmazonMovers, 1000)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var updated models.Product
	s.Require().NoError(s.db.First(&updated, product.ID).Error)

	s.Equal(50, updated.TrendScore)
	s.Equal(50, updated.BaseScore, "raw composite keeps provenance")
	s.Equal(50, updated.PeakScore)
	s.Equal(13, updated.DaysTrending)
	s.InDelta(30.0, updated.CurrentScore, 0.01, "displayed score decays")
}

func (s *RecalcServiceTestSuite) TestPublishedProductNeverDemoted() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusPublished, now, models.SignalSourceRedditSkincare, 50)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var updated models.Product
	s.Require().NoError(s.db.First(&updated, product.ID).Error)
	s.Equal(models.ProductStatusPublished, updated.Status)
	s.Equal(0, updated.TrendScore)
}

func (s *RecalcServiceTestSuite) TestFlaggedProductRevertsBelowThreshold() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusFlagged, now, models.SignalSourceAmazonMovers, 240)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var updated models.Product
	s.Require().NoError(s.db.First(&updated, product.ID).Error)
	s.Equal(models.ProductStatusDraft, updated.Status)
}

func (s *RecalcServiceTestSuite) TestFlaggingCreatesNotification() {
	now := time.Now()
	s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, now, models.SignalSourceAmazonMovers, 1300)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var notifications []models.AdminNotification
	s.Require().NoError(s.db.Find(&notifications).Error)
	s.Require().Len(notifications, 1)
	s.Equal("product_flagged", notifications[0].Type)
}

func (s *RecalcServiceTestSuite) TestProductsWithoutSignalsAreSkipped() {
	s.Require().NoError(s.db.Create(&models.Product{
		Name:          "Silent Product",
		Status:        models.ProductStatusDraft,
		FirstDetected: time.Now(),
	}).Error)

	report, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)
	s.Equal(0, report.Recalculated)
}

func (s *RecalcServiceTestSuite) TestHistoryRetentionTrim() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, now, models.SignalSourceAmazonMovers, 240)

	stale := &models.ProductScoreHistory{
		ProductID:    product.ID,
		CurrentScore: 40,
		RecordedAt:   now.AddDate(0, 0, -40),
	}
	s.Require().NoError(s.db.Create(stale).Error)

	_, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	var staleCount int64
	s.db.Model(&models.ProductScoreHistory{}).Where("id = ?", stale.ID).Count(&staleCount)
	s.Equal(int64(0), staleCount, "snapshots past the retention window are trimmed")

	var remaining int64
	s.db.Model(&models.ProductScoreHistory{}).Where("product_id = ?", product.ID).Count(&remaining)
	s.Equal(int64(1), remaining)
}

func (s *RecalcServiceTestSuite) TestDedupeMergesBestMatch() {
	now := time.Now()
	canonical := s.seedProductWithSignal("CeraVe Moisturizing Cream", models.ProductStatusDraft, now.AddDate(0, 0, -10), models.SignalSourceAmazonMovers, 240)
	duplicate := s.seedProductWithSignal("Cerave Moisturizing Cream 16oz", models.ProductStatusDraft, now, models.SignalSourceRedditSkincare, 600)
	unrelated := s.seedProductWithSignal("The Ordinary Niacinamide Serum", models.ProductStatusDraft, now, models.SignalSourceRedditSkincare, 400)

	report, err := s.recalcService.DedupeAll()
	s.Require().NoError(err)

	s.Equal(3, report.Examined)
	s.Require().Len(report.Merged, 1)
	s.Equal(canonical.ID, report.Merged[0].TargetID, "the older record stays canonical")
	s.Equal(duplicate.ID, report.Merged[0].DuplicateID)

	var dupCount int64
	s.db.Unscoped().Model(&models.Product{}).Where("id = ?", duplicate.ID).Count(&dupCount)
	s.Equal(int64(0), dupCount)

	var untouched models.Product
	s.Require().NoError(s.db.First(&untouched, unrelated.ID).Error)
}

func (s *RecalcServiceTestSuite) TestBatchContinuesPastMissingProduct() {
	now := time.Now()
	product := s.seedProductWithSignal("CeraVe Cream", models.ProductStatusDraft, now, models.SignalSourceAmazonMovers, 240)

	// An orphaned signal simulates a product deleted mid-batch
	s.Require().NoError(s.db.Create(&models.TrendSignal{
		ProductID:  uuid.New(),
		Source:     models.SignalSourceAmazonMovers,
		Value:      100,
		DetectedAt: now,
	}).Error)

	report, err := s.recalcService.RecalculateAll()
	s.Require().NoError(err)

	s.Equal(1, report.Recalculated)
	s.Require().Len(report.Errors, 1)

	var updated models.Product
	s.Require().NoError(s.db.First(&updated, product.ID).Error)
	s.Equal(12, updated.TrendScore, "healthy products are still processed")
}

func TestRecalcServiceSuite(t *testing.T) {
	suite.Run(t, new(RecalcServiceTestSuite))
}
