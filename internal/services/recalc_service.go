// internal/services/recalc_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/matching"
	"github.com/trendlens/trendlens-backend/internal/models"
	"github.com/trendlens/trendlens-backend/internal/scoring"
)

type RecalcService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	mergeService        *MergeService
	notificationService *NotificationService
}

type BatchError struct {
	ProductID uuid.UUID `json:"product_id"`
	Reason    string    `json:"reason"`
}

type BatchReport struct {
	Updated      int          `json:"updated"`
	Recalculated int          `json:"recalculated"`
	Errors       []BatchError `json:"errors"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}

type DedupeReport struct {
	Examined int           `json:"examined"`
	Merged   []MergeResult `json:"merged"`
	Errors   []BatchError  `json:"errors"`
}

func NewRecalcService(db *gorm.DB, cfg *config.Config, mergeService *MergeService, notificationService *NotificationService) *RecalcService {
	return &RecalcService{
		db:                  db,
		cfg:                 cfg,
		mergeService:        mergeService,
		notificationService: notificationService,
	}
}

// RecalculateAll batch-walks every product with at least one signal and brings
// its scores, status and history up to date. One failing product never aborts
// the batch; the job runs unattended on a schedule, so per-item failures are
// accumulated into the report instead.
func (s *RecalcService) RecalculateAll() (*BatchReport, error) {
	report := &BatchReport{StartedAt: time.Now()}

	var productIDs []uuid.UUID
	if err := s.db.Model(&models.TrendSignal{}).
		Distinct("product_id").
		Pluck("product_id", &productIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list products with signals: %w", err)
	}

	var flaggedProducts []models.Product

	for _, id := range productIDs {
		changed, flagged, err := s.recalculateOne(id, report.StartedAt)
		if err != nil {
			report.Errors = append(report.Errors, BatchError{ProductID: id, Reason: err.Error()})
			logrus.WithError(err).WithField("product_id", id).Warn("Recalculation failed for product")
			continue
		}
		report.Recalculated++
		if changed {
			report.Updated++
		}
		if flagged != nil {
			flaggedProducts = append(flaggedProducts, *flagged)
		}
	}

	if err := s.trimHistory(report.StartedAt); err != nil {
		logrus.WithError(err).Warn("Score history trim failed")
	}

	report.FinishedAt = time.Now()

	logrus.WithFields(logrus.Fields{
		"recalculated": report.Recalculated,
		"updated":      report.Updated,
		"errors":       len(report.Errors),
		"duration_ms":  report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}).Info("Recalculation batch finished")

	// Notifications go out after the batch so a slow SMTP hop cannot stretch
	// any product's transaction
	if s.notificationService != nil {
		for _, p := range flaggedProducts {
			s.notificationService.NotifyProductFlagged(p.ID, p.TrendScore)
		}
	}

	return report, nil
}

// recalculateOne wraps a single product's read-modify-write in one
// transaction: score recompute, decay, status transition and history append
// land together or not at all.
func (s *RecalcService) recalculateOne(productID uuid.UUID, runStarted time.Time) (changed bool, flagged *models.Product, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		signals, err := loadSignals(tx, productID)
		if err != nil {
			return err
		}

		breakdown := scoring.ComputeTrendScore(signals)
		days := scoring.DaysTrending(product.FirstDetected, runStarted)
		current := scoring.Decay(breakdown.Total, days, scoring.DecayParams{
			GraceDays:  s.cfg.Scoring.DecayGraceDays,
			RatePerDay: s.cfg.Scoring.DecayRatePerDay,
		})

		wasFlagged := product.Status == models.ProductStatusFlagged
		previousScore := product.CurrentScore
		previousStatus := product.Status

		product.TrendScore = breakdown.Total
		product.BaseScore = breakdown.Total
		if breakdown.Total > product.PeakScore {
			product.PeakScore = breakdown.Total
		}
		product.CurrentScore = current
		product.DaysTrending = days
		product.Status = scoring.NextStatus(product.Status, breakdown.Total, s.cfg.Scoring.FlagThreshold)

		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		history := &models.ProductScoreHistory{
			ProductID:    productID,
			CurrentScore: current,
			RecordedAt:   runStarted,
		}
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("failed to append score history: %w", err)
		}

		changed = previousScore != current || previousStatus != product.Status
		if !wasFlagged && product.Status == models.ProductStatusFlagged {
			flagged = &product
		}
		return nil
	})

	return changed, flagged, err
}

func (s *RecalcService) trimHistory(now time.Time) error {
	cutoff := now.AddDate(0, 0, -s.cfg.Scoring.HistoryDays)
	return s.db.Where("recorded_at < ?", cutoff).
		Delete(&models.ProductScoreHistory{}).Error
}

// DedupeAll runs the automated matcher pass: every product is compared against
// the rest of the catalog, and the best match above the similarity threshold
// is merged into the older record. The older record wins canonical status
// because earliest detection is the stronger provenance.
func (s *RecalcService) DedupeAll() (*DedupeReport, error) {
	report := &DedupeReport{}

	var products []models.Product
	if err := s.db.Order("first_detected ASC, id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	report.Examined = len(products)
	merged := make(map[uuid.UUID]bool)

	for i := range products {
		canonical := &products[i]
		if merged[canonical.ID] {
			continue
		}

		// Greedy single-best selection against the rest of the pool. Pools
		// are small and true duplicates are rare, so a globally optimal
		// assignment across the whole catalog is not worth the complexity.
		target := identityOf(canonical)
		bestIdx := -1
		bestScore := 0.0

		for j := i + 1; j < len(products); j++ {
			candidate := &products[j]
			if merged[candidate.ID] {
				continue
			}

			score := matching.Similarity(target, identityOf(candidate))
			if score > s.cfg.Scoring.MatchThreshold && score > bestScore {
				bestIdx = j
				bestScore = score
			}
		}

		if bestIdx < 0 {
			continue
		}

		duplicate := &products[bestIdx]
		result, err := s.mergeService.MergeProducts(duplicate.ID, canonical.ID)
		if err != nil {
			report.Errors = append(report.Errors, BatchError{ProductID: duplicate.ID, Reason: err.Error()})
			continue
		}

		merged[duplicate.ID] = true
		report.Merged = append(report.Merged, *result)

		logrus.WithFields(logrus.Fields{
			"canonical_id": canonical.ID,
			"duplicate_id": duplicate.ID,
			"similarity":   bestScore,
		}).Info("Automated dedupe merged product")
	}

	return report, nil
}

func identityOf(p *models.Product) matching.Identity {
	id := matching.Identity{Name: p.Name}
	if p.Brand != nil {
		id.Brand = *p.Brand
	}
	return id
}
