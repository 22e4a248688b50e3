// internal/services/merge_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
	"github.com/trendlens/trendlens-backend/internal/scoring"
)

var ErrSelfMerge = errors.New("cannot merge a product into itself")

type MergeService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	notificationService *NotificationService
}

type MergeResult struct {
	TargetID           uuid.UUID            `json:"target_id"`
	DuplicateID        uuid.UUID            `json:"duplicate_id"`
	SignalsTransferred int64                `json:"signals_transferred"`
	ReviewsTransferred int64                `json:"reviews_transferred"`
	Breakdown          scoring.Breakdown    `json:"breakdown"`
	Status             models.ProductStatus `json:"status"`
}

func NewMergeService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *MergeService {
	return &MergeService{
		db:                  db,
		cfg:                 cfg,
		notificationService: notificationService,
	}
}

// MergeProducts consolidates a duplicate product into the canonical target and
// deletes the duplicate. The four steps (signal/review transfer, field
// reconciliation, rescore, duplicate deletion) commit together or not at all:
// a partial merge would leave the catalog with a gutted duplicate still
// visible, which is worse than either clean outcome.
func (s *MergeService) MergeProducts(duplicateID, targetID uuid.UUID) (*MergeResult, error) {
	if duplicateID == targetID {
		return nil, ErrSelfMerge
	}

	var result MergeResult
	var flagged bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target, duplicate models.Product

		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&duplicate, duplicateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Step 1: ownership transfer, not duplication
		signalRes := tx.Model(&models.TrendSignal{}).
			Where("product_id = ?", duplicateID).
			Update("product_id", targetID)
		if signalRes.Error != nil {
			return fmt.Errorf("failed to transfer signals: %w", signalRes.Error)
		}

		reviewRes := tx.Model(&models.Review{}).
			Where("product_id = ?", duplicateID).
			Update("product_id", targetID)
		if reviewRes.Error != nil {
			return fmt.Errorf("failed to transfer reviews: %w", reviewRes.Error)
		}

		// Step 2: field reconciliation
		wasFlagged := target.Status == models.ProductStatusFlagged
		reconcileFields(&target, &duplicate)

		// Step 3: rescore the combined signal set
		signals, err := loadSignals(tx, targetID)
		if err != nil {
			return err
		}

		breakdown := scoring.ComputeTrendScore(signals)
		target.TrendScore = breakdown.Total
		target.BaseScore = breakdown.Total
		if breakdown.Total > target.PeakScore {
			target.PeakScore = breakdown.Total
		}
		if float64(breakdown.Total) > target.CurrentScore {
			target.CurrentScore = float64(breakdown.Total)
		}
		target.Status = scoring.NextStatus(target.Status, breakdown.Total, s.cfg.Scoring.FlagThreshold)
		flagged = !wasFlagged && target.Status == models.ProductStatusFlagged

		if err := tx.Save(&target).Error; err != nil {
			return fmt.Errorf("failed to update canonical product: %w", err)
		}

		// Step 4: remove the duplicate outright; its content, history and
		// metadata rows go with it via the cascade
		if err := tx.Where("product_id = ?", duplicateID).
			Delete(&models.ProductContent{}).Error; err != nil {
			return fmt.Errorf("failed to remove duplicate content: %w", err)
		}
		if err := tx.Where("product_id = ?", duplicateID).
			Delete(&models.ProductScoreHistory{}).Error; err != nil {
			return fmt.Errorf("failed to remove duplicate history: %w", err)
		}
		if err := tx.Unscoped().Delete(&duplicate).Error; err != nil {
			return fmt.Errorf("failed to delete duplicate product: %w", err)
		}

		result = MergeResult{
			TargetID:           targetID,
			DuplicateID:        duplicateID,
			SignalsTransferred: signalRes.RowsAffected,
			ReviewsTransferred: reviewRes.RowsAffected,
			Breakdown:          breakdown,
			Status:             target.Status,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"target_id":           result.TargetID,
		"duplicate_id":        result.DuplicateID,
		"signals_transferred": result.SignalsTransferred,
		"reviews_transferred": result.ReviewsTransferred,
		"score":               result.Breakdown.Total,
	}).Info("Merged duplicate product")

	if flagged && s.notificationService != nil {
		s.notificationService.NotifyProductFlagged(result.TargetID, result.Breakdown.Total)
	}

	return &result, nil
}

// reconcileFields folds the duplicate's descriptive fields into the canonical
// record. Every rule is independent and idempotent, so re-running a merge
// against an already-reconciled target changes nothing.
func reconcileFields(target, duplicate *models.Product) {
	// Longer name is treated as the more complete description
	if len(duplicate.Name) > len(target.Name) {
		target.Name = duplicate.Name
	}

	// Fill-if-empty fields
	if isEmpty(target.Brand) && !isEmpty(duplicate.Brand) {
		target.Brand = duplicate.Brand
	}
	if isEmpty(target.Category) && !isEmpty(duplicate.Category) {
		target.Category = duplicate.Category
	}
	if target.Price == nil && duplicate.Price != nil {
		target.Price = duplicate.Price
	}
	if isEmpty(target.SourceURL) && !isEmpty(duplicate.SourceURL) {
		target.SourceURL = duplicate.SourceURL
	}

	// Storage permanence outranks recency: a canonical image already copied
	// into our own bucket is never replaced, while a scraped source image
	// yields to a permanently stored one from the duplicate.
	if !target.HasPermanentImage() && !isEmpty(duplicate.ImageURL) {
		if isEmpty(target.ImageURL) || duplicate.HasPermanentImage() {
			target.ImageURL = duplicate.ImageURL
			target.ImageStored = duplicate.ImageStored
		}
	}

	// Scores are monotonic across a merge
	if duplicate.TrendScore > target.TrendScore {
		target.TrendScore = duplicate.TrendScore
	}
	if duplicate.CurrentScore > target.CurrentScore {
		target.CurrentScore = duplicate.CurrentScore
	}
	if duplicate.PeakScore > target.PeakScore {
		target.PeakScore = duplicate.PeakScore
	}
	if duplicate.BaseScore > target.BaseScore {
		target.BaseScore = duplicate.BaseScore
	}

	// Earliest detection is the more accurate provenance
	if duplicate.FirstDetected.Before(target.FirstDetected) {
		target.FirstDetected = duplicate.FirstDetected
	}

	if len(target.Keywords) == 0 && len(duplicate.Keywords) > 0 {
		target.Keywords = duplicate.Keywords
	}
}

func isEmpty(s *string) bool {
	return s == nil || *s == ""
}
