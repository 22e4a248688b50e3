// internal/services/testutil_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
)

// setupTestDB opens a per-test in-memory database. The shared-cache DSN keeps
// every pooled connection on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.TrendSignal{},
		&models.Review{},
		&models.ProductScoreHistory{},
		&models.ProductContent{},
		&models.ScraperSource{},
		&models.AdminUser{},
		&models.AdminNotification{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Scoring: config.ScoringConfig{
			FlagThreshold:   60,
			MatchThreshold:  0.4,
			DecayGraceDays:  3,
			DecayRatePerDay: 0.04,
			HistoryDays:     30,
		},
	}
}

func strPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
