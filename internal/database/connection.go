// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Product{},
		&models.TrendSignal{},
		&models.Review{},
		&models.ProductScoreHistory{},
		&models.ProductContent{},
		&models.ScraperSource{},
		&models.AdminUser{},
		&models.AdminNotification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_status_score ON products(status, current_score DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_status ON products(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_first_detected ON products(first_detected DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_brand_lower ON products(LOWER(brand))",

		// Signal indexes
		"CREATE INDEX IF NOT EXISTS idx_trend_signals_product_detected ON trend_signals(product_id, detected_at ASC)",
		"CREATE INDEX IF NOT EXISTS idx_trend_signals_source_detected ON trend_signals(source, detected_at DESC)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_date ON reviews(product_id, date DESC)",

		// History indexes
		"CREATE INDEX IF NOT EXISTS idx_score_history_recorded ON product_score_histories(recorded_at DESC)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_admin_notifications_status ON admin_notifications(status, created_at DESC)",

		// Full-text search index for admin catalog search
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || COALESCE(brand, '')))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.AdminUser{}).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.AdminUser{
			Email: "admin@trendlens.io",
			Name:  "System Administrator",
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Register the known scraper collaborators so operators only have to
	// rotate keys, not invent rows
	defaultSources := []string{"amazon-movers-scraper", "reddit-skincare-scraper", "google-trends-collector"}
	for _, name := range defaultSources {
		var count int64
		db.Model(&models.ScraperSource{}).Where("name = ?", name).Count(&count)

		if count == 0 {
			source := &models.ScraperSource{Name: name, Active: false}
			if err := source.SetAPIKey(fmt.Sprintf("rotate-me-%s", name)); err != nil {
				return fmt.Errorf("failed to hash placeholder key: %w", err)
			}
			if err := db.Create(source).Error; err != nil {
				log.Printf("Warning: Failed to create scraper source %s: %v", name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}
