// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAPIKey      = errors.New("invalid or inactive API key")
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string            `json:"token"`
	Admin *models.AdminUser `json:"admin"`
}

type CreateScraperSourceRequest struct {
	Name string `json:"name" validate:"required,min=3,max=100"`
}

type CreateScraperSourceResult struct {
	Source *models.ScraperSource `json:"source"`
	APIKey string                `json:"api_key"` // shown once, only the hash is stored
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var admin models.AdminUser
	if err := s.db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !admin.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(admin.ID, admin.Email, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{Token: token, Admin: &admin}, nil
}

// AuthenticateScraper validates an ingestion API key against the registered
// scraper sources and records when the scraper was last seen.
func (s *AuthService) AuthenticateScraper(apiKey string) (*models.ScraperSource, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	var sources []models.ScraperSource
	if err := s.db.Where("active = ?", true).Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	for i := range sources {
		if sources[i].CheckAPIKey(apiKey) {
			s.db.Model(&sources[i]).UpdateColumn("last_seen_at", time.Now())
			return &sources[i], nil
		}
	}

	return nil, ErrInvalidAPIKey
}

// CreateScraperSource registers a new scraper credential. The generated key is
// returned exactly once.
func (s *AuthService) CreateScraperSource(req *CreateScraperSourceRequest) (*CreateScraperSourceResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	source := &models.ScraperSource{Name: req.Name, Active: true}
	if err := source.SetAPIKey(apiKey); err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	if err := s.db.Create(source).Error; err != nil {
		return nil, fmt.Errorf("failed to create scraper source: %w", err)
	}

	return &CreateScraperSourceResult{Source: source, APIKey: apiKey}, nil
}
