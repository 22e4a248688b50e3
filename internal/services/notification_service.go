// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/trendlens/trendlens-backend/internal/config"
	"github.com/trendlens/trendlens-backend/internal/models"
)

type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{db: db, cfg: cfg}
}

// NotifyProductFlagged records that a product crossed the flag threshold and
// needs editorial review. Email delivery is best-effort; the notification row
// is the durable record.
func (s *NotificationService) NotifyProductFlagged(productID uuid.UUID, score int) {
	notification := &models.AdminNotification{
		Type:      "product_flagged",
		Title:     "Product flagged for review",
		Message:   fmt.Sprintf("Product %s crossed the flag threshold with a trend score of %d.", productID, score),
		ProductID: &productID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("product_id", productID).Error("Failed to create admin notification")
		return
	}

	if s.cfg.Email.AdminEmail != "" && s.cfg.Email.SMTPUsername != "" {
		go func() {
			if err := s.sendEmail(s.cfg.Email.AdminEmail, notification.Title, notification.Message); err != nil {
				logrus.WithError(err).Warn("Failed to send flag notification email")
			}
		}()
	}
}

func (s *NotificationService) ListNotifications(unreadOnly bool, limit int) ([]models.AdminNotification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := s.db.Model(&models.AdminNotification{})
	if unreadOnly {
		query = query.Where("status = ?", models.NotificationStatusUnread)
	}

	var notifications []models.AdminNotification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

func (s *NotificationService) MarkRead(id uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  models.NotificationStatusRead,
			"read_at": &now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Email.SMTPHost, s.cfg.Email.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg))
}
