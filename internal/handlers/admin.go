// internal/handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trendlens/trendlens-backend/internal/services"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

type AdminHandler struct {
	mergeService        *services.MergeService
	recalcService       *services.RecalcService
	productService      *services.ProductService
	storageService      *services.StorageService
	notificationService *services.NotificationService
	authService         *services.AuthService
}

func NewAdminHandler(
	mergeService *services.MergeService,
	recalcService *services.RecalcService,
	productService *services.ProductService,
	storageService *services.StorageService,
	notificationService *services.NotificationService,
	authService *services.AuthService,
) *AdminHandler {
	return &AdminHandler{
		mergeService:        mergeService,
		recalcService:       recalcService,
		productService:      productService,
		storageService:      storageService,
		notificationService: notificationService,
		authService:         authService,
	}
}

type mergeRequest struct {
	DuplicateID uuid.UUID `json:"duplicate_id" binding:"required"`
	TargetID    uuid.UUID `json:"target_id" binding:"required"`
}

// POST /admin/merge
func (h *AdminHandler) MergeProducts(c *gin.Context) {
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.mergeService.MergeProducts(req.DuplicateID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrSelfMerge):
			utils.BadRequestResponse(c, "Cannot merge a product into itself", nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	// Manual merges are audited: the actor comes from the JWT claims
	if adminID, ok := utils.GetAdminIDFromContext(c); ok {
		logrus.WithFields(logrus.Fields{
			"admin_id":     adminID,
			"target_id":    result.TargetID,
			"duplicate_id": result.DuplicateID,
		}).Info("Manual merge performed")
	}

	utils.SuccessResponse(c, result)
}

// POST /admin/recalculate
func (h *AdminHandler) Recalculate(c *gin.Context) {
	report, err := h.recalcService.RecalculateAll()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, report)
}

// POST /admin/dedupe
func (h *AdminHandler) Dedupe(c *gin.Context) {
	report, err := h.recalcService.DedupeAll()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, report)
}

// POST /admin/products/:id/publish
func (h *AdminHandler) PublishProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product id", nil)
		return
	}

	product, err := h.productService.Publish(id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrAlreadyPublished):
			utils.ConflictResponse(c, "Product is already published")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product id", nil)
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": id})
}

// POST /admin/products/:id/image
func (h *AdminHandler) UploadProductImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product id", nil)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.StoreProductImage(id, file, header)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrStorageUnavailable):
			utils.ErrorResponse(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /admin/notifications
func (h *AdminHandler) GetNotifications(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.ListNotifications(unreadOnly, limit)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, notifications)
}

// POST /admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid notification id", nil)
		return
	}

	if err := h.notificationService.MarkRead(id); err != nil {
		utils.NotFoundResponse(c, "Notification")
		return
	}

	utils.SuccessResponse(c, gin.H{"read": id})
}

// POST /admin/scrapers
func (h *AdminHandler) CreateScraperSource(c *gin.Context) {
	var req services.CreateScraperSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.authService.CreateScraperSource(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}
