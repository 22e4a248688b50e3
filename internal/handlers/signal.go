// internal/handlers/signal.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/trendlens/trendlens-backend/internal/services"
	"github.com/trendlens/trendlens-backend/internal/utils"
)

type SignalHandler struct {
	signalService *services.SignalService
}

func NewSignalHandler(signalService *services.SignalService) *SignalHandler {
	return &SignalHandler{signalService: signalService}
}

// POST /signals
func (h *SignalHandler) IngestSignal(c *gin.Context) {
	var req services.IngestSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.signalService.IngestSignal(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product")
		case errors.Is(err, services.ErrInvalidSource):
			utils.BadRequestResponse(c, "Unknown signal source", nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	if scraper, ok := utils.GetScraperSourceFromContext(c); ok {
		logrus.WithFields(logrus.Fields{
			"scraper_source":  scraper,
			"signal_source":   result.Signal.Source,
			"product_id":      result.Product.ID,
			"product_created": result.ProductCreated,
		}).Info("Signal ingested")
	}

	utils.CreatedResponse(c, result)
}

// POST /reviews
func (h *SignalHandler) IngestReview(c *gin.Context) {
	var req services.IngestReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	review, err := h.signalService.IngestReview(&req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, review)
}
