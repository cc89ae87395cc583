package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emocare/emocare-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (ah *AnalyticsHandler) AdminAnalytics(c *gin.Context) {
	data, err := ah.analyticsService.AdminAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
