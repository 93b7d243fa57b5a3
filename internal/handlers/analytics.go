// internal/handlers/analytics.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sealtrace/sealtrace-backend/internal/services"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GET /analytics/dashboard?start_date=2026-08-01&end_date=2026-08-31
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	start, end, err := parseDateRange(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	dashboard, err := h.analyticsService.GetManufacturerDashboard(userID, start, end)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startStr := c.Query("start_date"); startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return start, end, err
		}
	}

	if endStr := c.Query("end_date"); endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return start, end, err
		}
	}

	return start, end, nil
}
