package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shortly/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) StatsByID(c *gin.Context) {
	analytics, err := h.analyticsService.AnalyticsByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *AnalyticsHandler) StatsByCode(c *gin.Context) {
	analytics, err := h.analyticsService.AnalyticsByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
