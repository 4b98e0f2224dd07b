package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/service/billing"
	"github.com/prasertw/voltbook/internal/service/dashboard"
)

// DashboardHandler serves the derived aggregate views. Each request fetches
// one snapshot of the record collection and derives everything from it.
type DashboardHandler struct {
	svc    *billing.Service
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP adapter over the aggregation views.
func NewDashboardHandler(svc *billing.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Summary serves GET /api/dashboard/summary.
func (h *DashboardHandler) Summary(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), billing.ListFilter{})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard.BuildSummary(records))
}

// MonthBreakdown serves GET /api/dashboard/months/:month, the single-month
// cross-year comparison.
func (h *DashboardHandler) MonthBreakdown(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}

	records, err := h.svc.List(c.Request.Context(), billing.ListFilter{})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard.BuildMonthBreakdown(records, month))
}
