package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/service/billing"
	"github.com/prasertw/voltbook/pkg/clients/notify"
)

// ImportHandler ingests parsed CSV rows. The browser splits the file; rows
// arrive here with every cell still a string, and this layer owns the
// coercion contract the importer relies on.
type ImportHandler struct {
	svc      *billing.Service
	notifier *notify.Client
	logger   *zap.Logger
}

// NewImportHandler constructs the bulk import HTTP adapter. notifier may be
// nil, which disables the post-import webhook push.
func NewImportHandler(svc *billing.Service, notifier *notify.Client, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{svc: svc, notifier: notifier, logger: logger}
}

type importRequest struct {
	Rows []models.ImportRow `json:"rows" binding:"required"`
}

// Import serves POST /api/import (admin only).
func (h *ImportHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid import payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor, _ := auth.ActorFrom(c)
	records := coerceRows(req.Rows)
	result := h.svc.Import(c.Request.Context(), records, actor.ID)

	if h.notifier != nil {
		text := fmt.Sprintf("Bulk import by %s: %d saved, %d duplicates, %d errors",
			actor.Email, result.Success, result.Duplicates, len(result.Errors))
		if err := h.notifier.Send(c.Request.Context(), text); err != nil {
			h.logger.Warn("failed to push import summary", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

// coerceRows applies the upstream import contract: trim cells, coerce the
// numeric columns, and drop rows missing a user number or with a non-numeric
// month. Rows that survive are well-typed for the importer.
func coerceRows(rows []models.ImportRow) []models.BillingRecord {
	out := make([]models.BillingRecord, 0, len(rows))
	for _, row := range rows {
		userNumber := strings.TrimSpace(row.UserNumber)
		month, monthErr := strconv.Atoi(strings.TrimSpace(row.Month))
		if userNumber == "" || monthErr != nil {
			continue
		}

		year, _ := strconv.Atoi(strings.TrimSpace(row.Year))
		usage, _ := strconv.ParseFloat(strings.TrimSpace(row.Usage), 64)
		cost, _ := strconv.ParseFloat(strings.TrimSpace(row.TotalCost), 64)

		ftRate := 0.0
		if v := strings.TrimSpace(row.FtRate); v != "" {
			ftRate, _ = strconv.ParseFloat(v, 64)
		}

		out = append(out, models.BillingRecord{
			UserNumber: userNumber,
			MeterCode:  strings.TrimSpace(row.MeterCode),
			Month:      month,
			Year:       year,
			Usage:      usage,
			TotalCost:  cost,
			FtRate:     ftRate,
		})
	}
	return out
}
