package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/service/billing"
)

// RecordHandler serves interactive entry and record browsing.
type RecordHandler struct {
	svc    *billing.Service
	logger *zap.Logger
}

// NewRecordHandler constructs the HTTP adapter over the billing service.
func NewRecordHandler(svc *billing.Service, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{svc: svc, logger: logger}
}

// List serves GET /api/records with optional year, month and user_number
// equality filters.
func (h *RecordHandler) List(c *gin.Context) {
	var filter billing.ListFilter
	filter.UserNumber = c.Query("user_number")

	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be numeric"})
			return
		}
		filter.Year = year
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be numeric"})
			return
		}
		filter.Month = month
	}

	records, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Save serves POST /api/records: a reconciled save that inserts when the
// period is free and updates when the body carries an id.
func (h *RecordHandler) Save(c *gin.Context) {
	var input billing.RecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid record payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor, _ := auth.ActorFrom(c)
	id, err := h.svc.Save(c.Request.Context(), input, actor.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if input.ID == "" {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": id})
}

// Lookup serves GET /api/records/lookup: the advisory prefill check the
// entry form runs before deciding between create and edit mode.
func (h *RecordHandler) Lookup(c *gin.Context) {
	userNumber := c.Query("user_number")
	month, monthErr := strconv.Atoi(c.Query("month"))
	year, yearErr := strconv.Atoi(c.Query("year"))
	if userNumber == "" || monthErr != nil || yearErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_number, month and year are required"})
		return
	}

	record, err := h.svc.LookupForEdit(c.Request.Context(), userNumber, month, year)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	if record == nil {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "record": record})
}

// Delete serves DELETE /api/records/:id (admin only).
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
