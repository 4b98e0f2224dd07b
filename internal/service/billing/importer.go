package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/domain/models"
)

// Import drives the insert-only path over pre-validated rows, strictly in
// order. An import never updates: a period that already has a record is
// skipped and reported. Sequential processing is load-bearing, not a
// performance choice: it keeps error messages aligned 1:1 with input row
// numbers, and it lets a row's committed insert trip the duplicate guard for
// a later row with the same period in the same file.
//
// No row failure aborts the batch; every failure lands in the result's
// Errors list and processing continues with the next row.
func (s *Service) Import(ctx context.Context, rows []models.BillingRecord, actorID string) models.ImportResult {
	result := models.ImportResult{Errors: []string{}}

	for i, row := range rows {
		n := i + 1

		dup, err := s.exists(ctx, row.UserNumber, row.Month, row.Year)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: error - %v", n, err))
			continue
		}
		if dup {
			result.Duplicates++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: duplicate for %s - %d/%d", n, row.UserNumber, row.Month, row.Year))
			continue
		}

		row.MeterCode = s.meters.Resolve(row.UserNumber, row.MeterCode)
		row.CreatedBy = actorID
		row.RecordedAt = s.now().UTC()

		if _, err := s.store.Insert(ctx, row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: error - %v", n, err))
			continue
		}
		result.Success++
	}

	s.logger.Info("bulk import finished",
		zap.Int("rows", len(rows)),
		zap.Int("success", result.Success),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", len(result.Errors)))
	return result
}
