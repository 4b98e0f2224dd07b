package billing

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// MeterMapping resolves a user number to its physical meter code. It is
// injected configuration so a deployment can swap the table without a code
// change.
type MeterMapping map[string]string

// Resolve prefers an explicitly supplied code; otherwise it consults the
// mapping. An unknown user number with no supplied code yields an empty
// meter code, which is not an error.
func (m MeterMapping) Resolve(userNumber, supplied string) string {
	if supplied != "" {
		return supplied
	}
	return m[userNumber]
}

// Service owns the single-record save contract: the duplicate guard, the
// insert-vs-update decision, the advisory lookup used to prefill edits, and
// the bulk import path built on the same guard.
type Service struct {
	store  repository.RecordStore
	meters MeterMapping
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a billing service instance.
func NewService(store repository.RecordStore, meters MeterMapping, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		meters: meters,
		logger: logger,
		now:    time.Now,
	}
}

// RecordInput is a candidate record as submitted by the entry form. ID is
// set when the caller has already located the record it wants to overwrite.
type RecordInput struct {
	ID         string  `json:"id"`
	UserNumber string  `json:"user_number"`
	MeterCode  string  `json:"meter_code"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Usage      float64 `json:"electricity_usage"`
	TotalCost  float64 `json:"total_with_vat"`
	FtRate     float64 `json:"ft_rate"`
}

func (in RecordInput) validate() error {
	switch {
	case strings.TrimSpace(in.UserNumber) == "":
		return &ValidationError{Field: "user_number", Reason: "required"}
	case in.Month < 1 || in.Month > 12:
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	case in.Year < 1000 || in.Year > 9999:
		return &ValidationError{Field: "year", Reason: "must be a four-digit year"}
	case in.Usage < 0:
		return &ValidationError{Field: "electricity_usage", Reason: "must not be negative"}
	case in.TotalCost < 0:
		return &ValidationError{Field: "total_with_vat", Reason: "must not be negative"}
	}
	return nil
}

// Save reconciles one candidate record into an insert or an update.
//
// Without an id the duplicate guard runs first and a hit fails the save with
// DuplicateError. With an id the update is applied as submitted; the period
// fields are not re-checked against other records, since the entry form
// resolves the id through LookupForEdit for the same period it then saves.
// created_by and record_date are stamped once at insert and never updated.
func (s *Service) Save(ctx context.Context, in RecordInput, actorID string) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	meterCode := s.meters.Resolve(in.UserNumber, in.MeterCode)

	if in.ID != "" {
		fields := map[string]any{
			"user_number":       in.UserNumber,
			"meter_code":        meterCode,
			"month":             in.Month,
			"year":              in.Year,
			"electricity_usage": in.Usage,
			"total_with_vat":    in.TotalCost,
			"ft_rate":           in.FtRate,
		}
		if err := s.store.Update(ctx, in.ID, fields); err != nil {
			return "", err
		}
		s.logger.Info("record updated",
			zap.String("id", in.ID),
			zap.String("user_number", in.UserNumber),
			zap.Int("month", in.Month),
			zap.Int("year", in.Year))
		return in.ID, nil
	}

	exists, err := s.exists(ctx, in.UserNumber, in.Month, in.Year)
	if err != nil {
		return "", err
	}
	if exists {
		return "", &DuplicateError{UserNumber: in.UserNumber, Month: in.Month, Year: in.Year}
	}

	rec := models.BillingRecord{
		UserNumber: in.UserNumber,
		MeterCode:  meterCode,
		Month:      in.Month,
		Year:       in.Year,
		Usage:      in.Usage,
		TotalCost:  in.TotalCost,
		FtRate:     in.FtRate,
		CreatedBy:  actorID,
		RecordedAt: s.now().UTC(),
	}

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return "", err
	}

	s.logger.Info("record created",
		zap.String("id", id),
		zap.String("user_number", in.UserNumber),
		zap.Int("month", in.Month),
		zap.Int("year", in.Year))
	return id, nil
}

// exists is the duplicate guard: one equality query on the business key. The
// user number is compared strictly as a string; "012892858" and 12892858 are
// different keys. There is no isolation between this check and the insert
// that follows it, so two concurrent writers can both pass the guard. The
// store is shared across processes and offers no unique constraint here, so
// the race is accepted rather than papered over with an in-process lock.
func (s *Service) exists(ctx context.Context, userNumber string, month, year int) (bool, error) {
	recs, err := s.store.Find(ctx, repository.Filters{
		"user_number": userNumber,
		"month":       month,
		"year":        year,
	})
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// LookupForEdit fetches the record for a period so the entry form can prefill
// an edit. Advisory only: the insert path re-runs its own guard regardless.
// Returns nil when no record exists for the period.
func (s *Service) LookupForEdit(ctx context.Context, userNumber string, month, year int) (*models.BillingRecord, error) {
	recs, err := s.store.Find(ctx, repository.Filters{
		"user_number": userNumber,
		"month":       month,
		"year":        year,
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	rec := recs[0]
	return &rec, nil
}

// ListFilter narrows List to equality matches; zero values mean "any".
type ListFilter struct {
	UserNumber string
	Month      int
	Year       int
}

// List returns matching records sorted newest period first (year desc, then
// month desc). Sorting happens client-side; the store query is unordered.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.BillingRecord, error) {
	filters := repository.Filters{}
	if f.UserNumber != "" {
		filters["user_number"] = f.UserNumber
	}
	if f.Month != 0 {
		filters["month"] = f.Month
	}
	if f.Year != 0 {
		filters["year"] = f.Year
	}

	recs, err := s.store.Find(ctx, filters)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Year != recs[j].Year {
			return recs[i].Year > recs[j].Year
		}
		return recs[i].Month > recs[j].Month
	})
	return recs, nil
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, id string) (*models.BillingRecord, error) {
	return s.store.GetByID(ctx, id)
}

// Delete removes one record by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", zap.String("id", id))
	return nil
}
