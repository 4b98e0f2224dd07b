package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// Store is an in-memory RecordStore used by tests. It mimics the equality
// matching of the document store, including strict typing: a string filter
// never matches an int field and vice versa.
type Store struct {
	mu   sync.RWMutex
	seq  int
	recs map[string]models.BillingRecord

	// InsertHook, when set, runs before each insert; returning an error
	// aborts that insert. Tests use it to simulate per-document outages.
	InsertHook func(rec models.BillingRecord) error
	// FindErr, when set, fails every Find call.
	FindErr error
}

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{recs: make(map[string]models.BillingRecord)}
}

// Insert stores a record under a generated id.
func (s *Store) Insert(_ context.Context, rec models.BillingRecord) (string, error) {
	if s.InsertHook != nil {
		if err := s.InsertHook(rec); err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("rec-%04d", s.seq)
	rec.ID = id
	s.recs[id] = rec
	return id, nil
}

// Update applies a partial field set to a stored record.
func (s *Store) Update(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return repository.ErrNotFound
	}

	for field, value := range fields {
		applyField(&rec, field, value)
	}
	s.recs[id] = rec
	return nil
}

// Delete removes a stored record.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.recs, id)
	return nil
}

// GetByID fetches one record by id.
func (s *Store) GetByID(_ context.Context, id string) (*models.BillingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

// Find returns every record matching all equality filters, unordered.
func (s *Store) Find(_ context.Context, filters repository.Filters) ([]models.BillingRecord, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.BillingRecord
	for _, rec := range s.recs {
		if matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(rec models.BillingRecord, filters repository.Filters) bool {
	for field, value := range filters {
		switch field {
		case "user_number":
			v, ok := value.(string)
			if !ok || rec.UserNumber != v {
				return false
			}
		case "meter_code":
			v, ok := value.(string)
			if !ok || rec.MeterCode != v {
				return false
			}
		case "month":
			v, ok := value.(int)
			if !ok || rec.Month != v {
				return false
			}
		case "year":
			v, ok := value.(int)
			if !ok || rec.Year != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applyField(rec *models.BillingRecord, field string, value any) {
	switch field {
	case "user_number":
		if v, ok := value.(string); ok {
			rec.UserNumber = v
		}
	case "meter_code":
		if v, ok := value.(string); ok {
			rec.MeterCode = v
		}
	case "month":
		if v, ok := value.(int); ok {
			rec.Month = v
		}
	case "year":
		if v, ok := value.(int); ok {
			rec.Year = v
		}
	case "electricity_usage":
		if v, ok := value.(float64); ok {
			rec.Usage = v
		}
	case "total_with_vat":
		if v, ok := value.(float64); ok {
			rec.TotalCost = v
		}
	case "ft_rate":
		if v, ok := value.(float64); ok {
			rec.FtRate = v
		}
	}
}
