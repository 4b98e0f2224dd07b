package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository/memory"
	"github.com/prasertw/voltbook/internal/service/billing"
)

func importRow(userNumber string, month, year int) models.BillingRecord {
	return models.BillingRecord{
		UserNumber: userNumber,
		Month:      month,
		Year:       year,
		Usage:      500,
		TotalCost:  2300.25,
	}
}

func TestImport_SameFileDuplicateSkipped(t *testing.T) {
	// GIVEN: A batch where row 2 repeats row 1's user number and period
	// WHEN: Importing the batch
	// THEN: Row 1 commits, row 2 is counted and reported as a duplicate

	store := memory.NewStore()
	svc := newTestService(store)

	rows := []models.BillingRecord{
		importRow("012892858", 3, 2024),
		importRow("012892858", 3, 2024),
	}
	result := svc.Import(context.Background(), rows, "uid-admin")

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{"row 2: duplicate for 012892858 - 3/2024"}, result.Errors)
}

func TestImport_PreexistingRecordSkipped(t *testing.T) {
	// GIVEN: A record already stored for the period
	// WHEN: Importing a row for the same user number and period
	// THEN: The row is skipped as a duplicate, the stored record untouched

	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Save(ctx, marchInput(), "uid-1")
	require.NoError(t, err)

	result := svc.Import(ctx, []models.BillingRecord{importRow("012892858", 3, 2024)}, "uid-admin")

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "row 1: duplicate for 012892858 - 3/2024", result.Errors[0])

	recs, err := svc.List(ctx, billing.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestImport_StoreFailureMidBatch(t *testing.T) {
	// GIVEN: A 3-row batch where row 2 duplicates row 1 and row 3's insert fails
	// WHEN: Importing the batch
	// THEN: Row 1 commits, rows 2 and 3 land in Errors, the batch never aborts

	store := memory.NewStore()
	store.InsertHook = func(rec models.BillingRecord) error {
		if rec.Month == 5 {
			return errors.New("write concern timeout")
		}
		return nil
	}
	svc := newTestService(store)

	rows := []models.BillingRecord{
		importRow("012892858", 3, 2024),
		importRow("012892858", 3, 2024),
		importRow("012892858", 5, 2024),
	}
	result := svc.Import(context.Background(), rows, "uid-admin")

	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{
		"row 2: duplicate for 012892858 - 3/2024",
		"row 3: error - write concern timeout",
	}, result.Errors)
}

func TestImport_GuardFailureReportedPerRow(t *testing.T) {
	// GIVEN: A store whose queries fail
	// WHEN: Importing two rows
	// THEN: Each row fails independently with a row-numbered error

	store := memory.NewStore()
	store.FindErr = errors.New("connection reset")
	svc := newTestService(store)

	rows := []models.BillingRecord{
		importRow("012892858", 3, 2024),
		importRow("012642429", 3, 2024),
	}
	result := svc.Import(context.Background(), rows, "uid-admin")

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 0, result.Duplicates)
	assert.Equal(t, []string{
		"row 1: error - connection reset",
		"row 2: error - connection reset",
	}, result.Errors)
}

func TestImport_ResolvesMetersAndStampsActor(t *testing.T) {
	// GIVEN: Rows without meter codes, one mapped and one unknown user number
	// WHEN: Importing them
	// THEN: The mapped row gets its meter code, the unknown stays empty, and
	// both carry the importing actor

	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	rows := []models.BillingRecord{
		importRow("012892858", 3, 2024),
		importRow("555000111", 4, 2024),
	}
	result := svc.Import(ctx, rows, "uid-admin")
	require.Equal(t, 2, result.Success)

	recs, err := svc.List(ctx, billing.ListFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byUser := map[string]models.BillingRecord{}
	for _, rec := range recs {
		byUser[rec.UserNumber] = rec
	}
	assert.Equal(t, "19000343", byUser["012892858"].MeterCode)
	assert.Equal(t, "", byUser["555000111"].MeterCode)
	assert.Equal(t, "uid-admin", byUser["012892858"].CreatedBy)
	assert.False(t, byUser["555000111"].RecordedAt.IsZero())
}

func TestImport_EmptyBatch(t *testing.T) {
	// GIVEN: No rows
	// WHEN: Importing
	// THEN: All counters are zero and Errors is an empty list, not nil

	store := memory.NewStore()
	svc := newTestService(store)

	result := svc.Import(context.Background(), nil, "uid-admin")

	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 0, result.Duplicates)
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Errors)
}
