package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository/memory"
	"github.com/prasertw/voltbook/internal/server/handlers"
	"github.com/prasertw/voltbook/internal/server/router"
	"github.com/prasertw/voltbook/internal/service/billing"
	"github.com/prasertw/voltbook/internal/service/users"
)

// stubVerifier maps bearer tokens straight to identities so tests can act as
// different callers without minting real ID tokens.
type stubVerifier map[string]auth.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	ident, ok := s[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &ident, nil
}

type testEnv struct {
	engine  *gin.Engine
	records *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recordStore := memory.NewStore()
	userStore := memory.NewUserStore()
	userStore.Put(models.UserAccount{ID: "uid-admin", Email: "admin@nr.ac.th", Role: models.RoleAdmin})
	userStore.Put(models.UserAccount{ID: "uid-user", Email: "somchai@nr.ac.th", Role: models.RoleUser})

	verifier := stubVerifier{
		"admin-token": {Subject: "uid-admin", Email: "admin@nr.ac.th", Name: "Admin"},
		"user-token":  {Subject: "uid-user", Email: "somchai@nr.ac.th", Name: "Somchai"},
		"outside-token": {
			Subject: "uid-out", Email: "visitor@gmail.com", Name: "Visitor",
		},
		"stranger-token": {
			Subject: "uid-stranger", Email: "stranger@nr.ac.th", Name: "Stranger",
		},
	}

	meters := billing.MeterMapping{"012892858": "19000343"}
	billingSvc := billing.NewService(recordStore, meters, nil)
	userSvc := users.NewService(userStore, nil)
	mw := auth.NewMiddleware(verifier, userStore, "nr.ac.th", nil)

	engine := router.New(router.Deps{
		Records:   handlers.NewRecordHandler(billingSvc, nil),
		Dashboard: handlers.NewDashboardHandler(billingSvc, nil),
		Import:    handlers.NewImportHandler(billingSvc, nil, nil),
		Users:     handlers.NewUserHandler(userSvc, nil),
		Auth:      mw,
	}, nil)

	return &testEnv{engine: engine, records: recordStore}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/records", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/records", "garbage", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongDomain(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/records", "outside-token", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuth_NotWhitelisted(t *testing.T) {
	// GIVEN: A valid token for an account absent from the whitelist
	// WHEN: Calling any API route
	// THEN: The request is rejected with 403

	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/records", "stranger-token", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMe_ReturnsActor(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/me", "user-token", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "uid-user", body["id"])
	assert.Equal(t, "user", body["role"])
}

func TestRecords_SaveThenDuplicateConflict(t *testing.T) {
	// GIVEN: A fresh store
	// WHEN: Posting the same period twice without an id
	// THEN: The first post creates, the second answers 409

	env := newTestEnv(t)
	payload := gin.H{
		"user_number": "012892858", "month": 3, "year": 2024,
		"electricity_usage": 1000.0, "total_with_vat": 4500.5,
	}

	w := env.do(http.MethodPost, "/api/records", "user-token", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])

	w = env.do(http.MethodPost, "/api/records", "user-token", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRecords_UpdateByID(t *testing.T) {
	env := newTestEnv(t)
	payload := gin.H{
		"user_number": "012892858", "month": 3, "year": 2024,
		"electricity_usage": 1000.0, "total_with_vat": 4500.5,
	}

	w := env.do(http.MethodPost, "/api/records", "user-token", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	payload["id"] = created["id"]
	payload["total_with_vat"] = 4800.0
	w = env.do(http.MethodPost, "/api/records", "user-token", payload)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecords_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/records", "user-token", gin.H{
		"user_number": "012892858", "month": 13, "year": 2024,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecords_Lookup(t *testing.T) {
	// GIVEN: One saved record
	// WHEN: Looking up the saved period and an empty one
	// THEN: found reflects whether the period has a record

	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/records", "user-token", gin.H{
		"user_number": "012892858", "month": 3, "year": 2024,
		"electricity_usage": 1000.0, "total_with_vat": 4500.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/records/lookup?user_number=012892858&month=3&year=2024", "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hit map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hit))
	assert.Equal(t, true, hit["found"])
	assert.NotNil(t, hit["record"])

	w = env.do(http.MethodGet, "/api/records/lookup?user_number=012892858&month=4&year=2024", "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var miss map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &miss))
	assert.Equal(t, false, miss["found"])
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/import"},
		{http.MethodDelete, "/api/records/rec-0001"},
		{http.MethodGet, "/api/users"},
		{http.MethodPut, "/api/users/uid-user/role"},
	} {
		w := env.do(tc.method, tc.path, "user-token", gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestImport_EndToEnd(t *testing.T) {
	// GIVEN: A CSV batch with a valid row, an in-file duplicate and a row
	// with a non-numeric month
	// WHEN: An admin posts it to the import endpoint
	// THEN: The unparseable row is dropped before the importer and the rest
	// is reported row by row

	env := newTestEnv(t)
	payload := gin.H{"rows": []gin.H{
		{"user_number": "012892858", "month": "3", "year": "2024", "electricity_usage": "1000", "total_with_vat": "4500.50"},
		{"user_number": "012892858", "month": "3", "year": "2024", "electricity_usage": "1000", "total_with_vat": "4500.50"},
		{"user_number": "012642429", "month": "March", "year": "2024", "electricity_usage": "700", "total_with_vat": "2900"},
	}}

	w := env.do(http.MethodPost, "/api/import", "admin-token", payload)

	require.Equal(t, http.StatusOK, w.Code)
	var result models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, []string{"row 2: duplicate for 012892858 - 3/2024"}, result.Errors)
}

func TestDashboardSummary(t *testing.T) {
	// GIVEN: Two saved months
	// WHEN: Fetching the dashboard summary
	// THEN: The derived views reflect the stored records

	env := newTestEnv(t)
	for _, p := range []gin.H{
		{"user_number": "012892858", "month": 3, "year": 2024, "electricity_usage": 1000.0, "total_with_vat": 1000.0},
		{"user_number": "012892858", "month": 2, "year": 2024, "electricity_usage": 900.0, "total_with_vat": 800.0},
	} {
		w := env.do(http.MethodPost, "/api/records", "user-token", p)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(http.MethodGet, "/api/dashboard/summary", "user-token", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "499.9", body["carbon_kg_co2e"])
	assert.Equal(t, "1800", body["total_cost"])
	assert.InDelta(t, 25.0, body["mom_change_pct"].(float64), 1e-9)
}

func TestDashboardMonthBreakdown_InvalidMonth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/dashboard/months/13", "user-token", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsers_UpdateRole(t *testing.T) {
	// GIVEN: A whitelisted regular user
	// WHEN: An admin promotes them and they call /api/me again
	// THEN: The new role is effective

	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/users/uid-user/role", "admin-token", gin.H{"role": "admin"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/api/me", "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin", body["role"])
}

func TestUsers_UpdateRole_InvalidRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/users/uid-user/role", "admin-token", gin.H{"role": "owner"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecords_DeleteAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/records", "user-token", gin.H{
		"user_number": "012892858", "month": 3, "year": 2024,
		"electricity_usage": 1000.0, "total_with_vat": 4500.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(http.MethodDelete, "/api/records/"+created["id"], "admin-token", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, "/api/records/"+created["id"], "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
