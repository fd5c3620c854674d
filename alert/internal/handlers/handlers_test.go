package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
)

type mockReader struct {
	listFunc       func(ctx context.Context, limit int) ([]*models.Alert, error)
	listByUserFunc func(ctx context.Context, userID string, limit int) ([]*models.Alert, error)
}

func (m *mockReader) ListAlerts(ctx context.Context, limit int) ([]*models.Alert, error) {
	return m.listFunc(ctx, limit)
}

func (m *mockReader) ListAlertsByUser(ctx context.Context, userID string, limit int) ([]*models.Alert, error) {
	return m.listByUserFunc(ctx, userID, limit)
}

func sampleAlerts() []*models.Alert {
	return []*models.Alert{
		{
			ID:            "alert-1",
			TransactionID: "txn-1",
			UserID:        "user-1",
			RiskScore:     80,
			Reasons:       "HIGH_AMOUNT,HIGH_VELOCITY",
			CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestListAlerts(t *testing.T) {
	var gotLimit int
	reader := &mockReader{
		listFunc: func(_ context.Context, limit int) ([]*models.Alert, error) {
			gotLimit = limit
			return sampleAlerts(), nil
		},
	}
	h := NewHandler(reader, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts?limit=10", nil)
	rec := httptest.NewRecorder()
	h.ListAlerts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotLimit)

	var alerts []AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "alert-1", alerts[0].ID)
	assert.Equal(t, []string{"HIGH_AMOUNT", "HIGH_VELOCITY"}, alerts[0].Reasons)
}

func TestListAlerts_DefaultLimit(t *testing.T) {
	var gotLimit int
	reader := &mockReader{
		listFunc: func(_ context.Context, limit int) ([]*models.Alert, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	h := NewHandler(reader, nil)

	rec := httptest.NewRecorder()
	h.ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultLimit, gotLimit)
}

func TestListAlerts_StoreError(t *testing.T) {
	reader := &mockReader{
		listFunc: func(context.Context, int) ([]*models.Alert, error) {
			return nil, errors.New("db down")
		},
	}
	h := NewHandler(reader, nil)

	rec := httptest.NewRecorder()
	h.ListAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListAlerts_MethodNotAllowed(t *testing.T) {
	h := NewHandler(&mockReader{}, nil)

	rec := httptest.NewRecorder()
	h.ListAlerts(rec, httptest.NewRequest(http.MethodPost, "/api/v1/alerts", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestListAlertsByUser(t *testing.T) {
	var gotUser string
	reader := &mockReader{
		listByUserFunc: func(_ context.Context, userID string, _ int) ([]*models.Alert, error) {
			gotUser = userID
			return sampleAlerts(), nil
		},
	}
	h := NewHandler(reader, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/users/user-1", nil)
	rec := httptest.NewRecorder()
	h.ListAlertsByUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", gotUser)
}

func TestListAlertsByUser_MissingID(t *testing.T) {
	h := NewHandler(&mockReader{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/users/", nil)
	rec := httptest.NewRecorder()
	h.ListAlertsByUser(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAlertsByUser_EmptyResultIsOK(t *testing.T) {
	reader := &mockReader{
		listByUserFunc: func(context.Context, string, int) ([]*models.Alert, error) {
			return []*models.Alert{}, nil
		},
	}
	h := NewHandler(reader, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/users/user-unknown", nil)
	rec := httptest.NewRecorder()
	h.ListAlertsByUser(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
