// Package handlers exposes the alert query API.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fraudwatch-systems/fraudwatch-stack/alert/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/httputil"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// AlertReader is the read-side slice of the alert service.
type AlertReader interface {
	ListAlerts(ctx context.Context, limit int) ([]*models.Alert, error)
	ListAlertsByUser(ctx context.Context, userID string, limit int) ([]*models.Alert, error)
}

// AlertResponse is the API shape of an alert. Reasons are returned as a
// list even though they are stored comma-joined.
type AlertResponse struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	RiskScore     int       `json:"riskScore"`
	Reasons       []string  `json:"reasons"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toResponse(alerts []*models.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			ID:            a.ID,
			TransactionID: a.TransactionID,
			UserID:        a.UserID,
			RiskScore:     a.RiskScore,
			Reasons:       models.SplitReasons(a.Reasons),
			CreatedAt:     a.CreatedAt,
		})
	}
	return out
}

type Handler struct {
	service AlertReader
	log     *logging.Logger
}

func NewHandler(service AlertReader, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}
	return &Handler{service: service, log: log}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ListAlerts handles GET /api/v1/alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := httputil.ParseLimit(r, defaultLimit, maxLimit)
	alerts, err := h.service.ListAlerts(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list alerts", logging.Err(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(alerts))
}

// ListAlertsByUser handles GET /api/v1/alerts/users/{userId}.
func (h *Handler) ListAlertsByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/users/")
	if userID == "" || strings.Contains(userID, "/") {
		httputil.WriteError(w, http.StatusBadRequest, "user id required")
		return
	}

	limit := httputil.ParseLimit(r, defaultLimit, maxLimit)
	alerts, err := h.service.ListAlertsByUser(r.Context(), userID, limit)
	if err != nil {
		h.log.Error("failed to list alerts for user",
			logging.UserID(userID), logging.Err(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toResponse(alerts))
}
