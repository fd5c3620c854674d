// Package handlers exposes the transaction ingest API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fraudwatch-systems/fraudwatch-stack/common/httputil"
	"github.com/fraudwatch-systems/fraudwatch-stack/common/logging"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/metrics"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/models"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/ratelimit"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/repository"
	"github.com/fraudwatch-systems/fraudwatch-stack/transaction/internal/service"
)

var (
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	countryPattern  = regexp.MustCompile(`^[A-Z]{2}$`)
)

// CreateTransactionRequest is the ingest API request body.
type CreateTransactionRequest struct {
	UserID        string          `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MerchantID    string          `json:"merchantId"`
	Country       string          `json:"country"`
	PaymentMethod string          `json:"paymentMethod"`
}

type Handler struct {
	service *service.Service
	limiter ratelimit.RateLimiter
	metrics *metrics.Metrics
	log     *logging.Logger
}

func NewHandler(svc *service.Service, limiter ratelimit.RateLimiter, m *metrics.Metrics, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Default()
	}
	return &Handler{service: svc, limiter: limiter, metrics: m, log: log}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// CreateTransaction handles POST /api/v1/transactions.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordRejected("invalid_body")
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validate(&req); msg != "" {
		h.metrics.RecordRejected("validation")
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	// A limiter outage must not take ingest down with it; the check
	// fails open.
	allowed, err := h.limiter.Allow(r.Context(), req.UserID)
	if err != nil {
		h.log.Error("rate limit check failed", logging.UserID(req.UserID), logging.Err(err))
		allowed = true
	}
	if !allowed {
		h.metrics.RecordRejected("rate_limit")
		httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	txn, err := h.service.Create(r.Context(), &service.CreateRequest{
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		MerchantID:    req.MerchantID,
		Country:       req.Country,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.log.Error("failed to create transaction", logging.Err(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, txn)
}

// GetTransaction handles GET /api/v1/transactions/{id}.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/transactions/")
	if id == "" || strings.Contains(id, "/") {
		httputil.WriteError(w, http.StatusBadRequest, "transaction id required")
		return
	}

	txn, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.log.Error("failed to load transaction", logging.TransactionID(id), logging.Err(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load transaction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, txn)
}

func validate(req *CreateTransactionRequest) string {
	switch {
	case req.UserID == "":
		return "userId is required"
	case req.MerchantID == "":
		return "merchantId is required"
	case !req.Amount.IsPositive():
		return "amount must be greater than zero"
	case !currencyPattern.MatchString(req.Currency):
		return "currency must be a three-letter uppercase code"
	case !countryPattern.MatchString(req.Country):
		return "country must be a two-letter uppercase code"
	case !models.PaymentMethod(req.PaymentMethod).Valid():
		return "paymentMethod must be CARD or TRANSFER"
	default:
		return ""
	}
}
