// Package rules implements the fraud rules engine: a pure function over a
// transaction event and facts derived from the user's history. No I/O, no
// state; the same inputs always produce the same evaluation.
package rules

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/models"
)

// Reason codes, in rule-evaluation order. The reasons list of an
// evaluation always follows this order.
const (
	ReasonHighAmount       = "HIGH_AMOUNT"
	ReasonHighVelocity     = "HIGH_VELOCITY"
	ReasonCountryChange    = "COUNTRY_CHANGE_IN_SHORT_WINDOW"
	ReasonHighRiskMerchant = "HIGH_RISK_MERCHANT"
)

// Rule weights.
const (
	weightHighAmount       = 45
	weightHighVelocity     = 35
	weightCountryChange    = 30
	weightHighRiskMerchant = 25

	maxScore = 100
)

// Config holds the tunable rule parameters.
type Config struct {
	// HighAmountThreshold triggers HIGH_AMOUNT for amounts strictly above it.
	HighAmountThreshold decimal.Decimal

	// VelocityMaxTransactions is the per-user transaction count (including
	// the current event) at which HIGH_VELOCITY triggers.
	VelocityMaxTransactions int

	// VelocityWindow is the sliding window for the velocity count.
	VelocityWindow time.Duration

	// CountryChangeWindow bounds how recent the previous transaction must
	// be for a country change to count as suspicious.
	CountryChangeWindow time.Duration

	// HighRiskMerchants lists merchant ids matched case-insensitively.
	HighRiskMerchants []string
}

// Evaluation is the engine's verdict for one event.
type Evaluation struct {
	Fraudulent bool
	RiskScore  int
	Reasons    []string
}

// Engine evaluates the fixed rule set. Safe for concurrent use.
type Engine struct {
	cfg       Config
	merchants map[string]struct{}
}

// NewEngine builds an engine from the given config.
func NewEngine(cfg Config) *Engine {
	merchants := make(map[string]struct{}, len(cfg.HighRiskMerchants))
	for _, m := range cfg.HighRiskMerchants {
		merchants[strings.ToUpper(m)] = struct{}{}
	}
	return &Engine{cfg: cfg, merchants: merchants}
}

// Evaluate runs every rule against the event, in fixed order, with no
// short-circuiting. lastTransaction is the user's most recent history
// record, or nil when none exists. recentTransactionsCount is the number
// of the user's history records inside the velocity window, excluding the
// current event.
func (e *Engine) Evaluate(
	event *events.TransactionCreatedEvent,
	lastTransaction *models.HistoryRecord,
	recentTransactionsCount int64,
	referenceTime time.Time,
) Evaluation {
	var reasons []string
	score := 0

	if event.Amount != nil && event.Amount.GreaterThan(e.cfg.HighAmountThreshold) {
		reasons = append(reasons, ReasonHighAmount)
		score += weightHighAmount
	}

	// The +1 counts the current event itself: "this transaction would
	// make N the total inside the window".
	if recentTransactionsCount+1 >= int64(e.cfg.VelocityMaxTransactions) {
		reasons = append(reasons, ReasonHighVelocity)
		score += weightHighVelocity
	}

	if e.isCountryChangeSuspicious(event, lastTransaction, referenceTime) {
		reasons = append(reasons, ReasonCountryChange)
		score += weightCountryChange
	}

	if e.isHighRiskMerchant(event.MerchantID) {
		reasons = append(reasons, ReasonHighRiskMerchant)
		score += weightHighRiskMerchant
	}

	if score > maxScore {
		score = maxScore
	}

	return Evaluation{
		Fraudulent: len(reasons) > 0,
		RiskScore:  score,
		Reasons:    reasons,
	}
}

func (e *Engine) isCountryChangeSuspicious(
	event *events.TransactionCreatedEvent,
	lastTransaction *models.HistoryRecord,
	referenceTime time.Time,
) bool {
	if lastTransaction == nil {
		return false
	}
	if event.Country == "" || lastTransaction.Country == "" {
		return false
	}

	changedCountry := !strings.EqualFold(lastTransaction.Country, event.Country)
	insideWindow := lastTransaction.OccurredAt.After(referenceTime.Add(-e.cfg.CountryChangeWindow))
	return changedCountry && insideWindow
}

func (e *Engine) isHighRiskMerchant(merchantID string) bool {
	if merchantID == "" {
		return false
	}
	_, ok := e.merchants[strings.ToUpper(merchantID)]
	return ok
}
