package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/events"
	"github.com/fraudwatch-systems/fraudwatch-stack/frauddetection/internal/models"
)

func testConfig() Config {
	return Config{
		HighAmountThreshold:     decimal.RequireFromString("10000.00"),
		VelocityMaxTransactions: 5,
		VelocityWindow:          time.Minute,
		CountryChangeWindow:     30 * time.Minute,
		HighRiskMerchants:       []string{"merchant-risky", "CASINO-777"},
	}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func event(amt *decimal.Decimal, merchant, country string) *events.TransactionCreatedEvent {
	return &events.TransactionCreatedEvent{
		EventID:       "evt-1",
		TransactionID: "txn-1",
		UserID:        "user-1",
		Amount:        amt,
		Currency:      "USD",
		MerchantID:    merchant,
		Country:       country,
		PaymentMethod: "CARD",
	}
}

func TestEvaluate_HighAmountOnly(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	eval := engine.Evaluate(event(amount("15000"), "merchant-ok", "US"), nil, 0, now)

	assert.True(t, eval.Fraudulent)
	assert.Equal(t, 45, eval.RiskScore)
	assert.Equal(t, []string{ReasonHighAmount}, eval.Reasons)
}

func TestEvaluate_VelocityAndCountryChange(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	last := &models.HistoryRecord{
		TransactionID: "txn-0",
		UserID:        "user-1",
		Country:       "US",
		OccurredAt:    now.Add(-5 * time.Minute),
	}

	// 4 prior transactions in the window, max 5: 4+1 >= 5 triggers.
	eval := engine.Evaluate(event(amount("30"), "merchant-ok", "BR"), last, 4, now)

	assert.True(t, eval.Fraudulent)
	assert.Equal(t, 65, eval.RiskScore)
	assert.Equal(t, []string{ReasonHighVelocity, ReasonCountryChange}, eval.Reasons)
}

func TestEvaluate_CleanTransaction(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	eval := engine.Evaluate(event(amount("25"), "merchant-ok", "US"), nil, 1, now)

	assert.False(t, eval.Fraudulent)
	assert.Equal(t, 0, eval.RiskScore)
	assert.Empty(t, eval.Reasons)
}

func TestEvaluate_AllRulesCapAtHundred(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	last := &models.HistoryRecord{
		UserID:     "user-1",
		Country:    "US",
		OccurredAt: now.Add(-time.Minute),
	}

	eval := engine.Evaluate(event(amount("99999"), "MERCHANT-RISKY", "BR"), last, 10, now)

	require.True(t, eval.Fraudulent)
	assert.Equal(t, 100, eval.RiskScore)
	assert.Equal(t, []string{
		ReasonHighAmount,
		ReasonHighVelocity,
		ReasonCountryChange,
		ReasonHighRiskMerchant,
	}, eval.Reasons)
}

func TestEvaluate_AmountRules(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	tests := []struct {
		name       string
		amount     *decimal.Decimal
		fraudulent bool
	}{
		{"above threshold", amount("10000.01"), true},
		{"exactly threshold", amount("10000.00"), false},
		{"below threshold", amount("9999.99"), false},
		{"absent amount", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := engine.Evaluate(event(tt.amount, "merchant-ok", "US"), nil, 0, now)
			assert.Equal(t, tt.fraudulent, eval.Fraudulent)
		})
	}
}

func TestEvaluate_VelocityIncludesCurrentEvent(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	// Max is 5: the current event counts as the "+1", so 4 priors trigger
	// and 3 do not.
	eval := engine.Evaluate(event(amount("10"), "merchant-ok", "US"), nil, 3, now)
	assert.False(t, eval.Fraudulent)

	eval = engine.Evaluate(event(amount("10"), "merchant-ok", "US"), nil, 4, now)
	assert.True(t, eval.Fraudulent)
	assert.Equal(t, []string{ReasonHighVelocity}, eval.Reasons)
}

func TestEvaluate_CountryChange(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	tests := []struct {
		name      string
		last      *models.HistoryRecord
		country   string
		triggered bool
	}{
		{
			name:      "no history",
			last:      nil,
			country:   "BR",
			triggered: false,
		},
		{
			name:      "same country different case",
			last:      &models.HistoryRecord{Country: "us", OccurredAt: now.Add(-time.Minute)},
			country:   "US",
			triggered: false,
		},
		{
			name:      "changed inside window",
			last:      &models.HistoryRecord{Country: "US", OccurredAt: now.Add(-29 * time.Minute)},
			country:   "BR",
			triggered: true,
		},
		{
			name:      "changed outside window",
			last:      &models.HistoryRecord{Country: "US", OccurredAt: now.Add(-31 * time.Minute)},
			country:   "BR",
			triggered: false,
		},
		{
			name:      "previous country empty",
			last:      &models.HistoryRecord{Country: "", OccurredAt: now.Add(-time.Minute)},
			country:   "BR",
			triggered: false,
		},
		{
			name:      "current country empty",
			last:      &models.HistoryRecord{Country: "US", OccurredAt: now.Add(-time.Minute)},
			country:   "",
			triggered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := engine.Evaluate(event(amount("10"), "merchant-ok", tt.country), tt.last, 0, now)
			if tt.triggered {
				assert.Equal(t, []string{ReasonCountryChange}, eval.Reasons)
				assert.Equal(t, 30, eval.RiskScore)
			} else {
				assert.Empty(t, eval.Reasons)
			}
		})
	}
}

func TestEvaluate_HighRiskMerchantCaseInsensitive(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	for _, merchant := range []string{"merchant-risky", "MERCHANT-RISKY", "Casino-777"} {
		eval := engine.Evaluate(event(amount("10"), merchant, "US"), nil, 0, now)
		assert.Equal(t, []string{ReasonHighRiskMerchant}, eval.Reasons, merchant)
		assert.Equal(t, 25, eval.RiskScore)
	}

	eval := engine.Evaluate(event(amount("10"), "merchant-fine", "US"), nil, 0, now)
	assert.Empty(t, eval.Reasons)
}

func TestEvaluate_ScoreAlwaysWithinBounds(t *testing.T) {
	engine := NewEngine(testConfig())
	now := time.Now().UTC()

	last := &models.HistoryRecord{Country: "US", OccurredAt: now.Add(-time.Second)}

	for _, counts := range []int64{0, 4, 100} {
		for _, amt := range []*decimal.Decimal{nil, amount("5"), amount("50000")} {
			eval := engine.Evaluate(event(amt, "casino-777", "AR"), last, counts, now)
			assert.GreaterOrEqual(t, eval.RiskScore, 0)
			assert.LessOrEqual(t, eval.RiskScore, 100)
			assert.Equal(t, len(eval.Reasons) > 0, eval.Fraudulent)
		}
	}
}
